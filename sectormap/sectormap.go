// Package sectormap provides the read-only view over QC and yard
// entry/exit coordinates (§4.2). It is supplied once per run and never
// mutated by the planner.
package sectormap

import "github.com/ch0002ic/balanced-corridor-planner/geometry"

// Info holds the fixed in/out coordinates for one QC or yard.
type Info struct {
	In, Out geometry.Coordinate
}

// Snapshot is the planner's read-only collaborator for sector lookups.
// A lookup on an unknown name returns ok == false; callers treat this
// as a +Inf cost, never as a panic or error.
type Snapshot interface {
	QC(name string) (Info, bool)
	Yard(name string) (Info, bool)
}

// StaticSnapshot is a Snapshot backed by two fixed maps, built once at
// process start from the sector map configuration for a run.
type StaticSnapshot struct {
	qcs   map[string]Info
	yards map[string]Info
}

// NewStaticSnapshot builds a snapshot from QC and yard coordinate
// tables. The maps are not retained by reference after construction.
func NewStaticSnapshot(qcs, yards map[string]Info) *StaticSnapshot {
	s := &StaticSnapshot{
		qcs:   make(map[string]Info, len(qcs)),
		yards: make(map[string]Info, len(yards)),
	}
	for name, info := range qcs {
		s.qcs[name] = info
	}
	for name, info := range yards {
		s.yards[name] = info
	}
	return s
}

func (s *StaticSnapshot) QC(name string) (Info, bool) {
	info, ok := s.qcs[name]
	return info, ok
}

func (s *StaticSnapshot) Yard(name string) (Info, bool) {
	info, ok := s.yards[name]
	return info, ok
}
