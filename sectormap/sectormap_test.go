package sectormap

import (
	"testing"

	"github.com/ch0002ic/balanced-corridor-planner/geometry"
)

func TestStaticSnapshotLookup(t *testing.T) {
	s := NewStaticSnapshot(
		map[string]Info{"QC01": {In: geometry.Coordinate{X: 1, Y: 4}, Out: geometry.Coordinate{X: 42, Y: 4}}},
		map[string]Info{"YD_A": {In: geometry.Coordinate{X: 2, Y: 12}, Out: geometry.Coordinate{X: 2, Y: 12}}},
	)

	if _, ok := s.QC("QC01"); !ok {
		t.Error("expected QC01 to be known")
	}
	if _, ok := s.QC("QC99"); ok {
		t.Error("expected QC99 to be unknown")
	}
	if _, ok := s.Yard("YD_A"); !ok {
		t.Error("expected YD_A to be known")
	}
	if _, ok := s.Yard("YD_Z"); ok {
		t.Error("expected YD_Z to be unknown")
	}
}

func TestStaticSnapshotDoesNotAliasInputMaps(t *testing.T) {
	qcs := map[string]Info{"QC01": {In: geometry.Coordinate{X: 1, Y: 4}}}
	s := NewStaticSnapshot(qcs, nil)

	qcs["QC01"] = Info{In: geometry.Coordinate{X: 99, Y: 99}}

	info, _ := s.QC("QC01")
	if info.In.X == 99 {
		t.Error("snapshot should not alias the caller's input map")
	}
}
