// Package httracker defines the planner's read-only view over the HT
// coordinate tracker (§4.3). The planner treats these as externally
// advanced snapshots; it never mutates them.
package httracker

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/ch0002ic/balanced-corridor-planner/geometry"
)

// Tracker is the collaborator supplying HT positions and status for
// one planning tick.
type Tracker interface {
	// AvailableHTs returns the idle, plannable HT names.
	AvailableHTs() *set.Set[string]

	// Coordinate returns an HT's current cell, or ok == false if the
	// tracker has no position for it.
	Coordinate(ht string) (geometry.Coordinate, bool)

	// NonMovingHTs returns HTs the tracker currently reports as
	// stationary (idle or stalled).
	NonMovingHTs() *set.Set[string]

	// IsDeadlock reports whether the tracker has detected a deadlock
	// condition. The planner does not diagnose deadlocks (§7); it only
	// forwards the signal to the caller.
	IsDeadlock() bool
}

// SortedNames returns a set's members in deterministic ascending
// order. §9 calls out that HT selection must not depend on an
// upstream set's iteration order; every caller that walks a Tracker
// set goes through this helper first.
func SortedNames(s *set.Set[string]) []string {
	names := s.Slice()
	sort.Strings(names)
	return names
}
