// Package plannerstate centralises the planner's per-instance mutable
// state: the three small counters of §9 ("Counters"), the seeded PRNG,
// the path cache and the resolved feature flags, all owned by one
// struct the way a long-lived game state owns its mutable fields,
// minus any atomic/mutex machinery — §5 makes a planning tick
// single-threaded and synchronous, so plain fields suffice.
package plannerstate

import (
	"math/rand/v2"

	"github.com/ch0002ic/balanced-corridor-planner/config"
	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/pathsynth"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

// State holds everything a planner instance carries between ticks.
// Multiple planners never share a State (§5).
type State struct {
	Features config.Features
	RNG      *rand.Rand
	Paths    *pathsynth.Synthesiser

	RecentYardUsage  map[string]int
	CorridorHistory  map[geometry.Side]int
	YardDIAllocation map[string]int
}

// New builds a fresh State seeded deterministically from
// constants.DefaultRNGSeed, wired to sectors for path synthesis.
func New(features config.Features, sectors sectormap.Snapshot) *State {
	return &State{
		Features:         features,
		RNG:              rand.New(rand.NewPCG(constants.DefaultRNGSeed, constants.DefaultRNGSeed)),
		Paths:            pathsynth.New(sectors, features.PathCache),
		RecentYardUsage:  map[string]int{},
		CorridorHistory:  map[geometry.Side]int{geometry.West: 0, geometry.East: 0},
		YardDIAllocation: map[string]int{},
	}
}

// DecayCorridorHistory subtracts 1 from each side, floored at 0 (§4.11
// step 1). A no-op unless dynamic_corridor_bias is enabled.
func (s *State) DecayCorridorHistory() {
	if !s.Features.DynamicCorridorBias {
		return
	}
	for side, v := range s.CorridorHistory {
		if v > 0 {
			s.CorridorHistory[side] = v - 1
		}
	}
}

// DecayRecentYardUsage subtracts 1 from every tracked yard, dropping
// entries that reach 0, then increments each yard in used (§4.11 step 6).
func (s *State) DecayRecentYardUsage(used []string) {
	if len(used) == 0 {
		return
	}
	for yard, v := range s.RecentYardUsage {
		if v <= 1 {
			delete(s.RecentYardUsage, yard)
		} else {
			s.RecentYardUsage[yard] = v - 1
		}
	}
	for _, yard := range used {
		s.RecentYardUsage[yard]++
	}
}

// RecordCorridorUsage increments corridor_history for each used yard's
// side, when dynamic_corridor_bias is on (§4.11 step 6).
func (s *State) RecordCorridorUsage(used []string) {
	if !s.Features.DynamicCorridorBias {
		return
	}
	for _, yard := range used {
		s.CorridorHistory[geometry.YardSide(yard)]++
	}
}

// RecordDIAllocation increments yard_di_allocation for yard (§4.11 step 5).
func (s *State) RecordDIAllocation(yard string) {
	if yard == "" {
		return
	}
	s.YardDIAllocation[yard]++
}
