// Package htselect implements the greedy least-cost HT assignment
// heuristic (§4.5): a small struct-with-method package rather than a
// generic framework, since the cost formula is narrow and purpose-built
// enough that a direct implementation reads more clearly than an
// abstraction over it.
package htselect

import (
	"math"

	"github.com/hashicorp/go-set/v3"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/httracker"
	"github.com/ch0002ic/balanced-corridor-planner/jobs"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

// CostContext bundles the planner-state readings the cost estimator
// needs. It is a plain snapshot, not the live planner state, so this
// package never depends on plannerstate (avoiding an import cycle with
// the orchestrator that wires both together).
type CostContext struct {
	Sectors         sectormap.Snapshot
	RecentYardUsage map[string]int
	CorridorHistory map[geometry.Side]int
	HTFuturePenalty bool
}

// EstimateCost scores one (HT, job, yard) triple (§4.5 "Cost estimator").
func EstimateCost(ht geometry.Coordinate, job jobs.Info, assignedYard string, ctx CostContext) float64 {
	qc, ok := ctx.Sectors.QC(job.QCName)
	if !ok {
		return math.Inf(1)
	}

	var yard sectormap.Info
	haveYard := false
	if assignedYard != "" {
		yard, haveYard = ctx.Sectors.Yard(assignedYard)
	}

	var cost float64
	switch job.JobType {
	case jobs.Discharge:
		cost = float64(geometry.Manhattan(ht, qc.In))
		if haveYard {
			cost += constants.DICostQCToYardWeight * float64(geometry.Manhattan(qc.Out, yard.In))
			cost += constants.DICostYardXWeight * absInt(ht.X-yard.In.X)
		}
	case jobs.Load:
		if haveYard {
			cost = float64(geometry.Manhattan(ht, yard.In))
			cost += constants.LOCostYardToQCWeight * float64(geometry.Manhattan(yard.Out, qc.In))
			cost += constants.LOCostYardXWeight * absInt(ht.X-yard.In.X)
		} else {
			cost = float64(geometry.Manhattan(ht, qc.In))
		}
	}

	// Congestion and future-penalty add-ons key off the assigned yard
	// name being non-empty, not off whether it resolved in the sector
	// map: geometry.YardSide reads only the name's leading letter, so
	// it needs no sector lookup, and a yard name can be set on a job
	// without ever being validated against the sector map.
	if assignedYard != "" {
		cost += constants.CongestionWeight * float64(ctx.RecentYardUsage[assignedYard])

		if ctx.HTFuturePenalty {
			diff := ctx.CorridorHistory[geometry.West] - ctx.CorridorHistory[geometry.East]
			side := geometry.YardSide(assignedYard)
			switch {
			case side == geometry.West && diff > 0:
				cost += constants.FutureCorridorWeight * float64(diff)
			case side == geometry.East && diff < 0:
				cost += constants.FutureCorridorWeight * float64(-diff)
			}
			if geometry.CorridorSide(ht) != side {
				cost += constants.FutureSideMismatchAdd
			}
		}
	}

	return cost
}

func absInt(v int) float64 {
	if v < 0 {
		return float64(-v)
	}
	return float64(v)
}

// Select picks the idle HT minimising EstimateCost, excluding any name
// already in selected this tick. Ties break on the tracker's set
// iteration order, normalised to ascending sort (§9). ok is false when
// no eligible HT remains.
func Select(tracker httracker.Tracker, job jobs.Info, selected *set.Set[string], assignedYard string, ctx CostContext) (ht string, ok bool) {
	candidates := httracker.SortedNames(tracker.AvailableHTs())

	bestCost := math.Inf(1)
	best := ""
	found := false

	for _, name := range candidates {
		if selected.Contains(name) {
			continue
		}
		coord, known := tracker.Coordinate(name)
		if !known {
			continue
		}
		cost := EstimateCost(coord, job, assignedYard, ctx)
		if !found || cost < bestCost {
			bestCost = cost
			best = name
			found = true
		}
	}

	return best, found
}
