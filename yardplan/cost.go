// Package yardplan implements the DI yard-assignment optimiser: option
// enumeration (§4.6), yard-choice cost (§4.7), plan scoring (§4.8), the
// genetic-algorithm search (§4.9) and capacity repair (§4.10). The GA
// machinery reuses genetic.Candidate as a plain data shape but drives
// its own evolution loop: this genome is a job->yard map scored by a
// minimised cost with seeding, stagnation-driven mutation escalation
// and a capacity-aware repair pass, none of which line up with a
// generic slice-encoded, maximising run loop.
package yardplan

import (
	"math"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/jobs"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

// Genome maps a job sequence to its assigned yard. A mapping is
// simpler than an index vector aligned to a candidate list and keeps
// the scorer readable.
type Genome map[jobs.Seq]string

// JobOption pairs a DI job with its enumerated yard options (§4.6).
type JobOption struct {
	Seq     jobs.Seq
	Info    jobs.Info
	Options []string
}

// EnumerateOptions returns the ordered yard-option tuple for info:
// the preferred yard first, then each alternate that is non-empty and
// not already present. A job with no preferred yard gets an empty
// tuple; the caller then leaves the job on its (empty) preferred yard
// via the single-job fallback.
func EnumerateOptions(info jobs.Info) []string {
	if info.YardName == "" {
		return nil
	}
	options := []string{info.YardName}
	seen := map[string]bool{info.YardName: true}
	for _, alt := range info.AltYardNames {
		if alt == "" || seen[alt] {
			continue
		}
		seen[alt] = true
		options = append(options, alt)
	}
	return options
}

// YardChoiceCost scores assigning yard to the job described by info
// (§4.7). corridorHistory and dynamicCorridorBias implement the
// optional dynamic-bias term.
func YardChoiceCost(info jobs.Info, yard string, sectors sectormap.Snapshot, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool) float64 {
	qc, ok := sectors.QC(info.QCName)
	if !ok {
		return math.Inf(1)
	}
	yardInfo, ok := sectors.Yard(yard)
	if !ok {
		return math.Inf(1)
	}

	cost := float64(geometry.Manhattan(qc.Out, yardInfo.In)) * constants.HTDriveTimePerSector

	if yard == info.YardName {
		cost *= constants.PreferredYardDiscount
	} else {
		rank := len(info.AltYardNames)
		for i, alt := range info.AltYardNames {
			if alt == yard {
				rank = i
				break
			}
		}
		cost += float64(rank+1) * constants.AltYardRankStep
	}

	if dynamicCorridorBias {
		side := geometry.YardSide(yard)
		diff := corridorHistory[side] - corridorHistory[side.Opposite()]
		if diff > 0 {
			cost += float64(diff) * constants.DynamicCorridorBiasWeight
		}
	}

	return cost
}

// buildCounts folds plan's per-yard occurrence counts into a clone of
// base, and returns the order yards first appear in candidates so
// every caller sums in the same, reproducible sequence (§4.9
// "Determinism").
func buildCounts(plan Genome, candidates []JobOption, base map[string]int) (planCounts map[string]int, combined map[string]int, order []string) {
	planCounts = make(map[string]int, len(candidates))
	combined = make(map[string]int, len(base)+len(candidates))
	for yard, n := range base {
		combined[yard] = n
	}
	for _, c := range candidates {
		yard := plan[c.Seq]
		if planCounts[yard] == 0 {
			order = append(order, yard)
		}
		planCounts[yard]++
		combined[yard]++
	}
	return planCounts, combined, order
}

// Score evaluates a full candidate assignment (§4.8).
func Score(plan Genome, candidates []JobOption, baseDICounts map[string]int, recentYardUsage map[string]int, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool, sectors sectormap.Snapshot) float64 {
	var total float64

	for _, c := range candidates {
		total += YardChoiceCost(c.Info, plan[c.Seq], sectors, corridorHistory, dynamicCorridorBias)
	}

	planCounts, _, order := buildCounts(plan, candidates, baseDICounts)

	counted := make(map[string]bool, len(order))
	west, east := 0, 0

	for _, yard := range order {
		count := planCounts[yard]
		if count > 1 {
			total += float64(count-1)*constants.DuplicationPenaltyLinear + float64(count*count)
		}
		if recentYardUsage[yard] > 0 {
			total += float64(min(recentYardUsage[yard], constants.CongestionScorerCap)) * constants.CongestionScorerWeight
		}

		combinedCount := count + baseDICounts[yard]
		if combinedCount > constants.YardDICapacity {
			total += float64(combinedCount-constants.YardDICapacity) * constants.YardDIHardPenaltyPerUnit
		} else {
			remaining := constants.YardDICapacity - combinedCount
			if remaining <= constants.YardDISoftThreshold {
				total += float64(constants.YardDISoftThreshold-remaining+1) * constants.YardDISoftPenaltyStep
			}
		}

		counted[yard] = true
		if geometry.YardSide(yard) == geometry.West {
			west += combinedCount
		} else {
			east += combinedCount
		}
	}

	for yard, count := range baseDICounts {
		if counted[yard] {
			continue
		}
		if geometry.YardSide(yard) == geometry.West {
			west += count
		} else {
			east += count
		}
	}

	imbalance := absInt(west - east)
	if dynamicCorridorBias {
		hd := absInt(corridorHistory[geometry.West] - corridorHistory[geometry.East])
		total += float64(imbalance) * (constants.CorridorImbalanceDynamicBase + constants.CorridorImbalanceDynamicHDStep*float64(hd))
	} else {
		total += float64(imbalance) * constants.CorridorImbalanceWeight
	}

	return total
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
