package yardplan

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/jobs"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

func testSectors() sectormap.Snapshot {
	return sectormap.NewStaticSnapshot(
		map[string]sectormap.Info{
			"QC01": {In: geometry.Coordinate{X: 10, Y: 4}, Out: geometry.Coordinate{X: 10, Y: 4}},
		},
		map[string]sectormap.Info{
			"YD_A": {In: geometry.Coordinate{X: 2, Y: 12}, Out: geometry.Coordinate{X: 2, Y: 12}},
			"YD_B": {In: geometry.Coordinate{X: 2, Y: 12}, Out: geometry.Coordinate{X: 2, Y: 12}},
			"YD_H": {In: geometry.Coordinate{X: 40, Y: 12}, Out: geometry.Coordinate{X: 40, Y: 12}},
		},
	)
}

func TestEnumerateOptions(t *testing.T) {
	cases := []struct {
		name string
		info jobs.Info
		want []string
	}{
		{"no preferred", jobs.Info{}, nil},
		{"preferred only", jobs.Info{YardName: "YD_A"}, []string{"YD_A"}},
		{"with alternates", jobs.Info{YardName: "YD_A", AltYardNames: []string{"YD_H", ""}}, []string{"YD_A", "YD_H"}},
		{"dedups preferred from alts", jobs.Info{YardName: "YD_A", AltYardNames: []string{"YD_A", "YD_H"}}, []string{"YD_A", "YD_H"}},
	}
	for _, c := range cases {
		got := EnumerateOptions(c.info)
		if len(got) != len(c.want) {
			t.Errorf("%s: EnumerateOptions = %v, want %v", c.name, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: EnumerateOptions = %v, want %v", c.name, got, c.want)
				break
			}
		}
	}
}

func TestYardChoiceCostPreferredDiscount(t *testing.T) {
	info := jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}
	sectors := testSectors()

	preferred := YardChoiceCost(info, "YD_A", sectors, nil, false)
	alt := YardChoiceCost(info, "YD_H", sectors, nil, false)

	base := float64(geometry.Manhattan(geometry.Coordinate{X: 10, Y: 4}, geometry.Coordinate{X: 2, Y: 12})) * constants.HTDriveTimePerSector
	want := base * constants.PreferredYardDiscount
	if math.Abs(preferred-want) > 1e-9 {
		t.Errorf("preferred cost = %v, want %v", preferred, want)
	}
	if alt <= preferred {
		t.Errorf("alternate should cost more than preferred: %v vs %v", alt, preferred)
	}
}

func TestYardChoiceCostUnknownSectorInfinite(t *testing.T) {
	info := jobs.Info{QCName: "QC99", YardName: "YD_A"}
	if cost := YardChoiceCost(info, "YD_A", testSectors(), nil, false); !math.IsInf(cost, 1) {
		t.Errorf("expected +Inf for unknown QC, got %v", cost)
	}
}

func TestYardChoiceCostDynamicCorridorBias(t *testing.T) {
	info := jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}
	sectors := testSectors()
	history := map[geometry.Side]int{geometry.West: 10, geometry.East: 0}

	withBias := YardChoiceCost(info, "YD_A", sectors, history, true)
	withoutBias := YardChoiceCost(info, "YD_A", sectors, history, false)
	if withBias <= withoutBias {
		t.Errorf("west-heavy history should raise west yard's cost: %v vs %v", withBias, withoutBias)
	}
}

func TestScoreCapacityHardPenalty(t *testing.T) {
	candidates := []JobOption{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A"}, Options: []string{"YD_A"}},
	}
	plan := Genome{"j1": "YD_A"}
	base := map[string]int{"YD_A": constants.YardDICapacity}

	score := Score(plan, candidates, base, nil, nil, false, testSectors())
	if score < constants.YardDIHardPenaltyPerUnit {
		t.Errorf("expected hard penalty to dominate score, got %v", score)
	}
}

func TestScoreDuplicationPenalty(t *testing.T) {
	// YD_A and YD_B sit at identical coordinates on the same corridor
	// side, so the only difference between "both on YD_A" and "split
	// across YD_A/YD_B" is the duplication penalty and the alternate-yard
	// cost (no preferred-yard discount, plus the rank step) for whichever
	// job doesn't get its pick.
	candidates := []JobOption{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A"}, Options: []string{"YD_A", "YD_B"}},
		{Seq: "j2", Info: jobs.Info{QCName: "QC01", YardName: "YD_B"}, Options: []string{"YD_B", "YD_A"}},
	}
	dup := Genome{"j1": "YD_A", "j2": "YD_A"}
	split := Genome{"j1": "YD_A", "j2": "YD_B"}

	dupScore := Score(dup, candidates, map[string]int{}, nil, nil, false, testSectors())
	splitScore := Score(split, candidates, map[string]int{}, nil, nil, false, testSectors())
	if dupScore <= splitScore {
		t.Errorf("duplicate yard assignment should score worse: %v vs %v", dupScore, splitScore)
	}
}

func TestOptimizePinsSingleOptionJobs(t *testing.T) {
	diJobs := []DIJob{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A"}},
	}
	rng := rand.New(rand.NewPCG(0, 0))
	plan := Optimize(diJobs, map[string]int{}, nil, nil, false, false, testSectors(), rng)

	if plan.Assignments["j1"] != "YD_A" {
		t.Errorf("single-option job should be pinned to its only yard, got %q", plan.Assignments["j1"])
	}
	if plan.Counts["YD_A"] != 1 {
		t.Errorf("pinned job should be counted, got %d", plan.Counts["YD_A"])
	}
}

func TestOptimizeRespectsCapacityUnderSaturation(t *testing.T) {
	diJobs := []DIJob{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
		{Seq: "j2", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
		{Seq: "j3", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
	}
	base := map[string]int{"YD_A": 699}
	rng := rand.New(rand.NewPCG(0, 0))
	plan := Optimize(diJobs, base, nil, nil, false, false, testSectors(), rng)

	migrated := 0
	for _, seq := range []jobs.Seq{"j1", "j2", "j3"} {
		if plan.Assignments[seq] == "YD_H" {
			migrated++
		}
	}
	if migrated < 2 {
		t.Errorf("expected at least 2 jobs to migrate to YD_H, got %d", migrated)
	}
	if plan.Counts["YD_A"] > constants.YardDICapacity {
		t.Errorf("YD_A should not exceed capacity after repair, got %d", plan.Counts["YD_A"])
	}
}

func TestOptimizeCorridorBalanceS4(t *testing.T) {
	// 4 DI jobs, each choosing between YD_A (west) and YD_H (east),
	// split evenly by preference. QC01's exit sits at x=21, the same
	// Manhattan distance (27) from both yard entries, so neither side is
	// cheaper by distance: the optimal, already-balanced plan is also
	// the cheapest one, so convergence to it under dynamic bias should
	// be robust regardless of GA seeding.
	sectors := sectormap.NewStaticSnapshot(
		map[string]sectormap.Info{
			"QC01": {In: geometry.Coordinate{X: 21, Y: 4}, Out: geometry.Coordinate{X: 21, Y: 4}},
		},
		map[string]sectormap.Info{
			"YD_A": {In: geometry.Coordinate{X: 2, Y: 12}, Out: geometry.Coordinate{X: 2, Y: 12}},
			"YD_H": {In: geometry.Coordinate{X: 40, Y: 12}, Out: geometry.Coordinate{X: 40, Y: 12}},
		},
	)
	diJobs := []DIJob{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
		{Seq: "j2", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
		{Seq: "j3", Info: jobs.Info{QCName: "QC01", YardName: "YD_H", AltYardNames: []string{"YD_A"}}},
		{Seq: "j4", Info: jobs.Info{QCName: "QC01", YardName: "YD_H", AltYardNames: []string{"YD_A"}}},
	}
	rng := rand.New(rand.NewPCG(0, 0))
	plan := Optimize(diJobs, map[string]int{}, nil, nil, true, true, sectors, rng)

	west, east := 0, 0
	for _, seq := range []jobs.Seq{"j1", "j2", "j3", "j4"} {
		if geometry.YardSide(plan.Assignments[seq]) == geometry.West {
			west++
		} else {
			east++
		}
	}
	if diff := west - east; diff < -1 || diff > 1 {
		t.Errorf("corridor imbalance too large: west=%d east=%d (diff=%d)", west, east, diff)
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	diJobs := []DIJob{
		{Seq: "j1", Info: jobs.Info{QCName: "QC01", YardName: "YD_A", AltYardNames: []string{"YD_H"}}},
		{Seq: "j2", Info: jobs.Info{QCName: "QC01", YardName: "YD_H", AltYardNames: []string{"YD_A"}}},
	}
	run := func() Genome {
		rng := rand.New(rand.NewPCG(0, 0))
		return Optimize(diJobs, map[string]int{}, nil, nil, true, true, testSectors(), rng).Assignments
	}
	a, b := run(), run()
	for seq, yard := range a {
		if b[seq] != yard {
			t.Errorf("non-deterministic result for %s: %q vs %q", seq, yard, b[seq])
		}
	}
}
