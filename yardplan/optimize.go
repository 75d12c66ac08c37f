package yardplan

import (
	"math/rand/v2"
	"sort"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/genetic"
	"github.com/ch0002ic/balanced-corridor-planner/jobs"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

// DIJob is one discharge job the optimiser must place, before option
// enumeration.
type DIJob struct {
	Seq  jobs.Seq
	Info jobs.Info
}

// Plan is the optimiser's output: the resolved job->yard assignment
// for every DI job that had at least one yard option, and the yard
// counts (baseline plus this plan) that produced it.
type Plan struct {
	Assignments Genome
	Counts      map[string]int
}

// individual is one GA population member; reuses genetic.Candidate's
// plain Data/Score shape as a data holder only. Lower Score is better
// here (a cost, not a fitness) — Candidate itself carries no built-in
// direction.
type individual = genetic.Candidate[Genome, float64]

// Optimize runs option enumeration, GA search and capacity repair for
// a tick's DI jobs (§4.9, §4.10). DI jobs with a single yard option
// are pinned directly and folded into the returned counts; jobs with
// no option at all are omitted from Assignments so the caller's
// single-job fallback (§4.11 step 5) can handle them.
func Optimize(diJobs []DIJob, baseDICounts map[string]int, recentYardUsage map[string]int, corridorHistory map[geometry.Side]int, dynamicCorridorBias, gaDiversity bool, sectors sectormap.Snapshot, rng *rand.Rand) Plan {
	plan := Genome{}
	counts := cloneCounts(baseDICounts)

	var candidates []JobOption
	for _, dj := range diJobs {
		options := EnumerateOptions(dj.Info)
		switch len(options) {
		case 0:
			continue
		case 1:
			plan[dj.Seq] = options[0]
			counts[options[0]]++
		default:
			candidates = append(candidates, JobOption{Seq: dj.Seq, Info: dj.Info, Options: options})
		}
	}

	if len(candidates) == 0 {
		return Plan{Assignments: plan, Counts: counts}
	}

	gaPlan := runGA(candidates, counts, recentYardUsage, corridorHistory, dynamicCorridorBias, gaDiversity, sectors, rng)
	gaPlan = repair(gaPlan, candidates, counts, sectors, corridorHistory, dynamicCorridorBias)

	for _, c := range candidates {
		yard := gaPlan[c.Seq]
		plan[c.Seq] = yard
		counts[yard]++
	}

	return Plan{Assignments: plan, Counts: counts}
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneGenome(g Genome) Genome {
	out := make(Genome, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

func populationSize(n int) int {
	size := n * 2
	if size < constants.GAPopulationMin {
		size = constants.GAPopulationMin
	}
	if size > constants.GAPopulationMax {
		size = constants.GAPopulationMax
	}
	return size
}

func eliteCount(populationSize int) int {
	count := populationSize / 3
	if count < constants.GAEliteMin {
		count = constants.GAEliteMin
	}
	if count > constants.GAEliteMax {
		count = constants.GAEliteMax
	}
	return count
}

// runGA executes the evolution loop over candidates only (§4.9).
// baseCounts already includes any pinned DI jobs' yards.
func runGA(candidates []JobOption, baseCounts map[string]int, recentYardUsage map[string]int, corridorHistory map[geometry.Side]int, dynamicCorridorBias, gaDiversity bool, sectors sectormap.Snapshot, rng *rand.Rand) Genome {
	popSize := populationSize(len(candidates))
	elites := eliteCount(popSize)

	mutationRate := constants.GAMutationRateBase
	if gaDiversity {
		mutationRate = constants.GAMutationRateDiversity
	}

	pool := seedPopulation(candidates, baseCounts, popSize, gaDiversity, sectors, corridorHistory, dynamicCorridorBias, rng)

	var bestPlan Genome
	bestScore := 0.0
	haveBest := false

	for gen := 0; gen < constants.GAGenerations; gen++ {
		for i := range pool {
			pool[i].Score = Score(pool[i].Data, candidates, baseCounts, recentYardUsage, corridorHistory, dynamicCorridorBias, sectors)
		}

		genBest := pool[0]
		for _, ind := range pool[1:] {
			if ind.Score < genBest.Score {
				genBest = ind
			}
		}

		if !haveBest || genBest.Score < bestScore {
			bestScore = genBest.Score
			bestPlan = cloneGenome(genBest.Data)
			haveBest = true
		} else if gaDiversity {
			mutationRate = min(mutationRate+constants.GAMutationRateStep, constants.GAMutationRateMax)
		}

		ranked := append([]individual(nil), pool...)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
		eliteMembers := ranked[:min(elites, len(ranked))]
		if len(eliteMembers) == 0 {
			eliteMembers = []individual{{Data: bestPlan, Score: bestScore}}
		}

		next := append([]individual(nil), eliteMembers...)
		for len(next) < popSize {
			parent := eliteMembers[rng.IntN(len(eliteMembers))]
			child := cloneGenome(parent.Data)
			mutate(child, candidates, baseCounts, mutationRate, rng)
			next = append(next, individual{Data: child})
		}
		pool = next[:popSize]
	}

	for i := range pool {
		pool[i].Score = Score(pool[i].Data, candidates, baseCounts, recentYardUsage, corridorHistory, dynamicCorridorBias, sectors)
	}
	finalBest := pool[0]
	for _, ind := range pool[1:] {
		if ind.Score < finalBest.Score {
			finalBest = ind
		}
	}
	if !haveBest || finalBest.Score < bestScore {
		bestPlan = cloneGenome(finalBest.Data)
	}

	return bestPlan
}

func seedPopulation(candidates []JobOption, baseCounts map[string]int, popSize int, gaDiversity bool, sectors sectormap.Snapshot, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool, rng *rand.Rand) []individual {
	pool := make([]individual, 0, popSize)
	pool = append(pool, individual{Data: baselineSeed(candidates, gaDiversity, sectors, corridorHistory, dynamicCorridorBias, rng)})
	for len(pool) < popSize {
		pool = append(pool, individual{Data: randomAssignment(candidates, baseCounts, gaDiversity, sectors, corridorHistory, dynamicCorridorBias, rng)})
	}
	return pool
}

func baselineSeed(candidates []JobOption, gaDiversity bool, sectors sectormap.Snapshot, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool, rng *rand.Rand) Genome {
	genome := make(Genome, len(candidates))
	for _, c := range candidates {
		if !gaDiversity {
			genome[c.Seq] = c.Options[0]
			continue
		}
		best := c.Options[0]
		bestCost := YardChoiceCost(c.Info, best, sectors, corridorHistory, dynamicCorridorBias) + rng.Float64()*constants.GADiverseSeedJitterMax
		for _, opt := range c.Options[1:] {
			jittered := YardChoiceCost(c.Info, opt, sectors, corridorHistory, dynamicCorridorBias) + rng.Float64()*constants.GADiverseSeedJitterMax
			if jittered < bestCost {
				bestCost = jittered
				best = opt
			}
		}
		genome[c.Seq] = best
	}
	return genome
}

func randomAssignment(candidates []JobOption, baseCounts map[string]int, gaDiversity bool, sectors sectormap.Snapshot, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool, rng *rand.Rand) Genome {
	genome := make(Genome, len(candidates))
	local := map[string]int{}

	feasible := func(yard string) bool {
		return baseCounts[yard]+local[yard] < constants.YardDICapacity
	}

	for _, c := range candidates {
		var chosen string

		if gaDiversity {
			type scoredOption struct {
				yard string
				cost float64
			}
			scored := make([]scoredOption, len(c.Options))
			for i, opt := range c.Options {
				scored[i] = scoredOption{opt, YardChoiceCost(c.Info, opt, sectors, corridorHistory, dynamicCorridorBias) + rng.Float64()*constants.GARandomAssignmentJitterMax}
			}
			sort.SliceStable(scored, func(i, j int) bool { return scored[i].cost < scored[j].cost })
			chosen = scored[0].yard
			for _, so := range scored {
				if feasible(so.yard) {
					chosen = so.yard
					break
				}
			}
		} else {
			if rng.Float64() < constants.GAPreferredBiasProbability && feasible(c.Options[0]) {
				chosen = c.Options[0]
			} else {
				shuffled := append([]string(nil), c.Options...)
				rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
				chosen = shuffled[0]
				for _, opt := range shuffled {
					if feasible(opt) {
						chosen = opt
						break
					}
				}
			}
		}

		genome[c.Seq] = chosen
		local[chosen]++
	}

	return genome
}

// mutate applies §4.9's mutation operator in place.
func mutate(genome Genome, candidates []JobOption, baseCounts map[string]int, rate float64, rng *rand.Rand) {
	running := cloneCounts(baseCounts)

	for _, c := range candidates {
		current := genome[c.Seq]
		if rng.Float64() < rate {
			shuffled := append([]string(nil), c.Options...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			for _, opt := range shuffled {
				if opt == current {
					continue
				}
				if running[opt] < constants.YardDICapacity {
					current = opt
					break
				}
			}
		}
		genome[c.Seq] = current
		running[current]++
	}
}

type move struct {
	seq   jobs.Seq
	qc    string
	alt   string
	delta float64
}

// repair applies capacity repair (§4.10) to the GA's winning plan.
func repair(plan Genome, candidates []JobOption, baseCounts map[string]int, sectors sectormap.Snapshot, corridorHistory map[geometry.Side]int, dynamicCorridorBias bool) Genome {
	plan = cloneGenome(plan)
	byYard := make(map[string][]JobOption)
	for _, c := range candidates {
		yard := plan[c.Seq]
		byYard[yard] = append(byYard[yard], c)
	}

	_, combined, order := buildCounts(plan, candidates, baseCounts)
	yardOrder := append([]string(nil), order...)
	baseOnly := make([]string, 0, len(baseCounts))
	seen := map[string]bool{}
	for _, y := range yardOrder {
		seen[y] = true
	}
	for y := range baseCounts {
		if !seen[y] {
			baseOnly = append(baseOnly, y)
		}
	}
	sort.Strings(baseOnly)
	yardOrder = append(yardOrder, baseOnly...)

	for {
		overflowYard := ""
		maxOverflow := 0
		for _, y := range yardOrder {
			overflow := combined[y] - constants.YardDICapacity
			if overflow > maxOverflow {
				maxOverflow = overflow
				overflowYard = y
			}
		}
		if overflowYard == "" {
			break
		}

		var moves []move
		for _, c := range byYard[overflowYard] {
			for _, alt := range c.Options {
				if alt == overflowYard {
					continue
				}
				if combined[alt] >= constants.YardDICapacity {
					continue
				}
				delta := YardChoiceCost(c.Info, alt, sectors, corridorHistory, dynamicCorridorBias) - YardChoiceCost(c.Info, overflowYard, sectors, corridorHistory, dynamicCorridorBias)
				moves = append(moves, move{seq: c.Seq, qc: c.Info.QCName, alt: alt, delta: delta})
			}
		}
		if len(moves) == 0 {
			break
		}

		sort.SliceStable(moves, func(i, j int) bool {
			if moves[i].delta != moves[j].delta {
				return moves[i].delta < moves[j].delta
			}
			return moves[i].qc < moves[j].qc
		})
		chosen := moves[0]

		plan[chosen.seq] = chosen.alt
		combined[overflowYard]--
		combined[chosen.alt]++

		moved := byYard[overflowYard]
		for i, c := range moved {
			if c.Seq == chosen.seq {
				moved = append(moved[:i], moved[i+1:]...)
				break
			}
		}
		byYard[overflowYard] = moved
		byYard[chosen.alt] = append(byYard[chosen.alt], findOption(candidates, chosen.seq))
	}

	return plan
}

func findOption(candidates []JobOption, seq jobs.Seq) JobOption {
	for _, c := range candidates {
		if c.Seq == seq {
			return c
		}
	}
	return JobOption{}
}
