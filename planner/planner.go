// Package planner implements the per-tick orchestrator (§4.11): it
// drives the yard GA, selects HTs, synthesises paths and emits
// instructions for one planning tick. Non-fatal per-job failures
// accumulate via multierror.Append rather than aborting the tick, and
// go-uuid tags each tick's log lines with a correlation id the way a
// server assigns a request id.
package planner

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	uuid "github.com/hashicorp/go-uuid"
	"github.com/hashicorp/go-set/v3"

	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/httracker"
	"github.com/ch0002ic/balanced-corridor-planner/htselect"
	"github.com/ch0002ic/balanced-corridor-planner/jobs"
	"github.com/ch0002ic/balanced-corridor-planner/plannerstate"
	"github.com/ch0002ic/balanced-corridor-planner/plog"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
	"github.com/ch0002ic/balanced-corridor-planner/yardplan"
)

// Planner orchestrates one tick at a time against a job tracker, HT
// tracker and sector map (§6 "External interfaces").
type Planner struct {
	Jobs    jobs.Tracker
	HTs     httracker.Tracker
	Sectors sectormap.Snapshot
	State   *plannerstate.State
	Log     *plog.Logger
}

// New builds a Planner wired to its collaborators.
func New(jt jobs.Tracker, ht httracker.Tracker, sectors sectormap.Snapshot, state *plannerstate.State, log *plog.Logger) *Planner {
	if log == nil {
		log = plog.Default()
	}
	return &Planner{Jobs: jt, HTs: ht, Sectors: sectors, State: state, Log: log}
}

// Plan runs one tick (§4.11) and returns the jobs assigned this tick,
// in selection order. A non-nil error carries only non-fatal,
// per-job failures accumulated along the way (§7); the jobs slice is
// still valid and should be used.
func (p *Planner) Plan() ([]*jobs.Job, error) {
	tickID, _ := uuid.GenerateUUID()
	p.Log.Debugf("tick %s: starting", tickID)

	p.State.DecayCorridorHistory()

	seqs := p.Jobs.PlannableJobSequences()

	diJobs := p.collectDIJobs(seqs)
	gaPlan := yardplan.Optimize(diJobs, p.State.YardDIAllocation, p.State.RecentYardUsage, p.State.CorridorHistory, p.State.Features.DynamicCorridorBias, p.State.Features.GADiversity, p.Sectors, p.State.RNG)

	var errs *multierror.Error
	selected := set.New[string](8)
	var newJobs []*jobs.Job
	var usedYards []string

	for _, seq := range seqs {
		job, ok := p.Jobs.Job(seq)
		if !ok {
			continue
		}
		info := job.Info()

		assignedYard := p.resolveYard(info, gaPlan)

		ht, ok := htselect.Select(p.HTs, info, selected, assignedYard, htselect.CostContext{
			Sectors:         p.Sectors,
			RecentYardUsage: p.State.RecentYardUsage,
			CorridorHistory: p.State.CorridorHistory,
			HTFuturePenalty: p.State.Features.HTFuturePenalty,
		})
		if !ok {
			p.Log.Debugf("tick %s: no idle HT remains, stopping after %d jobs", tickID, len(newJobs))
			break
		}
		selected.Insert(ht)

		job.AssignJob(ht, assignedYard)

		buffer, known := p.HTs.Coordinate(ht)
		if !known {
			errs = multierror.Append(errs, fmt.Errorf("planner: HT %q has no coordinate", ht))
			continue
		}

		instructions, err := p.emitInstructions(ht, buffer, info, assignedYard)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("planner: job %q: %w", seq, err))
			continue
		}
		job.SetInstructions(instructions)

		newJobs = append(newJobs, job)
		if info.JobType == jobs.Discharge && assignedYard != "" {
			p.State.RecordDIAllocation(assignedYard)
		}
		usedYards = append(usedYards, assignedYard)
	}

	if len(usedYards) > 0 {
		p.State.DecayRecentYardUsage(usedYards)
		p.State.RecordCorridorUsage(usedYards)
	}

	if errs != nil {
		p.Log.Warnf("tick %s: %v", tickID, errs)
	}
	p.Log.Debugf("tick %s: planned %d jobs", tickID, len(newJobs))
	return newJobs, errs.ErrorOrNil()
}

// collectDIJobs pulls job info for every plannable sequence once, in
// tracker order, and returns the DI jobs the GA needs.
func (p *Planner) collectDIJobs(seqs []jobs.Seq) []yardplan.DIJob {
	diJobs := make([]yardplan.DIJob, 0, len(seqs))
	for _, seq := range seqs {
		job, ok := p.Jobs.Job(seq)
		if !ok {
			continue
		}
		info := job.Info()
		if info.JobType == jobs.Discharge {
			diJobs = append(diJobs, yardplan.DIJob{Seq: seq, Info: info})
		}
	}
	return diJobs
}

// resolveYard picks the assigned yard for one job (§4.11 step 5): the
// GA's plan for DI jobs when present, the fixed yard for LO jobs, or
// the single-job fallback when the GA left this DI job unplaced.
func (p *Planner) resolveYard(info jobs.Info, gaPlan yardplan.Plan) string {
	if info.JobType == jobs.Load {
		return info.YardName
	}
	if yard, ok := gaPlan.Assignments[info.JobSeq]; ok {
		return yard
	}
	return p.selectYardFallback(info)
}

// selectYardFallback is the single-job fallback (§4.11 step 5, §9 open
// question): enumerator then argmin of yard-choice cost, preferring
// the preferred yard on a tie. No capacity awareness.
func (p *Planner) selectYardFallback(info jobs.Info) string {
	options := yardplan.EnumerateOptions(info)
	if len(options) == 0 {
		return info.YardName
	}

	best := options[0]
	bestCost := yardplan.YardChoiceCost(info, best, p.Sectors, p.State.CorridorHistory, p.State.Features.DynamicCorridorBias)
	for _, opt := range options[1:] {
		cost := yardplan.YardChoiceCost(info, opt, p.Sectors, p.State.CorridorHistory, p.State.Features.DynamicCorridorBias)
		if cost < bestCost {
			bestCost = cost
			best = opt
		}
	}
	return best
}

// emitInstructions builds the DI or LO instruction template (§4.11
// steps 5) with synthesised DRIVE paths.
func (p *Planner) emitInstructions(ht string, buffer geometry.Coordinate, info jobs.Info, assignedYard string) ([]jobs.Instruction, error) {
	switch info.JobType {
	case jobs.Discharge:
		return p.emitDischarge(ht, buffer, info, assignedYard)
	default:
		return p.emitLoad(ht, buffer, info, assignedYard)
	}
}

func (p *Planner) emitDischarge(ht string, buffer geometry.Coordinate, info jobs.Info, assignedYard string) ([]jobs.Instruction, error) {
	toQC, err := p.State.Paths.BufferToQCIn(buffer, info.QCName)
	if err != nil {
		return nil, err
	}
	toYard, err := p.State.Paths.BufferToYardIn(buffer, assignedYard)
	if err != nil {
		return nil, err
	}
	fromQC, err := p.State.Paths.QCOutToBuffer(buffer, info.QCName)
	if err != nil {
		return nil, err
	}
	fromYard, err := p.State.Paths.YardOutToBuffer(buffer, assignedYard)
	if err != nil {
		return nil, err
	}

	return []jobs.Instruction{
		{Kind: jobs.BookQC, HT: ht, QCName: info.QCName},
		{Kind: jobs.Drive, HT: ht, Path: toQC},
		{Kind: jobs.WorkQC, HT: ht, QCName: info.QCName},
		{Kind: jobs.Drive, HT: ht, Path: fromQC},
		{Kind: jobs.BookYard, HT: ht, YardName: assignedYard},
		{Kind: jobs.Drive, HT: ht, Path: toYard},
		{Kind: jobs.WorkYard, HT: ht, YardName: assignedYard},
		{Kind: jobs.Drive, HT: ht, Path: fromYard},
	}, nil
}

func (p *Planner) emitLoad(ht string, buffer geometry.Coordinate, info jobs.Info, assignedYard string) ([]jobs.Instruction, error) {
	toYard, err := p.State.Paths.BufferToYardIn(buffer, assignedYard)
	if err != nil {
		return nil, err
	}
	fromYard, err := p.State.Paths.YardOutToBuffer(buffer, assignedYard)
	if err != nil {
		return nil, err
	}
	toQC, err := p.State.Paths.BufferToQCIn(buffer, info.QCName)
	if err != nil {
		return nil, err
	}
	fromQC, err := p.State.Paths.QCOutToBuffer(buffer, info.QCName)
	if err != nil {
		return nil, err
	}

	return []jobs.Instruction{
		{Kind: jobs.BookYard, HT: ht, YardName: assignedYard},
		{Kind: jobs.Drive, HT: ht, Path: toYard},
		{Kind: jobs.WorkYard, HT: ht, YardName: assignedYard},
		{Kind: jobs.Drive, HT: ht, Path: fromYard},
		{Kind: jobs.BookQC, HT: ht, QCName: info.QCName},
		{Kind: jobs.Drive, HT: ht, Path: toQC},
		{Kind: jobs.WorkQC, HT: ht, QCName: info.QCName},
		{Kind: jobs.Drive, HT: ht, Path: fromQC},
	}, nil
}
