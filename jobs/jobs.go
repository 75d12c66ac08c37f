// Package jobs defines the planner's data model: job metadata as
// released by the job tracker, and the mutable, assignable Job the
// planner fills in and the simulator later consumes (§3).
package jobs

import "github.com/ch0002ic/balanced-corridor-planner/geometry"

// Seq is a stable, unique job identifier assigned by the job tracker.
type Seq string

// Type distinguishes a discharge (vessel -> QC -> yard) job from a
// load (yard -> QC -> vessel) job.
type Type int

const (
	Discharge Type = iota
	Load
)

func (t Type) String() string {
	if t == Discharge {
		return "DISCHARGE"
	}
	return "LOAD"
}

// Info is the immutable job metadata supplied by the job tracker.
type Info struct {
	JobSeq       Seq
	JobType      Type
	QCName       string
	YardName     string   // preferred yard
	AltYardNames []string // ordered alternates, possibly empty
}

// InstructionKind tags the variant held by an Instruction.
type InstructionKind int

const (
	BookQC InstructionKind = iota
	BookYard
	Drive
	WorkQC
	WorkYard
)

// Instruction is one low-level step the simulator executes. Only the
// fields relevant to Kind are populated; the rest are zero values.
type Instruction struct {
	Kind InstructionKind

	// HT is set on every instruction: it identifies which vehicle books,
	// drives or works the step.
	HT string

	// Path is set for Drive: the first element is the HT's current
	// cell, the last is the destination, consecutive pairs adjacent.
	Path []geometry.Coordinate

	// QCName is set for WorkQC.
	QCName string

	// YardName is set for WorkYard.
	YardName string
}

// Tracker is the read-only collaborator that releases jobs for
// planning (§6, "Consumed").
type Tracker interface {
	PlannableJobSequences() []Seq
	Job(seq Seq) (*Job, bool)
}

// Job is the assignable unit: created by the tracker, assigned at
// most once by the planner, then consumed by the simulator.
type Job struct {
	info Info

	AssignedHT   string
	AssignedYard string
	Instructions []Instruction
}

// NewJob wraps immutable job metadata into a fresh, unassigned Job.
func NewJob(info Info) *Job {
	return &Job{info: info}
}

// Info returns the job's immutable metadata (§6, "Job.get_job_info").
func (j *Job) Info() Info {
	return j.info
}

// AssignJob records the HT and yard chosen for this job. Calling it
// more than once on the same Job is a planner bug; callers within this
// module never do so (§3 invariant: assigned at most once).
func (j *Job) AssignJob(ht, yard string) {
	j.AssignedHT = ht
	j.AssignedYard = yard
}

// SetInstructions records the synthesised instruction sequence.
func (j *Job) SetInstructions(seq []Instruction) {
	j.Instructions = seq
}
