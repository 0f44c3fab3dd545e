package runstore

import "time"

// RunState mirrors the Failure State Machine states a run moves through.
type RunState string

const (
	StateInit      RunState = "init"
	StatePreQA     RunState = "preqa"
	StateSynthesis RunState = "synthesis"
	StateFit       RunState = "fit"
	StateAssemble  RunState = "assemble"
	StatePostQA    RunState = "postqa"
	StateDone      RunState = "done"
	StateFailed    RunState = "failed"
)

// CueStatus tracks a single cue's TTS synthesis progress.
type CueStatus string

const (
	CuePending     CueStatus = "pending"
	CueCached      CueStatus = "cached"
	CueSynthesized CueStatus = "synthesized"
	CueFailed      CueStatus = "failed"
)

// Run is the persisted record of one dub run.
type Run struct {
	ID          int64
	ProjectPath string
	Mode        string
	State       RunState
	FailReason  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CueRecord is the persisted synthesis state of one cue within a run.
type CueRecord struct {
	RunID     int64
	CueIndex  int
	Status    CueStatus
	CachePath string
	Error     string
	UpdatedAt time.Time
}
