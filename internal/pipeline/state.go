package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"burncheck/internal/disc"
	"burncheck/internal/workspace"
)

// State is a position in the run state machine.
type State int

const (
	StateInit State = iota
	StateStaged
	StateManifested
	StateImageBuilt
	StateBurned
	StateMountWait
	StateVerified
	StateCleaned
	StateFailed
)

var stateNames = [...]struct{ name, label string }{
	StateInit:       {"INIT", "init"},
	StateStaged:     {"STAGED", "stage"},
	StateManifested: {"MANIFESTED", "manifest"},
	StateImageBuilt: {"IMAGE_BUILT", "image"},
	StateBurned:     {"BURNED", "burn"},
	StateMountWait:  {"MOUNT_WAIT", "remount"},
	StateVerified:   {"VERIFIED", "verify"},
	StateCleaned:    {"CLEANED", "teardown"},
	StateFailed:     {"FAILED", "failed"},
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s].name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Label names the work performed to reach s, for logs and messages.
func (s State) Label() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s].label
	}
	return s.String()
}

// Outcome is the read-back comparison result.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeMatch
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// StageTiming records how long one transition took.
type StageTiming struct {
	State    State
	Started  time.Time
	Duration time.Duration
}

// RunState is the mutable record of one run. Stages fill it in; teardown
// consumes it.
type RunState struct {
	ID    string
	Job   Job
	State State

	StartedAt  time.Time
	FinishedAt time.Time
	Timings    []StageTiming

	ManifestFiles int
	DriveStatus   string
	Remount       disc.RemountResult
	MediaEvents   int
	MountPoint    disc.MountPoint
	Outcome       Outcome
	Mismatches    []workspace.Mismatch

	FailedStage State
	Err         error
	Teardown    TeardownReport

	tornDown bool
}

func newRunState(job Job, now time.Time) *RunState {
	return &RunState{
		ID:        uuid.NewString(),
		Job:       job,
		State:     StateInit,
		StartedAt: now,
	}
}

// Succeeded reports whether the run reached CLEANED.
func (s *RunState) Succeeded() bool {
	return s != nil && s.State == StateCleaned
}

// ExitCode is the process exit status for the run.
func (s *RunState) ExitCode() int {
	if s == nil {
		return ExitUsage
	}
	return ExitCode(s.Err)
}

// Duration is the wall time from start to finish.
func (s *RunState) Duration() time.Duration {
	if s == nil || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// TornDown reports whether teardown already ran for this state.
func (s *RunState) TornDown() bool { return s.tornDown }

func (s *RunState) advance(to State, started time.Time, now time.Time) {
	s.State = to
	s.Timings = append(s.Timings, StageTiming{State: to, Started: started, Duration: now.Sub(started)})
}
