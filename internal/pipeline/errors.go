package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"burncheck/internal/runner"
)

// Kind classifies a stage failure.
type Kind int

const (
	KindWorkspace Kind = iota + 1
	KindStaging
	KindChecksum
	KindImageBuild
	KindUnsupportedMedia
	KindBurn
	KindMount
	KindCopy
	KindVerificationMismatch
	KindTeardown
)

// Process exit statuses. Every stage failure kind has its own code.
const (
	ExitOK    = 0
	ExitUsage = 1
)

var (
	ErrWorkspace            = errors.New("workspace error")
	ErrStaging              = errors.New("staging error")
	ErrChecksum             = errors.New("checksum error")
	ErrImageBuild           = errors.New("image build error")
	ErrUnsupportedMedia     = errors.New("unsupported media")
	ErrBurn                 = errors.New("burn error")
	ErrMount                = errors.New("mount error")
	ErrCopy                 = errors.New("copy error")
	ErrVerificationMismatch = errors.New("verification mismatch")
	ErrTeardown             = errors.New("teardown error")
)

var kindInfo = map[Kind]struct {
	name     string
	sentinel error
	exit     int
}{
	KindWorkspace:            {"WorkspaceError", ErrWorkspace, 10},
	KindStaging:              {"StagingError", ErrStaging, 11},
	KindChecksum:             {"ChecksumError", ErrChecksum, 12},
	KindImageBuild:           {"ImageBuildError", ErrImageBuild, 13},
	KindUnsupportedMedia:     {"UnsupportedMediaError", ErrUnsupportedMedia, 14},
	KindBurn:                 {"BurnError", ErrBurn, 15},
	KindMount:                {"MountError", ErrMount, 16},
	KindCopy:                 {"CopyError", ErrCopy, 17},
	KindVerificationMismatch: {"VerificationMismatch", ErrVerificationMismatch, 18},
	KindTeardown:             {"TeardownError", ErrTeardown, 19},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	if info, ok := kindInfo[k]; ok {
		return info.exit
	}
	return ExitUsage
}

// StageError is the single error type produced by pipeline stages.
// ExitStatus and Output are copied from the failing external tool when
// there was one; ExitStatus is -1 otherwise.
type StageError struct {
	Kind       Kind
	Stage      State
	Op         string
	Message    string
	ExitStatus int
	Output     string
	Err        error
}

func newStageError(kind Kind, op, message string, err error) *StageError {
	return &StageError{
		Kind:       kind,
		Op:         op,
		Message:    message,
		ExitStatus: runner.ExitCode(err),
		Output:     runner.Output(err),
		Err:        err,
	}
}

func (e *StageError) Error() string {
	parts := make([]string, 0, 4)
	if e.Stage != StateInit {
		parts = append(parts, e.Stage.Label())
	}
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return e.Kind.String()
	}
	return strings.Join(parts, ": ")
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the per-kind sentinel, so errors.Is(err, ErrBurn) works
// without unpacking the StageError.
func (e *StageError) Is(target error) bool {
	info, ok := kindInfo[e.Kind]
	return ok && target == info.sentinel
}

// ExitCode maps err to a process exit status: 0 for nil, the kind's code for
// a *StageError, and the usage code for anything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind.ExitCode()
	}
	return ExitUsage
}

// KindOf returns the failure kind carried by err, or 0.
func KindOf(err error) Kind {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind
	}
	return 0
}
