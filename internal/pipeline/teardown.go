package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"burncheck/internal/disc"
	"burncheck/internal/logging"
)

// Teardown step names, in execution order.
const (
	StepRestoreDir      = "restore_dir"
	StepUnmount         = "unmount"
	StepRemoveWorkspace = "remove_workspace"
	StepEject           = "eject"
)

// TeardownStep is the outcome of one cleanup action.
type TeardownStep struct {
	Name    string
	Skipped bool
	Err     error
}

// TeardownReport lists every attempted step.
type TeardownReport struct {
	Steps []TeardownStep
}

// Err joins the step failures, or returns nil when every step succeeded.
func (r TeardownReport) Err() error {
	var errs []error
	for _, step := range r.Steps {
		if step.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, step.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed lists the names of failed steps.
func (r TeardownReport) Failed() []string {
	var names []string
	for _, step := range r.Steps {
		if step.Err != nil {
			names = append(names, step.Name)
		}
	}
	return names
}

// TeardownDeps are the effects teardown needs. Chdir and RemoveAll default
// to the os package.
type TeardownDeps struct {
	Mounter   Mounter
	Ejector   Ejector
	Chdir     func(string) error
	RemoveAll func(string) error
	Logger    *slog.Logger
}

// Teardown restores originalDir, unmounts mountPoint when this run created
// it, removes workDir, and ejects device. Every step runs regardless of
// earlier failures; the report records each result. The context's
// cancellation is ignored so an interrupted run still cleans up.
func Teardown(ctx context.Context, deps TeardownDeps, workDir string, mountPoint disc.MountPoint, device, originalDir string) TeardownReport {
	ctx = context.WithoutCancel(ctx)
	logger := logging.NewComponentLogger(deps.Logger, "teardown")
	chdir := deps.Chdir
	if chdir == nil {
		chdir = os.Chdir
	}
	removeAll := deps.RemoveAll
	if removeAll == nil {
		removeAll = os.RemoveAll
	}

	var report TeardownReport
	record := func(name string, skipped bool, err error) {
		report.Steps = append(report.Steps, TeardownStep{Name: name, Skipped: skipped, Err: err})
		if err != nil {
			logging.WarnWithContext(logger, "teardown step failed", "teardown_step_failed",
				logging.String("step", name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the drive and working directory manually"),
				logging.String(logging.FieldImpact, "state may be left behind on this host"),
			)
		}
	}

	if strings.TrimSpace(originalDir) == "" {
		record(StepRestoreDir, true, nil)
	} else {
		record(StepRestoreDir, false, chdir(originalDir))
	}

	switch {
	case !mountPoint.Created || mountPoint.Path == "":
		record(StepUnmount, true, nil)
	case deps.Mounter == nil:
		record(StepUnmount, false, errors.New("no mounter configured"))
	default:
		record(StepUnmount, false, deps.Mounter.Unmount(ctx, mountPoint.Path))
	}

	if strings.TrimSpace(workDir) == "" {
		record(StepRemoveWorkspace, true, nil)
	} else {
		var err error
		if rmErr := removeAll(workDir); rmErr != nil {
			err = fmt.Errorf("remove %s: %w", workDir, rmErr)
		}
		record(StepRemoveWorkspace, false, err)
	}

	switch {
	case strings.TrimSpace(device) == "":
		record(StepEject, true, nil)
	case deps.Ejector == nil:
		record(StepEject, false, errors.New("no ejector configured"))
	default:
		record(StepEject, false, deps.Ejector.Eject(ctx, device))
	}

	logger.Info("teardown finished",
		logging.Int("steps", len(report.Steps)),
		logging.String("failed_steps", strings.Join(report.Failed(), ",")),
	)
	return report
}
