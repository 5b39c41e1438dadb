package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"burncheck/internal/disc"
	"burncheck/internal/logging"
	"burncheck/internal/workspace"
)

// Preparer builds the workspace, stages data, and owns the manifest.
type Preparer interface {
	CreateWorkspace(path string) error
	StageSampleData(ctx context.Context, sourcePath, datasetName, destDir string) (string, error)
	ComputeManifest(ctx context.Context, datasetDir, manifestPath string) (workspace.Manifest, error)
	ManifestVerifier
}

// ImageBuilder authors the ISO image.
type ImageBuilder interface {
	BuildImage(ctx context.Context, datasetDir, imagePath string) error
}

// Burner writes the image to the drive.
type Burner interface {
	Burn(ctx context.Context, device, imagePath, media string) error
}

// RemountWaiter blocks until the burned disc is mounted or a ceiling passes.
type RemountWaiter interface {
	WaitForRemount(device string) disc.RemountResult
}

// Mounter provides the fallback mount and the matching unmount.
type Mounter interface {
	EnsureMounted(ctx context.Context, device, workDir string) (disc.MountPoint, error)
	Unmount(ctx context.Context, mountPoint string) error
}

// Ejector opens the drive tray.
type Ejector interface {
	Eject(ctx context.Context, device string) error
}

// MediaWatcher observes media-change events during the remount wait.
type MediaWatcher interface {
	Watch(ctx context.Context, device string) (*disc.MediaWatch, error)
}

// DriveProbe reports the tray state before burning.
type DriveProbe func(device string) (disc.DriveStatus, error)

// Dependencies wires the pipeline to its effects. Watcher and Probe are
// optional; Clock and Chdir default to time.Now and os.Chdir.
type Dependencies struct {
	Preparer Preparer
	Images   ImageBuilder
	Burner   Burner
	Remount  RemountWaiter
	Mounter  Mounter
	Ejector  Ejector
	Watcher  MediaWatcher
	Probe    DriveProbe
	Clock    func() time.Time
	Chdir    func(string) error
}

// Pipeline runs one Job.
type Pipeline struct {
	job    Job
	deps   Dependencies
	logger *slog.Logger
}

// New validates deps and returns a Pipeline for job.
func New(job Job, deps Dependencies, logger *slog.Logger) (*Pipeline, error) {
	var missing []string
	if deps.Preparer == nil {
		missing = append(missing, "preparer")
	}
	if deps.Images == nil {
		missing = append(missing, "image builder")
	}
	if deps.Burner == nil {
		missing = append(missing, "burner")
	}
	if deps.Remount == nil {
		missing = append(missing, "remount waiter")
	}
	if deps.Mounter == nil {
		missing = append(missing, "mounter")
	}
	if deps.Ejector == nil {
		missing = append(missing, "ejector")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("pipeline dependencies missing: %v", missing)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Chdir == nil {
		deps.Chdir = os.Chdir
	}
	return &Pipeline{
		job:    job,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Job returns the job this pipeline runs.
func (p *Pipeline) Job() Job { return p.job }

type transition struct {
	to  State
	run func(context.Context, *RunState) error
}

// Run executes the state machine. The returned RunState is always non-nil.
// On failure the error is a *StageError and teardown has already run.
func (p *Pipeline) Run(ctx context.Context) (*RunState, error) {
	state := newRunState(p.job, p.deps.Clock())
	ctx = logging.WithRunID(ctx, state.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Device(p.job.Device),
		logging.String("media", p.job.Media),
		logging.String("work_dir", p.job.WorkDir),
	)

	steps := []transition{
		{StateStaged, p.stage},
		{StateManifested, p.manifest},
		{StateImageBuilt, p.buildImage},
		{StateBurned, p.burn},
		{StateMountWait, p.waitForMount},
		{StateVerified, p.verify},
		{StateCleaned, p.cleanup},
	}
	for _, step := range steps {
		stageCtx := logging.WithStage(ctx, step.to.Label())
		if err := ctx.Err(); err != nil {
			return state, p.failed(stageCtx, state, step.to, newStageError(stageKind(step.to), "interrupted", "run cancelled", err))
		}
		started := p.deps.Clock()
		logging.WithContext(stageCtx, p.logger).Debug("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.String("from", state.State.String()),
		)
		if err := step.run(stageCtx, state); err != nil {
			return state, p.failed(stageCtx, state, step.to, err)
		}
		state.advance(step.to, started, p.deps.Clock())
		logging.WithContext(stageCtx, p.logger).Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String("state", step.to.String()),
			logging.Duration("duration", state.Timings[len(state.Timings)-1].Duration),
		)
	}

	state.FinishedAt = p.deps.Clock()
	logger.Info("run succeeded",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("outcome", state.Outcome.String()),
		logging.Int("files", state.ManifestFiles),
		logging.Duration("duration", state.Duration()),
	)
	return state, nil
}

// failed is the single routing point for stage errors. It records the
// failure, runs teardown once, and marks the run FAILED.
func (p *Pipeline) failed(ctx context.Context, state *RunState, stage State, err error) error {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		stageErr = newStageError(stageKind(stage), "", "", err)
	}
	stageErr.Stage = stage
	state.FailedStage = stage
	state.Err = stageErr

	logger := logging.WithContext(ctx, p.logger)
	logging.ErrorWithContext(logger, "stage failed", "stage_failure",
		logging.String("kind", stageErr.Kind.String()),
		logging.String("from", state.State.String()),
		logging.Int("exit_code", stageErr.Kind.ExitCode()),
		logging.String("tool_output", stageErr.Output),
		logging.Error(stageErr),
	)

	p.teardown(ctx, state)
	state.State = StateFailed
	state.FinishedAt = p.deps.Clock()
	return stageErr
}

// teardown runs cleanup at most once per run and returns its joined error.
func (p *Pipeline) teardown(ctx context.Context, state *RunState) error {
	if state.tornDown {
		return state.Teardown.Err()
	}
	state.tornDown = true
	state.Teardown = Teardown(ctx, TeardownDeps{
		Mounter: p.deps.Mounter,
		Ejector: p.deps.Ejector,
		Chdir:   p.deps.Chdir,
		Logger:  logging.WithContext(ctx, p.logger),
	}, p.job.WorkDir, state.MountPoint, p.job.Device, p.job.OriginalDir)
	return state.Teardown.Err()
}

func (p *Pipeline) stage(ctx context.Context, _ *RunState) error {
	if err := p.deps.Preparer.CreateWorkspace(p.job.WorkDir); err != nil {
		return newStageError(KindWorkspace, "create workspace", p.job.WorkDir, err)
	}
	if err := p.deps.Chdir(p.job.WorkDir); err != nil {
		return newStageError(KindWorkspace, "enter workspace", p.job.WorkDir, err)
	}
	if _, err := p.deps.Preparer.StageSampleData(ctx, p.job.SampleSource, p.job.Dataset, p.job.WorkDir); err != nil {
		return newStageError(KindStaging, "copy sample data", "", err)
	}
	return nil
}

func (p *Pipeline) manifest(ctx context.Context, state *RunState) error {
	manifest, err := p.deps.Preparer.ComputeManifest(ctx, p.job.DatasetDir(), p.job.ManifestPath())
	if err != nil {
		return newStageError(KindChecksum, "compute manifest", "", err)
	}
	state.ManifestFiles = manifest.Len()
	return nil
}

func (p *Pipeline) buildImage(ctx context.Context, _ *RunState) error {
	if err := p.deps.Images.BuildImage(ctx, p.job.DatasetDir(), p.job.ImagePath()); err != nil {
		return newStageError(KindImageBuild, "build image", "", err)
	}
	return nil
}

func (p *Pipeline) burn(ctx context.Context, state *RunState) error {
	logger := logging.WithContext(ctx, p.logger)
	if p.deps.Probe != nil {
		status, err := p.deps.Probe(p.job.Device)
		switch {
		case err != nil:
			logger.Debug("drive status probe failed", logging.Error(err))
		case !status.Writable():
			logging.WarnWithContext(logger, "drive not ready before burn", "drive_not_ready",
				logging.String("drive_status", status.String()),
				logging.String(logging.FieldErrorHint, status.Hint()),
				logging.String(logging.FieldImpact, "the writer will likely fail"),
			)
		}
		if err == nil {
			state.DriveStatus = status.String()
		}
	}

	if err := p.deps.Burner.Burn(ctx, p.job.Device, p.job.ImagePath(), p.job.Media); err != nil {
		if errors.Is(err, disc.ErrUnsupportedMedia) {
			return newStageError(KindUnsupportedMedia, "select writer", "", err)
		}
		return newStageError(KindBurn, "write disc", "", err)
	}
	return nil
}

// waitForMount polls for the automounter, then falls back to an explicit
// mount when the wait did not see the disc.
func (p *Pipeline) waitForMount(ctx context.Context, state *RunState) error {
	logger := logging.WithContext(ctx, p.logger)

	var watch *disc.MediaWatch
	if p.deps.Watcher != nil {
		w, err := p.deps.Watcher.Watch(ctx, p.job.Device)
		if err != nil {
			logger.Debug("udev watch unavailable", logging.Error(err))
		}
		watch = w
	}
	result := p.deps.Remount.WaitForRemount(p.job.Device)
	state.MediaEvents = watch.Stop()
	state.Remount = result

	if result.Outcome == disc.RemountMounted {
		state.MountPoint = disc.MountPoint{Path: result.MountPoint}
		return nil
	}

	logger.Info("remount not confirmed", logging.Decision("mount_fallback", "explicit_mount", result.Outcome.String(),
		logging.Int("media_events", state.MediaEvents),
	)...)
	mountPoint, err := p.deps.Mounter.EnsureMounted(ctx, p.job.Device, p.job.WorkDir)
	if err != nil {
		return newStageError(KindMount, "mount disc", "", err)
	}
	state.MountPoint = mountPoint
	return nil
}

func (p *Pipeline) verify(ctx context.Context, state *RunState) error {
	result, err := Verify(ctx, p.deps.Preparer, state.MountPoint.Path, p.job.WorkDir, p.job.ManifestPath())
	if err != nil {
		return err
	}
	state.Outcome = result.Outcome
	state.Mismatches = result.Mismatches
	if result.Outcome == OutcomeMismatch {
		return newStageError(KindVerificationMismatch, "compare checksums",
			fmt.Sprintf("%d of %d files differ (first: %s)", len(result.Mismatches), state.ManifestFiles, result.Mismatches[0]), nil)
	}
	return nil
}

func (p *Pipeline) cleanup(ctx context.Context, state *RunState) error {
	if err := p.teardown(ctx, state); err != nil {
		return newStageError(KindTeardown, "clean up", "", err)
	}
	return nil
}

// stageKind is the default failure kind for the transition to s, used when
// the run is cancelled or a stage returns an unclassified error.
func stageKind(s State) Kind {
	switch s {
	case StateStaged:
		return KindStaging
	case StateManifested:
		return KindChecksum
	case StateImageBuilt:
		return KindImageBuild
	case StateBurned:
		return KindBurn
	case StateMountWait:
		return KindMount
	case StateVerified:
		return KindCopy
	case StateCleaned:
		return KindTeardown
	default:
		return KindWorkspace
	}
}
