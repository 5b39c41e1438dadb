package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"burncheck/internal/config"
	"burncheck/internal/deps"
	"burncheck/internal/drivelock"
	"burncheck/internal/history"
	"burncheck/internal/logging"
	"burncheck/internal/pipeline"
	"burncheck/internal/preflight"
)

var errNotReady = errors.New("preflight failed")

type runOptions struct {
	skipPreflight bool
	noHistory     bool
}

func bindRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Skip path, drive, and tool checks before burning")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the run in the history database")
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <device> <media-kind>",
		Short: "Burn, read back, and verify one disc",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, ctx, args[0], args[1], opts)
		},
	}
	bindRunFlags(cmd, &opts)
	return cmd
}

func runCommand(cmd *cobra.Command, ctx *commandContext, device, media string, opts runOptions) error {
	state, err := runOnce(cmd.Context(), ctx, device, media, opts)
	if state != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(state))
	}
	return err
}

// runOnce performs a single guarded pipeline run: preflight, drive lock,
// pipeline, history. Errors before the pipeline starts are usage errors;
// pipeline failures come back as *pipeline.StageError with the state.
func runOnce(ctx context.Context, cc *commandContext, device, media string, opts runOptions) (*pipeline.RunState, error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return nil, err
	}

	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	job, err := pipeline.NewJob(cfg, device, media, originalDir)
	if err != nil {
		return nil, err
	}

	if !opts.skipPreflight {
		if err := checkReadiness(cfg, job.Device); err != nil {
			return nil, err
		}
	}

	lock, err := drivelock.Acquire(cfg.Paths.LockDir, job.Device)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release drive lock", logging.Error(err))
		}
	}()

	p, err := pipeline.New(job, pipeline.DefaultDependencies(cfg, nil, logger), logger)
	if err != nil {
		return nil, err
	}
	state, runErr := p.Run(ctx)

	if !opts.noHistory {
		recordHistory(ctx, cfg.Paths.HistoryDB, state, logger)
	}
	return state, runErr
}

// checkReadiness runs path, drive, and tool checks and reports every
// failure at once.
func checkReadiness(cfg *config.Config, device string) error {
	var problems []string
	for _, r := range preflight.Failed(preflight.RunAll(cfg, device)) {
		problems = append(problems, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	for _, s := range deps.MissingRequired(preflight.CheckSystemDeps(cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", s.Name, s.Detail))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w (use --skip-preflight to override):\n  %s", errNotReady, strings.Join(problems, "\n  "))
	}
	return nil
}

func recordHistory(ctx context.Context, path string, state *pipeline.RunState, logger *slog.Logger) {
	store, err := history.Open(path)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in `burncheck history`"),
		)
		return
	}
	defer store.Close()
	if _, err := store.Add(context.WithoutCancel(ctx), history.FromRunState(state)); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in `burncheck history`"),
		)
	}
}

func renderRunSummary(state *pipeline.RunState) string {
	result := "PASS"
	if !state.Succeeded() {
		result = fmt.Sprintf("FAIL (exit %d)", state.ExitCode())
	}
	rows := [][]string{
		{"Run", state.ID},
		{"Device", state.Job.Device},
		{"Media", state.Job.Media},
		{"Result", result},
	}
	if state.Err != nil {
		rows = append(rows,
			[]string{"Failed stage", state.FailedStage.String()},
			[]string{"Error", pipeline.KindOf(state.Err).String()},
		)
	}
	if state.ManifestFiles > 0 {
		rows = append(rows, []string{"Files", fmt.Sprintf("%d", state.ManifestFiles)})
	}
	if state.Remount.Outcome != 0 {
		rows = append(rows, []string{"Remount", fmt.Sprintf("%s after %s", state.Remount.Outcome, state.Remount.Waited)})
	}
	if state.MountPoint.Path != "" {
		rows = append(rows, []string{"Mount point", fmt.Sprintf("%s (created: %s)", state.MountPoint.Path, yesNo(state.MountPoint.Created))})
	}
	if state.Outcome != pipeline.OutcomeUnknown {
		rows = append(rows, []string{"Verification", state.Outcome.String()})
	}
	for i, m := range state.Mismatches {
		if i == 5 {
			rows = append(rows, []string{"", fmt.Sprintf("... %d more", len(state.Mismatches)-i)})
			break
		}
		rows = append(rows, []string{"Mismatch", m.String()})
	}
	if failed := state.Teardown.Failed(); len(failed) > 0 {
		rows = append(rows, []string{"Teardown", "failed: " + strings.Join(failed, ", ")})
	}
	rows = append(rows, []string{"Duration", state.Duration().Round(time.Millisecond).String()})
	return renderFieldTable(rows)
}
