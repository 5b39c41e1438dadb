package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"burncheck/internal/logging"
	"burncheck/internal/pipeline"
)

type soakOptions struct {
	schedule  string
	maxRuns   int
	immediate bool
	run       runOptions
}

func newSoakCommand(ctx *commandContext) *cobra.Command {
	var opts soakOptions
	cmd := &cobra.Command{
		Use:   "soak <device> <media-kind>",
		Short: "Repeat burn-and-verify runs on a cron schedule",
		Long: "Repeat burn-and-verify runs on a cron schedule (soak.schedule, e.g. \"@every 6h\").\n" +
			"A run that is still going when the next slot fires is skipped, not queued.\n" +
			"Insert fresh blank media between runs.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			schedule := strings.TrimSpace(opts.schedule)
			if schedule == "" {
				schedule = cfg.Soak.Schedule
			}
			device, media := args[0], args[1]
			runFn := func(runCtx context.Context) (*pipeline.RunState, error) {
				return runOnce(runCtx, ctx, device, media, opts.run)
			}
			return soak(cmd.Context(), schedule, opts, runFn, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "Cron expression overriding soak.schedule")
	cmd.Flags().IntVar(&opts.maxRuns, "max-runs", 0, "Stop after this many runs (0 runs until interrupted)")
	cmd.Flags().BoolVar(&opts.immediate, "now", false, "Start the first run immediately")
	bindRunFlags(cmd, &opts.run)
	return cmd
}

type soakTally struct {
	mu      sync.Mutex
	runs    int
	passed  int
	lastErr error
}

func (t *soakTally) add(err error) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	if err == nil {
		t.passed++
	} else {
		t.lastErr = err
	}
	return t.runs
}

// soak schedules runFn with cron until ctx ends or maxRuns runs finish. It
// returns the last run failure so the exit status reflects it.
func soak(ctx context.Context, schedule string, opts soakOptions, runFn func(context.Context) (*pipeline.RunState, error), out io.Writer, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "soak")
	cronLog := cronLogger{logger: logger}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tally := &soakTally{}
	job := func() {
		if ctx.Err() != nil {
			return
		}
		state, err := runFn(ctx)
		n := tally.add(err)
		fmt.Fprintln(out, soakRunLine(n, state, err))
		if opts.maxRuns > 0 && n >= opts.maxRuns {
			cancel()
		}
	}

	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("invalid soak schedule %q: %w", schedule, err)
	}
	logger.Info("soak started",
		logging.String("schedule", schedule),
		logging.Int("max_runs", opts.maxRuns),
	)
	c.Start()
	if opts.immediate {
		// Routed through the chain so it never overlaps a scheduled run.
		for _, entry := range c.Entries() {
			go entry.WrappedJob.Run()
		}
	}

	<-ctx.Done()
	<-c.Stop().Done()

	tally.mu.Lock()
	defer tally.mu.Unlock()
	fmt.Fprintf(out, "Soak finished: %d of %d runs passed\n", tally.passed, tally.runs)
	return tally.lastErr
}

func soakRunLine(n int, state *pipeline.RunState, err error) string {
	stamp := time.Now().Format("2006-01-02 15:04:05")
	if err == nil {
		return fmt.Sprintf("%s run %d: PASS (%s)", stamp, n, state.Duration().Round(time.Second))
	}
	return fmt.Sprintf("%s run %d: FAIL exit %d: %v", stamp, n, pipeline.ExitCode(err), err)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, logging.Error(err))...)
}
