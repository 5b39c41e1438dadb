package disc

import (
	"log/slog"
	"time"

	"burncheck/internal/logging"
)

const (
	// DefaultRemountTimeout caps the total time spent waiting for remount.
	DefaultRemountTimeout = 300 * time.Second
	// DefaultRemountInterval is the sleep between mount table checks.
	DefaultRemountInterval = 3 * time.Second
)

// RemountOutcome is the result of a remount wait.
type RemountOutcome int

const (
	RemountMounted RemountOutcome = iota + 1
	RemountTimedOut
)

func (o RemountOutcome) String() string {
	switch o {
	case RemountMounted:
		return "mounted"
	case RemountTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// RemountResult reports how a wait ended. Waited is the total time slept.
type RemountResult struct {
	Outcome    RemountOutcome
	MountPoint string
	Waited     time.Duration
	Polls      int
}

// RemountWaiter polls the mount table until a freshly burned disc shows up.
type RemountWaiter struct {
	table    MountTable
	timeout  time.Duration
	interval time.Duration
	sleep    func(time.Duration)
	logger   *slog.Logger
}

// RemountOption configures a RemountWaiter.
type RemountOption func(*RemountWaiter)

// WithSleeper replaces time.Sleep (primarily for tests).
func WithSleeper(sleep func(time.Duration)) RemountOption {
	return func(w *RemountWaiter) {
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// NewRemountWaiter builds a waiter. Non-positive timing falls back to the
// 300s/3s defaults.
func NewRemountWaiter(table MountTable, timeout, interval time.Duration, logger *slog.Logger, opts ...RemountOption) *RemountWaiter {
	if table == nil {
		table = NewProcMounts()
	}
	if timeout <= 0 {
		timeout = DefaultRemountTimeout
	}
	if interval <= 0 {
		interval = DefaultRemountInterval
	}
	w := &RemountWaiter{
		table:    table,
		timeout:  timeout,
		interval: interval,
		sleep:    time.Sleep,
		logger:   logging.NewComponentLogger(logger, "remount"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WaitForRemount checks the mount table, and while the device is absent,
// sleeps one interval and checks again. The elapsed counter grows by exactly
// the time slept on each iteration; the final sleep is shortened so the total
// never exceeds the timeout. TimedOut is a warning for the caller to recover
// from, not an error.
//
// There is no cancellation: the only early exit is the device appearing.
func (w *RemountWaiter) WaitForRemount(device string) RemountResult {
	var (
		elapsed time.Duration
		polls   int
	)
	for {
		polls++
		mountPoint, mounted, err := w.table.Lookup(device)
		if err != nil {
			w.logger.Debug("mount table lookup failed",
				logging.Device(device),
				logging.Error(err),
			)
		}
		if mounted {
			w.logger.Info("disc remounted",
				logging.Device(device),
				logging.String("mount_point", mountPoint),
				logging.Duration("waited", elapsed),
				logging.Int("polls", polls),
			)
			return RemountResult{Outcome: RemountMounted, MountPoint: mountPoint, Waited: elapsed, Polls: polls}
		}
		if elapsed >= w.timeout {
			logging.WarnWithContext(w.logger, "disc did not remount before timeout", "remount_timeout",
				logging.Device(device),
				logging.Duration("waited", elapsed),
				logging.Int("polls", polls),
				logging.String(logging.FieldErrorHint, "the desktop automounter may be disabled"),
				logging.String(logging.FieldImpact, "falling back to an explicit mount"),
			)
			return RemountResult{Outcome: RemountTimedOut, Waited: elapsed, Polls: polls}
		}

		step := min(w.interval, w.timeout-elapsed)
		w.sleep(step)
		elapsed += step
	}
}
