package disc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"burncheck/internal/logging"
	"burncheck/internal/runner"
)

// DefaultBurnGrace is the pause before writing that lets slow drives spin up.
const DefaultBurnGrace = 10 * time.Second

// BurnerConfig selects writer binaries and timing.
type BurnerConfig struct {
	CDWriter  string
	DVDWriter string
	Speed     int
	Grace     time.Duration
}

// Burner writes ISO images to optical media.
type Burner struct {
	runner runner.Runner
	cfg    BurnerConfig
	sleep  func(context.Context, time.Duration) error
	logger *slog.Logger
}

// BurnerOption configures a Burner.
type BurnerOption func(*Burner)

// WithGraceSleeper replaces the grace-period sleep (primarily for tests).
func WithGraceSleeper(sleep func(context.Context, time.Duration) error) BurnerOption {
	return func(b *Burner) {
		if sleep != nil {
			b.sleep = sleep
		}
	}
}

// NewBurner constructs a Burner.
func NewBurner(r runner.Runner, cfg BurnerConfig, logger *slog.Logger, opts ...BurnerOption) *Burner {
	if r == nil {
		r = runner.New()
	}
	if cfg.CDWriter == "" {
		cfg.CDWriter = "wodim"
	}
	if cfg.DVDWriter == "" {
		cfg.DVDWriter = "growisofs"
	}
	b := &Burner{
		runner: r,
		cfg:    cfg,
		sleep:  sleepContext,
		logger: logging.NewComponentLogger(logger, "burn"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Burn writes imagePath to device. Unsupported media are rejected before the
// grace period and before any writer runs.
func (b *Burner) Burn(ctx context.Context, device, imagePath, media string) error {
	kind, err := ParseMediaKind(media)
	if err != nil {
		return err
	}
	name, args := b.writerCommand(kind, device, imagePath)

	if b.cfg.Grace > 0 {
		b.logger.Info("waiting for drive spin-up",
			logging.Duration("grace", b.cfg.Grace),
			logging.Device(device),
		)
		if err := b.sleep(ctx, b.cfg.Grace); err != nil {
			return err
		}
	}

	b.logger.Info("burning image",
		logging.String("writer", name),
		logging.String("media", kind.Label()),
		logging.Device(device),
		logging.String("image", imagePath),
	)
	if _, err := b.runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// writerCommand picks wodim for CD media and growisofs for DVD/BD media.
func (b *Burner) writerCommand(kind MediaKind, device, imagePath string) (string, []string) {
	if kind == MediaCD {
		args := []string{"-v", "-dao", "dev=" + device}
		if b.cfg.Speed > 0 {
			args = append(args, "speed="+strconv.Itoa(b.cfg.Speed))
		}
		return b.cfg.CDWriter, append(args, imagePath)
	}

	args := []string{"-dvd-compat"}
	if b.cfg.Speed > 0 {
		args = append(args, "-speed="+strconv.Itoa(b.cfg.Speed))
	}
	return b.cfg.DVDWriter, append(args, "-Z", device+"="+imagePath)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
