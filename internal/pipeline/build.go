package pipeline

import (
	"log/slog"
	"time"

	"burncheck/internal/config"
	"burncheck/internal/disc"
	"burncheck/internal/runner"
	"burncheck/internal/workspace"
)

// DefaultDependencies wires the real workspace and disc components from cfg.
// Tools run through r; a nil r uses os/exec.
func DefaultDependencies(cfg *config.Config, r runner.Runner, logger *slog.Logger) Dependencies {
	if r == nil {
		r = runner.New()
	}
	table := disc.NewProcMounts()
	deps := Dependencies{
		Preparer: workspace.NewPreparer(cfg.Checksum.Algorithm, logger),
		Images:   disc.NewImageBuilder(r, cfg.ImageBinary(), cfg.Image.VolumeLabel, logger),
		Burner: disc.NewBurner(r, disc.BurnerConfig{
			CDWriter:  cfg.Burn.CDWriter,
			DVDWriter: cfg.Burn.DVDWriter,
			Speed:     cfg.Burn.Speed,
			Grace:     time.Duration(cfg.Burn.GraceSeconds) * time.Second,
		}, logger),
		Remount: disc.NewRemountWaiter(table,
			time.Duration(cfg.Remount.TimeoutSeconds)*time.Second,
			time.Duration(cfg.Remount.PollIntervalSeconds)*time.Second,
			logger),
		Mounter: disc.NewMounter(r, table, logger),
		Ejector: disc.NewEjector(r),
		Probe:   disc.CheckDriveStatus,
	}
	if cfg.Remount.WatchUdev {
		deps.Watcher = disc.NewMediaWatcher(logger)
	}
	return deps
}
