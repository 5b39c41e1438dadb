package disc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"burncheck/internal/logging"
	"burncheck/internal/runner"
)

// ScratchMountDir is the workspace subdirectory used for fallback mounts.
const ScratchMountDir = "mnt"

// MountPoint is where the burned disc is readable. Created reports whether
// this run mounted it and therefore owns the unmount.
type MountPoint struct {
	Path    string
	Created bool
}

// Mounter mounts and unmounts optical media.
type Mounter struct {
	runner runner.Runner
	table  MountTable
	logger *slog.Logger
}

// NewMounter builds a Mounter. A nil table falls back to /proc/self/mounts.
func NewMounter(r runner.Runner, table MountTable, logger *slog.Logger) *Mounter {
	if r == nil {
		r = runner.New()
	}
	if table == nil {
		table = NewProcMounts()
	}
	return &Mounter{runner: r, table: table, logger: logging.NewComponentLogger(logger, "mount")}
}

// EnsureMounted returns the existing mount point for device, or mounts it
// read-only at workDir/mnt when the mount table has no entry.
func (m *Mounter) EnsureMounted(ctx context.Context, device, workDir string) (MountPoint, error) {
	mountPoint, mounted, err := m.table.Lookup(device)
	if err != nil {
		return MountPoint{}, fmt.Errorf("query mount table: %w", err)
	}
	if mounted {
		m.logger.Info("disc already mounted", logging.Decision("mount", "already_mounted", "found in mount table",
			logging.String("mount_point", mountPoint),
		)...)
		return MountPoint{Path: mountPoint}, nil
	}

	target := filepath.Join(workDir, ScratchMountDir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return MountPoint{}, fmt.Errorf("create mount point %s: %w", target, err)
	}

	m.logger.Info("mounting disc", logging.Decision("mount", "manual_mount", "disc not in mount table",
		logging.Device(device),
		logging.String("mount_point", target),
	)...)
	if _, err := m.runner.Run(ctx, "mount", "-o", "ro", device, target); err != nil {
		_ = os.Remove(target)
		return MountPoint{}, fmt.Errorf("mount %s at %s: %w", device, target, err)
	}
	return MountPoint{Path: target, Created: true}, nil
}

// Unmount releases a mount point.
func (m *Mounter) Unmount(ctx context.Context, mountPoint string) error {
	m.logger.Info("unmounting disc", logging.String("mount_point", mountPoint))
	if _, err := m.runner.Run(ctx, "umount", mountPoint); err != nil {
		return fmt.Errorf("umount %s: %w", mountPoint, err)
	}
	return nil
}
