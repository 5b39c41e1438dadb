// Package drivelock serializes harness runs per optical drive with an
// advisory file lock, so two runs never burn to the same device at once.
package drivelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrBusy reports that another process holds the drive lock.
var ErrBusy = errors.New("drive is in use by another burncheck run")

// Lock is a held drive lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for device under lockDir.
// /dev/sr0 maps to lockDir/sr0.lock.
func PathFor(lockDir, device string) string {
	name := strings.Trim(strings.ReplaceAll(filepath.Clean(device), string(filepath.Separator), "_"), "_")
	name = strings.TrimPrefix(name, "dev_")
	if name == "" || name == "." {
		name = "device"
	}
	return filepath.Join(lockDir, name+".lock")
}

// Acquire takes the lock for device without blocking. It returns ErrBusy
// when another holder exists.
func Acquire(lockDir, device string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := PathFor(lockDir, device)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrBusy, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. Calling it on a nil Lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
