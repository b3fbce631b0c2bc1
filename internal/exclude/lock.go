package exclude

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

// LockName is the lock file created next to the exclude file. It is not
// "exclude.lock", which git itself uses while rewriting the file.
const LockName = "layer.lock"

const lockRetry = 50 * time.Millisecond

// FileLock serialises layer processes that rewrite the same exclude file.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for files in dir. The lock file is <dir>/layer.lock.
func NewFileLock(dir string) *FileLock {
	lockPath := filepath.Join(dir, LockName)
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires the lock, waiting until ctx is done.
func (l *FileLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return lerrors.New(lerrors.ErrCodeLockFailed, "failed to create lock directory", err)
	}

	acquired, err := l.flock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return lerrors.New(lerrors.ErrCodeLockFailed,
			fmt.Sprintf("exclude file is locked by another layer process (%s)", l.path), err).
			WithSuggestion("Wait for the other command to finish, or remove the stale lock file")
	}
	l.locked = acquired
	return nil
}

// TryLock attempts to acquire the lock without blocking.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, lerrors.New(lerrors.ErrCodeLockFailed, "failed to create lock directory", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, lerrors.New(lerrors.ErrCodeLockFailed, "failed to acquire lock", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call when not locked.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held.
func (l *FileLock) IsLocked() bool {
	return l.locked
}
