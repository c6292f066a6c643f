package docindex

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "github.com/stratec/assetsearch/internal/errors"
)

// lockFileName is the exclusive-writer marker inside the index directory.
const lockFileName = "write.lock"

// writeLock guards the on-disk index against concurrent writer processes.
// In-process writers are already serialized by the store mutex; the file
// lock exists to fence off other processes and to detect markers left
// behind by a writer that did not shut down cleanly.
type writeLock struct {
	path string
	fl   *flock.Flock
}

func newWriteLock(dir string) *writeLock {
	path := filepath.Join(dir, lockFileName)
	return &writeLock{
		path: path,
		fl:   flock.New(path),
	}
}

// Acquire takes the exclusive write lock, making exactly one recovery
// attempt when the lock is already held: it forcibly acquires and releases
// the stale lock, deletes the lock file, and retries once. If recovery or
// the retry fails, the original contention escalates to the caller.
// It reports whether the lock was obtained via recovery.
func (l *writeLock) Acquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeIndexOpen, err)
	}

	acquired, err := l.fl.TryLock()
	if err == nil && acquired {
		return false, nil
	}

	slog.Warn("index_write_lock_held",
		slog.String("path", l.path),
		slog.String("action", "attempting orphaned lock recovery"))

	if recErr := l.recover(); recErr != nil {
		return false, apperrors.IndexLockError("write lock held and recovery failed", recErr)
	}

	acquired, retryErr := l.fl.TryLock()
	if retryErr != nil || !acquired {
		if retryErr == nil {
			retryErr = err
		}
		return false, apperrors.IndexLockError("write lock still held after recovery", retryErr)
	}

	slog.Info("index_write_lock_recovered", slog.String("path", l.path))
	return true, nil
}

// recover forcibly cycles the stale lock and removes the lock file. The
// subsequent retry operates on a fresh file, so a crashed previous writer
// no longer blocks this process.
func (l *writeLock) recover() error {
	stale := flock.New(l.path)
	if ok, err := stale.TryLock(); err == nil && ok {
		_ = stale.Unlock()
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	l.fl = flock.New(l.path)
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *writeLock) Release() {
	_ = l.fl.Unlock()
}
