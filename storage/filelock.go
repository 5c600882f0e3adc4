package storage

import (
	"os"
	"syscall"
	"time"
)

// How often Lock retries while another process holds the lock.
const lockPollInterval = 10 * time.Millisecond

// FileLock guards the history file against concurrent processes using an
// flock(2) advisory lock on a sidecar ".lock" file.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock prepares a lock for the file at path. Nothing is acquired
// until Lock is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock polls for an exclusive lock, trying at least once, and gives up with
// ErrLockTimeout once the timeout passes.
func (l *FileLock) Lock(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", ID: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
			l.file = f
			return nil
		}
		if time.Now().After(deadline) {
			f.Close()
			return ErrLockTimeout
		}
		time.Sleep(lockPollInterval)
	}
}

// Unlock releases the lock and removes the sidecar file. Unlocking an
// unheld lock is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
