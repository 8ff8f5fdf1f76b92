package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ErrLockAcquireFailed is returned when a document lock cannot be acquired.
var ErrLockAcquireFailed = errors.New("failed to acquire document lock")

// ErrLockTimeout is returned when the lock cannot be acquired within the timeout.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// lockFile represents an advisory file lock guarding one persisted document.
// Two processes updating the same document serialize their whole-file
// read-modify-write cycles through it.
type lockFile struct {
	path string
	file *os.File
}

// LockOptions configures lock acquisition behavior.
type LockOptions struct {
	// Timeout is the maximum time to wait for the lock.
	// If zero, the lock attempt is non-blocking.
	Timeout time.Duration

	// RetryInterval is how often to retry acquiring the lock.
	// If zero, defaults to 50ms.
	RetryInterval time.Duration
}

// DefaultLockOptions returns sensible default options.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Timeout:       5 * time.Second,
		RetryInterval: 50 * time.Millisecond,
	}
}

// acquireLock attempts to acquire an exclusive advisory lock on path.
// The caller must call release when done.
func acquireLock(path string, opts LockOptions) (*lockFile, error) {
	if opts.RetryInterval == 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}

	deadline := time.Now().Add(opts.Timeout)

	for {
		lf, err := tryAcquireLock(path)
		if err == nil {
			return lf, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
		}

		if opts.Timeout == 0 {
			return nil, fmt.Errorf("%w: lock held by another process", ErrLockAcquireFailed)
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		time.Sleep(opts.RetryInterval)
	}
}

// tryAcquireLock makes a single non-blocking attempt to acquire the lock.
func tryAcquireLock(path string) (*lockFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, err
	}

	// Record our PID for debugging
	if err := file.Truncate(0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to seek lock file: %w", err)
	}
	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	return &lockFile{path: path, file: file}, nil
}

// release releases the lock. Safe to call multiple times.
func (lf *lockFile) release() error {
	if lf.file == nil {
		return nil
	}

	if err := unix.Flock(int(lf.file.Fd()), unix.LOCK_UN); err != nil {
		_ = lf.file.Close()
		lf.file = nil
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if err := lf.file.Close(); err != nil {
		lf.file = nil
		return fmt.Errorf("failed to close lock file: %w", err)
	}

	lf.file = nil
	return nil
}
