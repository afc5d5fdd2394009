package sqlite

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrLockHeld is returned by AcquireLock when another process already
// holds the exclusive advisory lock on the PID file.
var ErrLockHeld = errors.New("daemon already running")

// Lock is the daemon's single-instance guarantee: an exclusive advisory
// flock on a PID file under the state directory. The OS releases the
// lock when the process exits, by design — Release is provided for
// orderly shutdown but is not required for correctness.
type Lock struct {
	file *os.File
}

// AcquireLock opens (creating if absent) the PID file at path and takes a
// non-blocking exclusive flock on it. On success it writes the current
// PID into the file. If the lock is already held, it returns ErrLockHeld.
func AcquireLock(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pid file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("flock pid file: %w", err)
	}

	if err := file.Truncate(0); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("truncate pid file: %w", err)
	}
	if _, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	return &Lock{file: file}, nil
}

// Release closes the underlying file handle, dropping the flock.
func (l *Lock) Release() error {
	return l.file.Close()
}
