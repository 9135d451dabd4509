// Package filelock provides advisory flock(2) locks shared between planr
// processes.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock is a held lock on a file. A nil *Lock is valid and releases nothing.
type Lock struct {
	f *os.File
}

// Acquire blocks until it holds the lock on path, creating the file and its
// directory when missing. Exclusive locks exclude every other lock; shared
// locks exclude only exclusive ones. Each call opens its own descriptor, so
// two Acquire calls in one process contend like two processes do.
func Acquire(path string, exclusive bool) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	how := syscall.LOCK_SH
	if exclusive {
		how = syscall.LOCK_EX
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
