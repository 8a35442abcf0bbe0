// Package pidfile implements the single-decimal-line PID file with an
// advisory flock that every teacher daemon locks out a second running
// copy with.
package pidfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is an open, locked PID file. Close releases the lock and
// removes the file.
type File struct {
	f *os.File
}

// Open creates or opens path, takes an exclusive advisory lock on it,
// and reports the PID already holding the lock (if any) via err
// wrapping the current holder so the caller can log "already running
// with PID %d" the way flycatcher's fc_pidfile_open does.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open pidfile %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		var buf [32]byte
		n, _ := f.ReadAt(buf[:], 0)
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("already running with PID %s", string(buf[:n]))
		}
		return nil, fmt.Errorf("lock pidfile %s: %w", path, err)
	}

	return &File{f: f}, nil
}

// Write truncates the file and records the current process's PID,
// matching fc_pidfile_write's single-line "%d\n" format.
func (p *File) Write() error {
	if err := p.f.Truncate(0); err != nil {
		return err
	}
	if _, err := p.f.WriteAt([]byte(fmt.Sprintf("%d\n", os.Getpid())), 0); err != nil {
		return err
	}
	return nil
}

// Close releases the lock, closes, and removes the pid file.
func (p *File) Close() error {
	path := p.f.Name()
	unix.Flock(int(p.f.Fd()), unix.LOCK_UN)
	p.f.Close()
	return os.Remove(path)
}
