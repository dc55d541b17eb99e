// Package pidpath manages PID files that mark a file as being rewritten by a
// running process, so two runs never update the same catalog at once.
package pidpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PidPath is the type for managing a PID file.
type PidPath struct {
	pidpath string
	perm    fs.FileMode
	pid     *int
}

// LockedError is returned when another live process holds the PID file.
type LockedError struct {
	Path string
	PID  int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("another process is already running: %d (%s)", e.PID, e.Path)
}

// UnknownPID indicates the PID read from the file wasn't located as a running
// process.
const UnknownPID = -1

// NewPidPath manages a process ID file to coordinate whether a process is
// already running.
func NewPidPath(pathname string, perm fs.FileMode) *PidPath {
	return &PidPath{pidpath: pathname, perm: perm}
}

// For returns the PID file guarding target.
func For(target string, perm fs.FileMode) *PidPath {
	return NewPidPath(target+".pid", perm)
}

// Path is the location of the PID file.
func (pp *PidPath) Path() string {
	return pp.pidpath
}

// String provides the path and other PID info.
func (pp *PidPath) String() string {
	var key string
	if pp.IsOurs() {
		key = "ours"
	} else {
		key = "other"
	}

	return fmt.Sprintf("%s %s=%v", pp.pidpath, key, pp.Getpid())
}

// CheckAndSet evaluates if another process currently holds the file and, if
// not, claims it with the current process ID. A *LockedError is returned when
// the file is held.
func (pp *PidPath) CheckAndSet() error {
	err := pp.check()
	if err != nil {
		return err
	}

	if pp.pid != nil && *pp.pid == os.Getpid() {
		return nil
	}

	// a stale file from a process that has gone away
	if err = os.Remove(pp.pidpath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to remove stale %s: %w", pp.pidpath, err)
	}

	pid := os.Getpid()

	f, err := os.OpenFile(pp.pidpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, pp.perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// lost a race with another process claiming it
			return pp.check()
		}
		return fmt.Errorf("unable to create %s: %w", pp.pidpath, err)
	}

	_, err = f.WriteString(strconv.Itoa(pid))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(pp.pidpath)
		return fmt.Errorf("unable to write to %s: %w", pp.pidpath, err)
	}

	// wait until _after_ the write succeeds before we declare it "ours"
	pp.pid = &pid
	return nil
}

// IsRunning determines if the pidpath indicates that its process is in the
// process listing.
func (pp *PidPath) IsRunning() bool {
	return pp.Getpid() != UnknownPID
}

// IsOurs determines if the pidpath is held by the calling process.
func (pp *PidPath) IsOurs() bool {
	return pp.Getpid() == os.Getpid()
}

// Getpid retrieves the process ID of the live holder of the file.
func (pp *PidPath) Getpid() int {
	pp.check()

	if pp.pid == nil {
		return UnknownPID
	}

	return *pp.pid
}

// Release will remove the pidpath if it's owned by the current process (i.e.
// this is safe to call if the pidpath is being managed by another process--the
// file will NOT be removed).
func (pp *PidPath) Release() error {
	if pp.IsOurs() {
		pp.pid = nil
		return os.Remove(pp.pidpath)
	}

	return nil
}

//--------------------------------------------------------------------------------
// private

func (pp *PidPath) check() error {
	pp.pid = nil

	pidContent, err := os.ReadFile(pp.pidpath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("unable to read %s: %w", pp.pidpath, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidContent)))
	if err != nil {
		return fmt.Errorf("unable to parse contents of %s: %w", pp.pidpath, err)
	}

	if pid == os.Getpid() {
		pp.pid = &pid
		return nil
	}

	err = syscall.Kill(pid, 0)
	if err == nil || errors.Is(err, syscall.EPERM) {
		// if EPERM, process is owned by another user, probably root
		pp.pid = &pid
		return &LockedError{Path: pp.pidpath, PID: pid}
	}

	// ESRCH: no such process
	if !errors.Is(err, syscall.ESRCH) {
		// can't determine, so assume it is still running
		pp.pid = &pid
		return fmt.Errorf("unable to check if process %d is still running: %w", pid, err)
	}

	return nil
}
