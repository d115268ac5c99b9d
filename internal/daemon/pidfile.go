package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// SingleInstanceError reports another daemon already holding the PID file.
type SingleInstanceError struct {
	PID int
}

func (e *SingleInstanceError) Error() string {
	return fmt.Sprintf("daemon already running with PID %d", e.PID)
}

// checkPIDFile enforces single-instance startup. A PID file naming a live
// process fails with SingleInstanceError; a stale file is ignored and later
// overwritten; a file that does not parse as a PID is a hard failure rather
// than being silently clobbered.
func checkPIDFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read pid file %s: %w", path, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("pid file %s is corrupted: %w", path, err)
	}
	if processAlive(pid) {
		return &SingleInstanceError{PID: pid}
	}
	return nil
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create pid file directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pid file %s: %w", path, err)
	}
	return nil
}

// removePIDFile is best effort; a leftover stale file is handled on the
// next start.
func removePIDFile(path string) {
	_ = os.Remove(path)
}

// pidFileAlive reports whether the PID file names a live process. Missing
// or unreadable files, including corrupted ones, read as not running.
func pidFileAlive(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false
	}
	return processAlive(pid)
}

// readPID returns the PID recorded in the file, or 0 when absent or
// unparseable.
func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// processAlive probes a PID with signal 0. EPERM still means the process
// exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
