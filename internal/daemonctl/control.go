// Package daemonctl orchestrates the daemon process from the CLI side:
// launching it detached, waiting for its socket to answer, and requesting
// shutdown.
package daemonctl

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"whisperdict/internal/ipc"
)

// ErrDaemonNotRunning indicates the daemon socket is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

// Launch starts a detached daemon process via the given executable.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon", "run"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient polls the socket until it answers and returns a connected
// client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// ProbeStatus asks a running daemon for its status. ErrDaemonNotRunning is
// returned when the socket does not answer.
func ProbeStatus(socketPath string) (ipc.StatusPayload, error) {
	client := ipc.NewClient(socketPath)
	status, err := client.Status()
	if err != nil {
		var connErr *ipc.ConnectError
		if errors.As(err, &connErr) {
			return ipc.StatusPayload{}, ErrDaemonNotRunning
		}
		return ipc.StatusPayload{}, err
	}
	return status, nil
}

// StopAndWait requests a stop over IPC and waits until the socket stops
// answering.
func StopAndWait(socketPath string, timeout time.Duration) error {
	client := ipc.NewClient(socketPath)
	if _, err := client.Stop(); err != nil {
		var connErr *ipc.ConnectError
		if errors.As(err, &connErr) {
			return ErrDaemonNotRunning
		}
		return err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := ProbeStatus(socketPath); errors.Is(err, ErrDaemonNotRunning) {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}
