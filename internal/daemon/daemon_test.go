package daemon

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"whisperdict/internal/faults"
	"whisperdict/internal/testsupport"
)

func newDaemon(t *testing.T) *Daemon {
	t.Helper()
	d := New(testsupport.NewConfig(t), nil)
	t.Cleanup(func() { d.Stop() })
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if d.State() != StateStopped {
		t.Fatalf("initial state = %s, want stopped", d.State())
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.State() != StateRunning {
		t.Fatalf("state after Start = %s, want running", d.State())
	}

	data, err := os.ReadFile(d.cfg.Daemon.PIDFile)
	if err != nil {
		t.Fatalf("pid file not written: %v", err)
	}
	if pid, _ := strconv.Atoi(strings.TrimSpace(string(data))); pid != os.Getpid() {
		t.Fatalf("pid file holds %s, want %d", data, os.Getpid())
	}
	if !d.IsRunning() {
		t.Fatal("IsRunning should report true while started")
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if d.State() != StateStopped {
		t.Fatalf("state after Stop = %s, want stopped", d.State())
	}
	if _, err := os.Stat(d.cfg.Daemon.PIDFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("pid file should be removed on stop")
	}
	if d.IsRunning() {
		t.Fatal("IsRunning should report false after stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	d := newDaemon(t)

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop on stopped daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestStartWhileRunning(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := d.Start(ctx)
	if !errors.Is(err, faults.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if !strings.Contains(err.Error(), "running") {
		t.Fatalf("error should name the current state, got %v", err)
	}
}

func TestRestartAfterStop(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if d.State() != StateRunning {
		t.Fatalf("state after restart = %s", d.State())
	}
}

func TestSingleInstanceLivePID(t *testing.T) {
	d := newDaemon(t)

	if err := os.WriteFile(d.cfg.Daemon.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	err := d.Start(context.Background())
	var single *SingleInstanceError
	if !errors.As(err, &single) {
		t.Fatalf("expected SingleInstanceError, got %v", err)
	}
	if single.PID != os.Getpid() {
		t.Fatalf("SingleInstanceError.PID = %d, want %d", single.PID, os.Getpid())
	}
	if d.State() != StateStopped {
		t.Fatalf("state after refused start = %s, want stopped", d.State())
	}
}

func TestSingleInstanceStalePIDOverwritten(t *testing.T) {
	d := newDaemon(t)

	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("spawn short-lived process: %v", err)
	}
	stalePID := cmd.Process.Pid

	if err := os.WriteFile(d.cfg.Daemon.PIDFile, []byte(strconv.Itoa(stalePID)), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start over stale pid file: %v", err)
	}
	if pid := readPID(d.cfg.Daemon.PIDFile); pid != os.Getpid() {
		t.Fatalf("pid file holds %d, want %d", pid, os.Getpid())
	}
}

func TestCorruptPIDFileFailsStart(t *testing.T) {
	d := newDaemon(t)

	if err := os.WriteFile(d.cfg.Daemon.PIDFile, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	err := d.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "corrupted") {
		t.Fatalf("expected corrupted pid file error, got %v", err)
	}
	if d.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", d.State())
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if err := d.Pause(); !errors.Is(err, faults.ErrInvalidTransition) {
		t.Fatalf("pause while stopped should fail, got %v", err)
	}
	if err := d.Resume(); !errors.Is(err, faults.ErrInvalidTransition) {
		t.Fatalf("resume while stopped should fail, got %v", err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Resume(); !errors.Is(err, faults.ErrInvalidTransition) {
		t.Fatalf("resume while running should fail, got %v", err)
	}
	if err := d.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if d.State() != StatePaused {
		t.Fatalf("state = %s, want paused", d.State())
	}
	if err := d.Pause(); !errors.Is(err, faults.ErrInvalidTransition) {
		t.Fatalf("pause while paused should fail, got %v", err)
	}
	if err := d.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if d.State() != StateRunning {
		t.Fatalf("state = %s, want running", d.State())
	}
}

func TestUptimeExcludesPausedTime(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if d.Uptime() != 0 {
		t.Fatalf("uptime before start = %f, want 0", d.Uptime())
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if d.Uptime() <= 0 {
		t.Fatal("uptime should advance while running")
	}

	if err := d.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	frozen := d.Uptime()
	time.Sleep(100 * time.Millisecond)
	if delta := d.Uptime() - frozen; delta > 0.02 {
		t.Fatalf("uptime advanced %.3fs while paused", delta)
	}

	resumedAt := time.Now()
	if err := d.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	up := d.Uptime()
	if up <= frozen {
		t.Fatal("uptime should resume advancing after Resume")
	}
	// The 100ms paused interval must not be counted.
	if limit := frozen + time.Since(resumedAt).Seconds() + 0.02; up > limit {
		t.Fatalf("uptime %.3fs includes paused time (frozen at %.3fs)", up, frozen)
	}
}

func TestHandleSignal(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	d.HandleSignal(syscall.SIGUSR1)
	if d.State() != StatePaused {
		t.Fatalf("SIGUSR1 on running: state = %s, want paused", d.State())
	}
	d.HandleSignal(syscall.SIGUSR1)
	if d.State() != StateRunning {
		t.Fatalf("SIGUSR1 on paused: state = %s, want running", d.State())
	}
	d.HandleSignal(syscall.SIGHUP)
	if d.State() != StateRunning {
		t.Fatalf("unhandled signal changed state to %s", d.State())
	}
	d.HandleSignal(syscall.SIGTERM)
	if d.State() != StateStopped {
		t.Fatalf("SIGTERM: state = %s, want stopped", d.State())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitForState(t, d, StateRunning)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	if d.State() != StateStopped {
		t.Fatalf("state after Run = %s, want stopped", d.State())
	}
}

func waitForState(t *testing.T, d *Daemon, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if d.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("daemon never reached state %s (stuck at %s)", want, d.State())
}

func TestCheckPIDFileMissing(t *testing.T) {
	if err := checkPIDFile(filepath.Join(t.TempDir(), "absent.pid")); err != nil {
		t.Fatalf("missing pid file should pass, got %v", err)
	}
}

func TestProcessAlive(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Fatal("own process should read as alive")
	}
	if processAlive(0) || processAlive(-1) {
		t.Fatal("non-positive pids should read as dead")
	}
}
