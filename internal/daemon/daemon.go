// Package daemon implements the whisperdict daemon lifecycle: a
// single-instance background process that owns the IPC socket, the audio
// recorder, and the recording session history.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"whisperdict/internal/audio"
	"whisperdict/internal/config"
	"whisperdict/internal/faults"
	"whisperdict/internal/ipc"
	"whisperdict/internal/logging"
	"whisperdict/internal/sessions"
)

// Daemon is the long-running whisperdict process. All state transitions
// are mutex-guarded because IPC connections are served concurrently.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *audio.Recorder

	mu          sync.Mutex
	state       State
	server      *ipc.Server
	stream      *audio.Stream
	sessionID   string
	store       *sessions.Store
	lock        *flock.Flock
	monitor     *deviceMonitor
	startTime   time.Time
	pauseTime   time.Time
	totalPaused time.Duration
	shutdownCh  chan struct{}
}

// New builds a daemon from configuration. Nothing is started until Start.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		recorder: audio.NewRecorder(),
		state:    StateStopped,
	}
}

// SetRecorder replaces the audio recorder, for tests that inject fake
// backends.
func (d *Daemon) SetRecorder(r *audio.Recorder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorder = r
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start transitions stopped -> starting -> running: it enforces single
// instance, writes the PID file, opens the session store, and brings up the
// IPC server with all request handlers registered.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateStopped {
		return faults.Wrap(faults.ErrInvalidTransition, "daemon", "start",
			"cannot start daemon in state "+d.state.String(), nil)
	}

	if err := checkPIDFile(d.cfg.Daemon.PIDFile); err != nil {
		return err
	}

	lock := flock.New(d.cfg.Daemon.PIDFile + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return faults.Wrap(nil, "daemon", "start", "acquire daemon lock", err)
	}
	if !locked {
		return faults.Wrap(faults.ErrSingleInstance, "daemon", "start",
			"daemon lock held by another process", nil)
	}

	d.state = StateStarting
	d.startTime = time.Now()
	d.pauseTime = time.Time{}
	d.totalPaused = 0
	d.lock = lock
	d.shutdownCh = make(chan struct{})

	if err := writePIDFile(d.cfg.Daemon.PIDFile); err != nil {
		d.releaseLockLocked()
		d.state = StateStopped
		return err
	}

	if d.cfg.Sessions.Enabled {
		store, err := sessions.Open(d.cfg.Sessions.DBPath)
		if err != nil {
			// History is an accessory; the daemon runs without it.
			d.logger.Warn("session store unavailable",
				logging.Error(err),
				logging.String(logging.FieldEventType, "session_store_failed"),
			)
		} else {
			d.store = store
		}
	}

	server, err := ipc.NewServer(ctx, d.cfg.Daemon.SocketPath, d.logger)
	if err != nil {
		d.closeStoreLocked()
		removePIDFile(d.cfg.Daemon.PIDFile)
		d.releaseLockLocked()
		d.state = StateStopped
		return faults.Wrap(nil, "daemon", "start", "start ipc server", err)
	}
	d.registerHandlers(server)
	server.Serve()
	d.server = server

	d.monitor = newDeviceMonitor(d.logger)
	d.monitor.Start(ctx)

	d.state = StateRunning
	d.logger.Info("daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("socket", d.cfg.Daemon.SocketPath),
	)
	return nil
}

// Stop transitions to stopping, closes any active recording, shuts down the
// IPC server, removes the PID file, and lands in stopped. Stopping an
// already stopped daemon is a no-op.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *Daemon) stopLocked() error {
	if d.state == StateStopped {
		return nil
	}
	d.state = StateStopping

	d.closeStreamLocked()

	if d.monitor != nil {
		d.monitor.Stop()
		d.monitor = nil
	}
	if d.server != nil {
		d.server.Close()
		d.server = nil
	}

	d.closeStoreLocked()
	removePIDFile(d.cfg.Daemon.PIDFile)
	d.releaseLockLocked()

	d.state = StateStopped
	if d.shutdownCh != nil {
		select {
		case <-d.shutdownCh:
		default:
			close(d.shutdownCh)
		}
	}
	d.logger.Info("daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
	return nil
}

// Pause freezes uptime accounting. Only a running daemon can pause; an
// active recording is left untouched.
func (d *Daemon) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateRunning {
		return faults.Wrap(faults.ErrInvalidTransition, "daemon", "pause",
			"cannot pause daemon in state "+d.state.String(), nil)
	}
	d.state = StatePaused
	d.pauseTime = time.Now()
	d.logger.Info("daemon paused",
		logging.String(logging.FieldEventType, "daemon_paused"),
	)
	return nil
}

// Resume returns a paused daemon to running, folding the paused interval
// into the total so uptime continues where it left off.
func (d *Daemon) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StatePaused {
		return faults.Wrap(faults.ErrInvalidTransition, "daemon", "resume",
			"cannot resume daemon in state "+d.state.String(), nil)
	}
	if !d.pauseTime.IsZero() {
		d.totalPaused += time.Since(d.pauseTime)
		d.pauseTime = time.Time{}
	}
	d.state = StateRunning
	d.logger.Info("daemon resumed",
		logging.String(logging.FieldEventType, "daemon_resumed"),
	)
	return nil
}

// Uptime returns elapsed running time in seconds, excluding paused
// intervals, floored at zero.
func (d *Daemon) Uptime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uptimeLocked()
}

func (d *Daemon) uptimeLocked() float64 {
	if d.startTime.IsZero() {
		return 0
	}
	uptime := time.Since(d.startTime) - d.totalPaused
	if d.state == StatePaused && !d.pauseTime.IsZero() {
		uptime -= time.Since(d.pauseTime)
	}
	if uptime < 0 {
		return 0
	}
	return uptime.Seconds()
}

// Status reports the current state and uptime as an IPC status payload.
func (d *Daemon) Status() ipc.StatusPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusLocked()
}

func (d *Daemon) statusLocked() ipc.StatusPayload {
	return ipc.StatusPayload{
		State:       d.state.String(),
		Uptime:      d.uptimeLocked(),
		ModelLoaded: false,
	}
}

// IsRunning probes the PID file on disk, so it answers for any daemon
// process, not just this one.
func (d *Daemon) IsRunning() bool {
	return pidFileAlive(d.cfg.Daemon.PIDFile)
}

// HandleSignal maps process signals to lifecycle operations: SIGTERM and
// SIGINT stop the daemon, SIGUSR1 toggles pause/resume. Other signals are
// ignored.
func (d *Daemon) HandleSignal(sig syscall.Signal) {
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		_ = d.Stop()
	case syscall.SIGUSR1:
		switch d.State() {
		case StateRunning:
			_ = d.Pause()
		case StatePaused:
			_ = d.Resume()
		}
	}
}

// Run starts the daemon and blocks until a stop arrives over IPC, via
// signal, or through context cancellation. Stop is guaranteed on exit.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	d.mu.Lock()
	shutdownCh := d.shutdownCh
	d.mu.Unlock()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-shutdownCh:
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Daemon) closeStreamLocked() {
	if d.stream == nil {
		return
	}
	bytes := d.stream.BytesRead()
	if err := d.stream.Close(); err != nil {
		d.logger.Warn("error closing audio stream",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stream_close_failed"),
		)
	}
	d.stream = nil
	d.finishSessionLocked(bytes)
}

func (d *Daemon) finishSessionLocked(bytes int64) {
	if d.store == nil || d.sessionID == "" {
		return
	}
	if err := d.store.FinishSession(context.Background(), d.sessionID, bytes); err != nil {
		d.logger.Warn("failed to finalize recording session",
			logging.Error(err),
			logging.String(logging.FieldSessionID, d.sessionID),
		)
	}
	d.sessionID = ""
}

func (d *Daemon) closeStoreLocked() {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.logger.Warn("error closing session store", logging.Error(err))
	}
	d.store = nil
}

func (d *Daemon) releaseLockLocked() {
	if d.lock == nil {
		return
	}
	_ = d.lock.Unlock()
	d.lock = nil
}
