// Package testsupport builds throwaway configurations for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"whisperdict/internal/config"
)

// NewConfig returns a configuration rooted in a per-test temdirectory so
// sockets, PID files, and databases never collide between tests.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Daemon.SocketPath = filepath.Join(base, "daemon.sock")
	cfg.Daemon.PIDFile = filepath.Join(base, "daemon.pid")
	cfg.Daemon.DataDir = base
	cfg.Sessions.Enabled = true
	cfg.Sessions.DBPath = filepath.Join(base, "sessions.db")
	return &cfg
}
