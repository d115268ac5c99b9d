package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Daemon.DataDir) == "" {
		c.Daemon.DataDir = defaultDataDir
	}
	if c.Daemon.DataDir, err = expandPath(c.Daemon.DataDir); err != nil {
		return fmt.Errorf("daemon.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Daemon.SocketPath) == "" {
		c.Daemon.SocketPath = defaultSocketPath
	}
	if c.Daemon.SocketPath, err = expandPath(c.Daemon.SocketPath); err != nil {
		return fmt.Errorf("daemon.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Daemon.PIDFile) == "" {
		c.Daemon.PIDFile = defaultPIDFile
	}
	if c.Daemon.PIDFile, err = expandPath(c.Daemon.PIDFile); err != nil {
		return fmt.Errorf("daemon.pid_file: %w", err)
	}

	c.Daemon.LogLevel = strings.ToLower(strings.TrimSpace(c.Daemon.LogLevel))
	if c.Daemon.LogLevel == "" {
		c.Daemon.LogLevel = defaultLogLevel
	}
	c.Daemon.LogFormat = strings.ToLower(strings.TrimSpace(c.Daemon.LogFormat))
	if c.Daemon.LogFormat == "" {
		c.Daemon.LogFormat = defaultLogFormat
	}

	if strings.TrimSpace(c.Audio.Device) == "" {
		c.Audio.Device = defaultDevice
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = defaultChannels
	}
	c.Audio.Backend = strings.TrimSpace(c.Audio.Backend)

	if c.Sessions.Enabled {
		if strings.TrimSpace(c.Sessions.DBPath) == "" {
			c.Sessions.DBPath = defaultDBPath
		}
		if c.Sessions.DBPath, err = expandPath(c.Sessions.DBPath); err != nil {
			return fmt.Errorf("sessions.db_path: %w", err)
		}
	}
	return nil
}
