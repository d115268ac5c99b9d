package config

import "fmt"

var knownLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {},
}

var knownLogFormats = map[string]struct{}{
	"console": {}, "json": {},
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if _, ok := knownLogLevels[c.Daemon.LogLevel]; !ok {
		return fmt.Errorf("daemon.log_level: unknown level %q", c.Daemon.LogLevel)
	}
	if _, ok := knownLogFormats[c.Daemon.LogFormat]; !ok {
		return fmt.Errorf("daemon.log_format: unknown format %q", c.Daemon.LogFormat)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate: must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels: must be positive, got %d", c.Audio.Channels)
	}
	return nil
}
