package config

const (
	defaultConfigPath = "~/.config/whisperdict/config.toml"
	defaultDataDir    = "~/.local/share/whisperdict"
	defaultSocketPath = "~/.local/share/whisperdict/daemon.sock"
	defaultPIDFile    = "~/.local/share/whisperdict/daemon.pid"
	defaultDBPath     = "~/.local/share/whisperdict/sessions.db"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultDevice     = "default"
	defaultSampleRate = 16000
	defaultChannels   = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			SocketPath: defaultSocketPath,
			PIDFile:    defaultPIDFile,
			DataDir:    defaultDataDir,
			LogLevel:   defaultLogLevel,
			LogFormat:  defaultLogFormat,
		},
		Audio: Audio{
			Device:     defaultDevice,
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		},
		Sessions: Sessions{
			Enabled: true,
			DBPath:  defaultDBPath,
		},
	}
}
