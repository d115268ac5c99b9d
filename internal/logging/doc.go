// Package logging constructs the slog loggers used across whisperdict and
// provides attribute helpers plus standardized field keys so the daemon, IPC,
// and audio components emit uniform structured output.
package logging
