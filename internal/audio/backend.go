package audio

import (
	"context"

	"whisperdict/internal/faults"
)

// DefaultSampleRate and DefaultChannels match the 16 kHz mono capture
// format expected by speech models.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

// Device identifies an audio input. Devices compare equal when their IDs
// match; names and descriptions are display-only.
type Device struct {
	ID          string
	Name        string
	Description string
	Default     bool
}

func (d Device) String() string {
	return d.Name + " (" + d.ID + ")"
}

// Equal reports whether two devices refer to the same input.
func (d Device) Equal(other Device) bool {
	return d.ID == other.ID
}

// Backend records audio through one external capture tool.
type Backend interface {
	// Name returns the backend identifier used in configuration and
	// start_recording requests.
	Name() string
	// Available reports whether the backend's capture binary is installed.
	// Probed fresh on every call, never cached.
	Available(ctx context.Context) bool
	// ListDevices enumerates input devices. An empty list is not an error;
	// it means the backend found nothing to report.
	ListDevices(ctx context.Context) ([]Device, error)
	// DefaultDevice returns the device used when a request names none.
	DefaultDevice(ctx context.Context) (Device, error)
	// StartRecording spawns the capture process and returns its output
	// stream. The context bounds the spawn, not the stream's lifetime.
	StartRecording(ctx context.Context, device Device, sampleRate, channels int) (*Stream, error)
}

func validateParams(backend string, sampleRate, channels int) error {
	if sampleRate <= 0 {
		return faults.Wrap(nil, backend, "start_recording", "sample rate must be positive", nil)
	}
	if channels <= 0 {
		return faults.Wrap(nil, backend, "start_recording", "channels must be positive", nil)
	}
	return nil
}
