package audio

import (
	"context"

	"whisperdict/internal/faults"
)

// Recorder selects among the registered backends. Every operation probes
// availability anew, so the chosen backend tracks what is installed right
// now rather than what was installed at construction time.
type Recorder struct {
	backends []Backend
}

// NewRecorder builds a recorder over the standard backends in preference
// order: parec, then pw-cat, then sox.
func NewRecorder() *Recorder {
	return &Recorder{backends: []Backend{
		ParecBackend{},
		PwCatBackend{},
		SoxBackend{},
	}}
}

// NewRecorderWith builds a recorder over an explicit backend list, ordered
// by preference.
func NewRecorderWith(backends ...Backend) *Recorder {
	return &Recorder{backends: backends}
}

// AvailableBackends returns the backends whose capture tools are currently
// installed, preserving preference order.
func (r *Recorder) AvailableBackends(ctx context.Context) []Backend {
	var available []Backend
	for _, b := range r.backends {
		if b.Available(ctx) {
			available = append(available, b)
		}
	}
	return available
}

func (r *Recorder) firstAvailable(ctx context.Context) (Backend, error) {
	for _, b := range r.backends {
		if b.Available(ctx) {
			return b, nil
		}
	}
	return nil, faults.Wrap(faults.ErrUnavailable, "audio", "select_backend", "no audio backends available", nil)
}

// ListDevices enumerates input devices on the first available backend.
func (r *Recorder) ListDevices(ctx context.Context) ([]Device, error) {
	backend, err := r.firstAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return backend.ListDevices(ctx)
}

// DefaultDevice returns the default input on the first available backend.
func (r *Recorder) DefaultDevice(ctx context.Context) (Device, error) {
	backend, err := r.firstAvailable(ctx)
	if err != nil {
		return Device{}, err
	}
	return backend.DefaultDevice(ctx)
}

// StartRecording starts a capture stream. When backendName is non-empty
// that backend must exist and be available; otherwise the first available
// backend is used.
func (r *Recorder) StartRecording(ctx context.Context, device Device, sampleRate, channels int, backendName string) (*Stream, error) {
	if backendName != "" {
		for _, b := range r.backends {
			if b.Name() != backendName {
				continue
			}
			if !b.Available(ctx) {
				break
			}
			return b.StartRecording(ctx, device, sampleRate, channels)
		}
		return nil, faults.Wrap(faults.ErrUnavailable, "audio", "start_recording", "backend "+backendName+" not available", nil)
	}

	backend, err := r.firstAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return backend.StartRecording(ctx, device, sampleRate, channels)
}
