package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"whisperdict/internal/faults"
)

type fakeBackend struct {
	name      string
	available bool
	probes    int
	devices   []Device
	started   int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Available(ctx context.Context) bool {
	b.probes++
	return b.available
}

func (b *fakeBackend) ListDevices(ctx context.Context) ([]Device, error) {
	return b.devices, nil
}

func (b *fakeBackend) DefaultDevice(ctx context.Context) (Device, error) {
	if len(b.devices) == 0 {
		return Device{ID: "default", Default: true}, nil
	}
	return b.devices[0], nil
}

func (b *fakeBackend) StartRecording(ctx context.Context, device Device, sampleRate, channels int) (*Stream, error) {
	if err := validateParams(b.name, sampleRate, channels); err != nil {
		return nil, err
	}
	b.started++
	return StartProcess(ctx, b.name, "sleep", "1")
}

func TestRecorderPrefersFirstAvailableBackend(t *testing.T) {
	first := &fakeBackend{name: "first", available: false}
	second := &fakeBackend{name: "second", available: true, devices: []Device{{ID: "mic0", Name: "Mic"}}}
	third := &fakeBackend{name: "third", available: true}
	recorder := NewRecorderWith(first, second, third)

	devices, err := recorder.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != "mic0" {
		t.Fatalf("expected second backend's devices, got %+v", devices)
	}
	if third.probes != 0 {
		t.Fatal("selection should stop at the first available backend")
	}
}

func TestRecorderProbesAvailabilityPerCall(t *testing.T) {
	backend := &fakeBackend{name: "only", available: true}
	recorder := NewRecorderWith(backend)
	ctx := context.Background()

	if _, err := recorder.ListDevices(ctx); err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if _, err := recorder.DefaultDevice(ctx); err != nil {
		t.Fatalf("DefaultDevice: %v", err)
	}
	if backend.probes != 2 {
		t.Fatalf("expected one availability probe per call, got %d", backend.probes)
	}
}

func TestRecorderNoBackendsAvailable(t *testing.T) {
	recorder := NewRecorderWith(&fakeBackend{name: "gone", available: false})

	_, err := recorder.ListDevices(context.Background())
	if !errors.Is(err, faults.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRecorderExplicitBackend(t *testing.T) {
	first := &fakeBackend{name: "first", available: true}
	second := &fakeBackend{name: "second", available: true}
	recorder := NewRecorderWith(first, second)
	ctx := context.Background()

	stream, err := recorder.StartRecording(ctx, Device{ID: "default"}, 16000, 1, "second")
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	defer stream.Close()

	if second.started != 1 || first.started != 0 {
		t.Fatalf("expected the named backend to record, got first=%d second=%d", first.started, second.started)
	}
}

func TestRecorderExplicitBackendUnavailable(t *testing.T) {
	recorder := NewRecorderWith(
		&fakeBackend{name: "first", available: true},
		&fakeBackend{name: "second", available: false},
	)

	_, err := recorder.StartRecording(context.Background(), Device{ID: "default"}, 16000, 1, "second")
	if !errors.Is(err, faults.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for unavailable backend, got %v", err)
	}

	_, err = recorder.StartRecording(context.Background(), Device{ID: "default"}, 16000, 1, "unknown")
	if !errors.Is(err, faults.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for unknown backend, got %v", err)
	}
}

func TestStartRecordingValidatesParams(t *testing.T) {
	recorder := NewRecorderWith(&fakeBackend{name: "only", available: true})
	ctx := context.Background()

	if _, err := recorder.StartRecording(ctx, Device{ID: "default"}, 0, 1, ""); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := recorder.StartRecording(ctx, Device{ID: "default"}, 16000, -1, ""); err == nil {
		t.Fatal("expected error for negative channels")
	}
}

func TestDeviceEquality(t *testing.T) {
	a := Device{ID: "mic0", Name: "Front Mic"}
	b := Device{ID: "mic0", Name: "Renamed"}
	c := Device{ID: "mic1", Name: "Front Mic"}

	if !a.Equal(b) {
		t.Fatal("devices with the same ID should compare equal")
	}
	if a.Equal(c) {
		t.Fatal("devices with different IDs should not compare equal")
	}
	if got := a.String(); !strings.Contains(got, "mic0") {
		t.Fatalf("String should include the ID, got %q", got)
	}
}
