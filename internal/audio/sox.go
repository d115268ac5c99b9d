package audio

import (
	"context"
	"os/exec"
	"strconv"
)

// SoxBackend records through SoX's ALSA driver. SoX has no device
// enumeration command, so the listing is the conventional ALSA identifiers.
type SoxBackend struct{}

func (SoxBackend) Name() string { return "sox" }

func (SoxBackend) Available(ctx context.Context) bool {
	_, err := exec.LookPath("sox")
	return err == nil
}

func (SoxBackend) ListDevices(ctx context.Context) ([]Device, error) {
	return []Device{
		{
			ID:          "default",
			Name:        "Default ALSA Device",
			Description: "System Default Audio Device",
			Default:     true,
		},
		{
			ID:          "hw:0,0",
			Name:        "Hardware Device 0,0",
			Description: "Hardware Audio Device 0,0",
		},
		{
			ID:          "hw:1,0",
			Name:        "Hardware Device 1,0",
			Description: "Hardware Audio Device 1,0",
		},
	}, nil
}

func (SoxBackend) DefaultDevice(ctx context.Context) (Device, error) {
	return Device{
		ID:          "default",
		Name:        "Default ALSA Device",
		Description: "System Default Audio Device",
		Default:     true,
	}, nil
}

func (b SoxBackend) StartRecording(ctx context.Context, device Device, sampleRate, channels int) (*Stream, error) {
	if err := validateParams(b.Name(), sampleRate, channels); err != nil {
		return nil, err
	}
	return StartProcess(ctx, b.Name(),
		"sox",
		"-t", "alsa", device.ID,
		"-t", "raw",
		"-r", strconv.Itoa(sampleRate),
		"-c", strconv.Itoa(channels),
		"-b", "16",
		"-e", "signed-integer",
		"-",
	)
}
