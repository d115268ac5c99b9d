package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ParecBackend records through PulseAudio's parec and enumerates sources
// with pactl.
type ParecBackend struct{}

func (ParecBackend) Name() string { return "parec" }

func (ParecBackend) Available(ctx context.Context) bool {
	_, err := exec.LookPath("parec")
	return err == nil
}

// ListDevices parses `pactl list short sources` tabular output. Lines with
// fewer than six tab-separated fields are skipped.
func (ParecBackend) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "short", "sources").Output()
	if err != nil {
		return nil, nil
	}

	var devices []Device
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 6 {
			continue
		}
		devices = append(devices, Device{
			ID:          parts[1],
			Name:        parts[5],
			Description: parts[5],
		})
	}
	return devices, nil
}

// DefaultDevice asks pactl for the default source, falling back to the
// generic "default" identifier when pactl is missing or fails.
func (ParecBackend) DefaultDevice(ctx context.Context) (Device, error) {
	out, err := exec.CommandContext(ctx, "pactl", "get-default-source").Output()
	if err == nil {
		if id := strings.TrimSpace(string(out)); id != "" {
			return Device{
				ID:          id,
				Name:        "Default Device",
				Description: "Default PulseAudio Input Device",
				Default:     true,
			}, nil
		}
	}
	return Device{
		ID:          "default",
		Name:        "Default Device",
		Description: "Default Audio Input Device",
		Default:     true,
	}, nil
}

func (b ParecBackend) StartRecording(ctx context.Context, device Device, sampleRate, channels int) (*Stream, error) {
	if err := validateParams(b.Name(), sampleRate, channels); err != nil {
		return nil, err
	}
	return StartProcess(ctx, b.Name(),
		"parec",
		"--device="+device.ID,
		"--format=s16le",
		fmt.Sprintf("--rate=%d", sampleRate),
		fmt.Sprintf("--channels=%d", channels),
	)
}
