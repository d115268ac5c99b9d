package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// PwCatBackend records through PipeWire's pw-cat and enumerates nodes with
// pw-dump.
type PwCatBackend struct{}

func (PwCatBackend) Name() string { return "pw-cat" }

func (PwCatBackend) Available(ctx context.Context) bool {
	_, err := exec.LookPath("pw-cat")
	return err == nil
}

type pwNode struct {
	Type string `json:"type"`
	Info struct {
		Props map[string]any `json:"props"`
	} `json:"info"`
}

// ListDevices filters pw-dump's node graph down to capture nodes whose
// name mentions source or input.
func (PwCatBackend) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, "pw-dump").Output()
	if err != nil {
		return nil, nil
	}

	var nodes []pwNode
	if err := json.Unmarshal(out, &nodes); err != nil {
		return nil, nil
	}

	var devices []Device
	for _, node := range nodes {
		if node.Type != "PipeWire:Interface:Node" {
			continue
		}
		name, _ := node.Info.Props["node.name"].(string)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "source") && !strings.Contains(lower, "input") {
			continue
		}
		description, _ := node.Info.Props["device.description"].(string)
		if description == "" {
			description = name
		}
		devices = append(devices, Device{
			ID:          name,
			Name:        description,
			Description: description,
		})
	}
	return devices, nil
}

func (PwCatBackend) DefaultDevice(ctx context.Context) (Device, error) {
	return Device{
		ID:          "default",
		Name:        "Default PipeWire Device",
		Description: "Default PipeWire Input Device",
		Default:     true,
	}, nil
}

func (b PwCatBackend) StartRecording(ctx context.Context, device Device, sampleRate, channels int) (*Stream, error) {
	if err := validateParams(b.Name(), sampleRate, channels); err != nil {
		return nil, err
	}
	return StartProcess(ctx, b.Name(),
		"pw-cat",
		"--record",
		"--target="+device.ID,
		"--format=s16",
		fmt.Sprintf("--rate=%d", sampleRate),
		fmt.Sprintf("--channels=%d", channels),
		"-",
	)
}
