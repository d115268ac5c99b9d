package daemon

import (
	"context"

	"whisperdict/internal/audio"
	"whisperdict/internal/faults"
	"whisperdict/internal/ipc"
	"whisperdict/internal/logging"
)

// registerHandlers wires every request type into the IPC server. Handler
// faults are converted to coded error responses by the server.
func (d *Daemon) registerHandlers(server *ipc.Server) {
	server.Handle(ipc.MessageStart, d.handleStart)
	server.Handle(ipc.MessageStop, d.handleStop)
	server.Handle(ipc.MessagePause, d.handlePause)
	server.Handle(ipc.MessageResume, d.handleResume)
	server.Handle(ipc.MessageStatus, d.handleStatus)
	server.Handle(ipc.MessageListAudioDevices, d.handleListDevices)
	server.Handle(ipc.MessageStartRecording, d.handleStartRecording)
	server.Handle(ipc.MessageStopRecording, d.handleStopRecording)
}

// handleStart answers the start request. The daemon serving the socket is
// already running, so this only ever succeeds after an out-of-band state
// reset; in practice it reports a conflict.
func (d *Daemon) handleStart(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	if d.State() != StateStopped {
		return ipc.Message{}, faults.Wrap(faults.ErrConflict, "daemon", "start",
			"Daemon already running", nil)
	}
	if err := d.Start(ctx); err != nil {
		return ipc.Message{}, err
	}
	return ipc.NewStatusMessage(d.Status()), nil
}

func (d *Daemon) handleStop(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	if err := d.Stop(); err != nil {
		return ipc.Message{}, err
	}
	return ipc.NewStatusMessage(ipc.StatusPayload{
		State:       StateStopped.String(),
		Uptime:      0,
		ModelLoaded: false,
	}), nil
}

func (d *Daemon) handlePause(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	if err := d.Pause(); err != nil {
		return ipc.Message{}, err
	}
	return ipc.NewStatusMessage(d.Status()), nil
}

func (d *Daemon) handleResume(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	if err := d.Resume(); err != nil {
		return ipc.Message{}, err
	}
	return ipc.NewStatusMessage(d.Status()), nil
}

func (d *Daemon) handleStatus(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	return ipc.NewStatusMessage(d.Status()), nil
}

func (d *Daemon) handleListDevices(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	d.mu.Lock()
	recorder := d.recorder
	d.mu.Unlock()

	devices, err := recorder.ListDevices(ctx)
	if err != nil {
		return ipc.Message{}, faults.Wrap(nil, "daemon", "list_audio_devices",
			"Failed to list audio devices", err)
	}

	infos := make([]ipc.DeviceInfo, 0, len(devices))
	for _, device := range devices {
		infos = append(infos, ipc.DeviceInfo{
			ID:          device.ID,
			Name:        device.Name,
			Description: device.Description,
			IsDefault:   device.Default,
		})
	}
	return ipc.NewDevicesMessage(infos), nil
}

// handleStartRecording resolves the requested device, spawns the capture
// stream, and opens a session row. The whole operation runs under the
// daemon mutex so a concurrent request cannot start a second recording.
func (d *Daemon) handleStartRecording(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	req, err := msg.StartRecordingRequest()
	if err != nil {
		return ipc.Message{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		return ipc.Message{}, faults.Wrap(faults.ErrConflict, "daemon", "start_recording",
			"Recording already in progress", nil)
	}

	device, err := d.resolveDevice(ctx, req.DeviceID)
	if err != nil {
		return ipc.Message{}, err
	}

	stream, err := d.recorder.StartRecording(ctx, device, req.SampleRate, req.Channels, req.Backend)
	if err != nil {
		return ipc.Message{}, faults.Wrap(nil, "daemon", "start_recording",
			"Failed to start recording", err)
	}
	d.stream = stream

	if d.store != nil {
		id, err := d.store.StartSession(ctx, device.ID, req.Backend, req.SampleRate, req.Channels)
		if err != nil {
			d.logger.Warn("failed to open recording session",
				logging.Error(err),
				logging.String(logging.FieldDevice, device.ID),
			)
		} else {
			d.sessionID = id
		}
	}

	d.logger.Info("recording started",
		logging.String(logging.FieldEventType, "recording_started"),
		logging.String(logging.FieldDevice, device.ID),
	)
	return ipc.NewStatusMessage(d.statusLocked()), nil
}

func (d *Daemon) handleStopRecording(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return ipc.Message{}, faults.Wrap(faults.ErrNotFound, "daemon", "stop_recording",
			"No recording in progress", nil)
	}

	d.closeStreamLocked()
	d.logger.Info("recording stopped",
		logging.String(logging.FieldEventType, "recording_stopped"),
	)
	return ipc.NewStatusMessage(d.statusLocked()), nil
}

// resolveDevice maps "default" to the backend's default device and any
// other ID against the enumerated devices. Caller holds d.mu.
func (d *Daemon) resolveDevice(ctx context.Context, deviceID string) (audio.Device, error) {
	if deviceID == "default" {
		device, err := d.recorder.DefaultDevice(ctx)
		if err != nil {
			return audio.Device{}, faults.Wrap(nil, "daemon", "start_recording",
				"Failed to start recording", err)
		}
		return device, nil
	}

	devices, err := d.recorder.ListDevices(ctx)
	if err != nil {
		return audio.Device{}, faults.Wrap(nil, "daemon", "start_recording",
			"Failed to start recording", err)
	}
	for _, device := range devices {
		if device.ID == deviceID {
			return device, nil
		}
	}
	return audio.Device{}, faults.Wrap(faults.ErrNotFound, "daemon", "start_recording",
		"Audio device '"+deviceID+"' not found", nil)
}
