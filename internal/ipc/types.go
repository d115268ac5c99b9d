package ipc

import (
	"encoding/json"
	"fmt"
)

// MessageType tags the kind of request or response carried by an envelope.
type MessageType string

const (
	MessageStart            MessageType = "start"
	MessageStop             MessageType = "stop"
	MessagePause            MessageType = "pause"
	MessageResume           MessageType = "resume"
	MessageStatus           MessageType = "status"
	MessageError            MessageType = "error"
	MessageListAudioDevices MessageType = "list_audio_devices"
	MessageStartRecording   MessageType = "start_recording"
	MessageStopRecording    MessageType = "stop_recording"
)

var knownTypes = map[MessageType]struct{}{
	MessageStart:            {},
	MessageStop:             {},
	MessagePause:            {},
	MessageResume:           {},
	MessageStatus:           {},
	MessageError:            {},
	MessageListAudioDevices: {},
	MessageStartRecording:   {},
	MessageStopRecording:    {},
}

// Message is the wire envelope: a type tag plus an optional data mapping.
type Message struct {
	Type MessageType    `json:"type"`
	Data map[string]any `json:"data"`
}

// NewMessage builds an envelope with no payload.
func NewMessage(t MessageType) Message {
	return Message{Type: t}
}

// StatusPayload reports daemon state over IPC.
type StatusPayload struct {
	State        string  `json:"state"`
	Uptime       float64 `json:"uptime"`
	ModelLoaded  bool    `json:"model_loaded"`
	CurrentModel string  `json:"current_model,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// ErrorPayload carries a human-readable message and a branchable code.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DeviceInfo mirrors audio.Device on the wire.
type DeviceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

// DevicesPayload lists capture devices in backend order.
type DevicesPayload struct {
	Devices []DeviceInfo `json:"devices"`
}

// StartRecordingRequest parametrizes a new capture stream.
type StartRecordingRequest struct {
	DeviceID   string `json:"device_id"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Backend    string `json:"backend,omitempty"`
}

// NewStatusMessage wraps a status payload in an envelope.
func NewStatusMessage(p StatusPayload) Message {
	return Message{Type: MessageStatus, Data: toDataMap(p)}
}

// NewErrorMessage wraps an error message and code in an envelope.
func NewErrorMessage(message string, code int) Message {
	return Message{Type: MessageError, Data: toDataMap(ErrorPayload{Message: message, Code: code})}
}

// NewDevicesMessage wraps a device listing in an envelope.
func NewDevicesMessage(devices []DeviceInfo) Message {
	if devices == nil {
		devices = []DeviceInfo{}
	}
	return Message{Type: MessageListAudioDevices, Data: toDataMap(DevicesPayload{Devices: devices})}
}

// NewStartRecordingMessage wraps recording parameters in an envelope.
func NewStartRecordingMessage(req StartRecordingRequest) Message {
	return Message{Type: MessageStartRecording, Data: toDataMap(req)}
}

// StatusPayload decodes the envelope's data as a status payload. Unlike a
// permissive map lookup, missing required fields are an error: a status
// response without state or uptime indicates a peer bug, not an empty status.
func (m Message) StatusPayload() (StatusPayload, error) {
	if m.Type != MessageStatus {
		return StatusPayload{}, fmt.Errorf("message type %q is not a status response", m.Type)
	}
	for _, field := range []string{"state", "uptime", "model_loaded"} {
		if _, ok := m.Data[field]; !ok {
			return StatusPayload{}, fmt.Errorf("status payload missing required field %q", field)
		}
	}
	var payload StatusPayload
	if err := fromDataMap(m.Data, &payload); err != nil {
		return StatusPayload{}, fmt.Errorf("decode status payload: %w", err)
	}
	return payload, nil
}

// ErrorPayload decodes the envelope's data as an error payload. The message
// field is required; a missing code defaults to the generic failure code.
func (m Message) ErrorPayload() (ErrorPayload, error) {
	if m.Type != MessageError {
		return ErrorPayload{}, fmt.Errorf("message type %q is not an error response", m.Type)
	}
	if _, ok := m.Data["message"]; !ok {
		return ErrorPayload{}, fmt.Errorf("error payload missing required field %q", "message")
	}
	payload := ErrorPayload{Code: 1}
	if err := fromDataMap(m.Data, &payload); err != nil {
		return ErrorPayload{}, fmt.Errorf("decode error payload: %w", err)
	}
	return payload, nil
}

// DevicesPayload decodes the envelope's data as a device listing.
func (m Message) DevicesPayload() (DevicesPayload, error) {
	if m.Type != MessageListAudioDevices {
		return DevicesPayload{}, fmt.Errorf("message type %q is not a device listing", m.Type)
	}
	if _, ok := m.Data["devices"]; !ok {
		return DevicesPayload{}, fmt.Errorf("device listing missing required field %q", "devices")
	}
	var payload DevicesPayload
	if err := fromDataMap(m.Data, &payload); err != nil {
		return DevicesPayload{}, fmt.Errorf("decode device listing: %w", err)
	}
	return payload, nil
}

// StartRecordingRequest decodes the envelope's data as recording parameters.
// Absent fields fall back to the conventional defaults (default device,
// 16 kHz, mono) to match what clients may omit.
func (m Message) StartRecordingRequest() (StartRecordingRequest, error) {
	if m.Type != MessageStartRecording {
		return StartRecordingRequest{}, fmt.Errorf("message type %q is not a start-recording request", m.Type)
	}
	req := StartRecordingRequest{DeviceID: "default", SampleRate: 16000, Channels: 1}
	if m.Data == nil {
		return req, nil
	}
	if err := fromDataMap(m.Data, &req); err != nil {
		return StartRecordingRequest{}, fmt.Errorf("decode start-recording request: %w", err)
	}
	if req.DeviceID == "" {
		req.DeviceID = "default"
	}
	return req, nil
}

func toDataMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

func fromDataMap(data map[string]any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
