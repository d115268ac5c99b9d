package ipc

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestFrameRoundTripAllTypes(t *testing.T) {
	messages := []Message{
		NewMessage(MessageStart),
		NewMessage(MessageStop),
		NewMessage(MessagePause),
		NewMessage(MessageResume),
		NewMessage(MessageStatus),
		NewStatusMessage(StatusPayload{State: "running", Uptime: 12.5, ModelLoaded: false}),
		NewErrorMessage("boom", 409),
		NewDevicesMessage([]DeviceInfo{{ID: "hw:0,0", Name: "Mic", Description: "Internal mic", IsDefault: true}}),
		NewStartRecordingMessage(StartRecordingRequest{DeviceID: "default", SampleRate: 44100, Channels: 2, Backend: "parec"}),
		NewMessage(MessageStopRecording),
	}

	for _, msg := range messages {
		var buf bytes.Buffer
		if err := WriteMessage(&buf, msg); err != nil {
			t.Fatalf("WriteMessage(%s): %v", msg.Type, err)
		}
		got, err := ReadMessage(&buf)
		if err != nil {
			t.Fatalf("ReadMessage(%s): %v", msg.Type, err)
		}
		if got.Type != msg.Type {
			t.Fatalf("round trip changed type: %s -> %s", msg.Type, got.Type)
		}
	}
}

func TestReadMessageRejectsUnknownType(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"type":"reboot","data":null}`)
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	buf.Write(header[:])
	buf.Write(payload)

	if _, err := ReadMessage(&buf); err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestReadMessageRejectsMissingType(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"data":{"x":1}}`)
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	buf.Write(header[:])
	buf.Write(payload)

	if _, err := ReadMessage(&buf); err == nil || !strings.Contains(err.Error(), "missing required field") {
		t.Fatalf("expected missing type error, got %v", err)
	}
}

func TestReadMessageRejectsInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{not json`)
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	buf.Write(header[:])
	buf.Write(payload)

	if _, err := ReadMessage(&buf); err == nil {
		t.Fatal("expected decode error for invalid JSON")
	}
}

func TestReadMessageRejectsOversizeFrame(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)
	buf.Write(header[:])

	if _, err := ReadMessage(&buf); err == nil || !strings.Contains(err.Error(), "exceeds limit") {
		t.Fatalf("expected frame limit error, got %v", err)
	}
}

func TestReadMessageTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], 64)
	buf.Write(header[:])
	buf.WriteString("short")

	if _, err := ReadMessage(&buf); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestStatusPayloadRoundTrip(t *testing.T) {
	msg := NewStatusMessage(StatusPayload{State: "paused", Uptime: 3.25, ModelLoaded: false, CurrentModel: "base"})
	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	decoded, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	payload, err := decoded.StatusPayload()
	if err != nil {
		t.Fatalf("StatusPayload: %v", err)
	}
	if payload.State != "paused" || payload.Uptime != 3.25 || payload.CurrentModel != "base" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestStatusPayloadMissingFieldFailsLoudly(t *testing.T) {
	msg := Message{Type: MessageStatus, Data: map[string]any{"state": "running"}}
	if _, err := msg.StatusPayload(); err == nil || !strings.Contains(err.Error(), "missing required field") {
		t.Fatalf("expected loud decode failure, got %v", err)
	}
}

func TestErrorPayloadDefaultsCode(t *testing.T) {
	msg := Message{Type: MessageError, Data: map[string]any{"message": "bad"}}
	payload, err := msg.ErrorPayload()
	if err != nil {
		t.Fatalf("ErrorPayload: %v", err)
	}
	if payload.Code != 1 {
		t.Fatalf("expected default code 1, got %d", payload.Code)
	}

	missing := Message{Type: MessageError, Data: map[string]any{"code": 404}}
	if _, err := missing.ErrorPayload(); err == nil {
		t.Fatal("expected error for payload without message")
	}
}

func TestStartRecordingRequestDefaults(t *testing.T) {
	msg := Message{Type: MessageStartRecording}
	req, err := msg.StartRecordingRequest()
	if err != nil {
		t.Fatalf("StartRecordingRequest: %v", err)
	}
	if req.DeviceID != "default" || req.SampleRate != 16000 || req.Channels != 1 {
		t.Fatalf("unexpected defaults: %+v", req)
	}

	explicit := NewStartRecordingMessage(StartRecordingRequest{DeviceID: "hw:1,0", SampleRate: 8000, Channels: 2})
	req, err = explicit.StartRecordingRequest()
	if err != nil {
		t.Fatalf("StartRecordingRequest explicit: %v", err)
	}
	if req.DeviceID != "hw:1,0" || req.SampleRate != 8000 || req.Channels != 2 {
		t.Fatalf("explicit values lost: %+v", req)
	}
}
