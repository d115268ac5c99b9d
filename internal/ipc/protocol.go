package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame. Control messages are tiny; anything
// larger is a corrupt or hostile length prefix.
const MaxFrameSize = 1 << 20

// WriteMessage writes one length-prefixed frame: a 4-byte big-endian length
// followed by the JSON-encoded envelope.
func WriteMessage(w io.Writer, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("message exceeds frame limit: %d bytes", len(payload))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed frame and decodes the envelope.
// Unknown or missing type tags are decode errors: the protocol has a closed
// set of message types and anything else indicates a broken peer.
func ReadMessage(r io.Reader) (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return Message{}, fmt.Errorf("frame length %d exceeds limit", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, fmt.Errorf("read frame payload: %w", err)
	}

	var raw struct {
		Type *string        `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if raw.Type == nil {
		return Message{}, fmt.Errorf("decode message: missing required field %q", "type")
	}
	msgType := MessageType(*raw.Type)
	if _, ok := knownTypes[msgType]; !ok {
		return Message{}, fmt.Errorf("decode message: unknown type %q", *raw.Type)
	}
	return Message{Type: msgType, Data: raw.Data}, nil
}
