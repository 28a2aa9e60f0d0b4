package app

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Frame is an encoded envelope ready for the wire.
type Frame []byte

// Envelope is the wire shape in both directions: a named event and its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope parses an inbound frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event")
	}
	return env, nil
}

// EncodeEnvelope builds an outbound frame. A json.RawMessage payload is
// written through untouched so relayed signaling data keeps its exact
// bytes.
func EncodeEnvelope(event string, data any) (Frame, error) {
	name, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event name: %w", err)
	}
	var body []byte
	switch v := data.(type) {
	case json.RawMessage:
		body = bytes.TrimSpace(v)
		if len(body) == 0 {
			body = []byte("{}")
		}
	default:
		body, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
	}
	var buf bytes.Buffer
	buf.Grow(len(name) + len(body) + 20)
	buf.WriteString(`{"event":`)
	buf.Write(name)
	buf.WriteString(`,"data":`)
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
