package app

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/domain"
)

// Payload is a leniently decoded event body. Missing or mistyped fields
// fall back to defaults instead of failing the event.
type Payload map[string]json.RawMessage

// ParsePayload never fails; anything that is not a JSON object yields an
// empty payload.
func ParsePayload(raw json.RawMessage) Payload {
	p := Payload{}
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}
	}
	return p
}

// String returns the field if it is a non-empty JSON string. An explicit
// "" is treated like a missing field and yields def, so a client cannot
// join a room named "" or appear with a blank username.
func (p Payload) String(key, def string) string {
	raw, ok := p[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return def
	}
	return s
}

// Float returns the field if it is a JSON number, otherwise 0.
func (p Payload) Float(key string) float64 {
	raw, ok := p[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return f
}

// Bool returns true only for a JSON true.
func (p Payload) Bool(key string) bool {
	raw, ok := p[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// Room returns the "room" field, or DefaultRoom when it is missing or "".
func (p Payload) Room() domain.RoomKey {
	return domain.RoomKey(p.String("room", string(domain.DefaultRoom)))
}
