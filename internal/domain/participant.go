// Package domain contains entity without logic, just meta-data
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultUsername    = "Anonymous"
	DefaultLowDataUser = "User"
)

// SessionID identifies one signaling connection. A browser tab that
// reconnects gets a new one.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Participant is a session's entry in a room's member list.
type Participant struct {
	SID      SessionID `json:"sid"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}
