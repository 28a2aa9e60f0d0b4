package domain

import "time"

// DefaultRoom is used when a client omits the room key.
const DefaultRoom RoomKey = "default"

type RoomKey string

// RoomInfo is a read-only view of a room for APIs.
type RoomInfo struct {
	Key          RoomKey   `json:"room"`
	CreatedAt    time.Time `json:"created_at"`
	Participants int       `json:"participants"`
	// EmptySince is zero while the room has members.
	EmptySince time.Time `json:"-"`
}
