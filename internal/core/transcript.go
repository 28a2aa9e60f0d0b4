package core

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
)

type transcript struct {
	mu      sync.Mutex
	entries []domain.TranscriptEntry
}

// TranscriptLog is an append-only caption log per room. It is never
// truncated while the room exists.
type TranscriptLog struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*transcript
}

func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{rooms: make(map[domain.RoomKey]*transcript)}
}

func (l *TranscriptLog) get(key domain.RoomKey) (*transcript, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tr, ok := l.rooms[key]
	return tr, ok
}

func (l *TranscriptLog) getOrCreate(key domain.RoomKey) *transcript {
	if tr, ok := l.get(key); ok {
		return tr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if tr, ok := l.rooms[key]; ok {
		return tr
	}
	tr := &transcript{}
	l.rooms[key] = tr
	return tr
}

// Append adds e and returns the log length.
func (l *TranscriptLog) Append(key domain.RoomKey, e domain.TranscriptEntry) int {
	tr := l.getOrCreate(key)
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.entries = append(tr.entries, e)
	return len(tr.entries)
}

// Snapshot returns a copy of the log in append order.
func (l *TranscriptLog) Snapshot(key domain.RoomKey) []domain.TranscriptEntry {
	tr, ok := l.get(key)
	if !ok {
		return nil
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(tr.entries))
	copy(out, tr.entries)
	return out
}

func (l *TranscriptLog) Len(key domain.RoomKey) int {
	tr, ok := l.get(key)
	if !ok {
		return 0
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.entries)
}

// Forget drops the log for key.
func (l *TranscriptLog) Forget(key domain.RoomKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, key)
}
