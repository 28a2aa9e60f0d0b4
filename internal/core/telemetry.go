package core

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
)

// TelemetryWindow is how many samples a room keeps.
const TelemetryWindow = 10

type telemetryHistory struct {
	mu      sync.Mutex
	samples []domain.QualitySample
}

// TelemetryStore keeps the most recent network samples per room. It is
// keyed independently of the registry; stats for a room nobody joined
// are still recorded.
type TelemetryStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*telemetryHistory
}

func NewTelemetryStore() *TelemetryStore {
	return &TelemetryStore{rooms: make(map[domain.RoomKey]*telemetryHistory)}
}

func (t *TelemetryStore) get(key domain.RoomKey) (*telemetryHistory, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.rooms[key]
	return h, ok
}

func (t *TelemetryStore) getOrCreate(key domain.RoomKey) *telemetryHistory {
	if h, ok := t.get(key); ok {
		return h
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.rooms[key]; ok {
		return h
	}
	h := &telemetryHistory{samples: make([]domain.QualitySample, 0, TelemetryWindow+1)}
	t.rooms[key] = h
	return h
}

// Record appends s and evicts from the front so at most TelemetryWindow
// samples remain. It returns the history size after the append.
func (t *TelemetryStore) Record(key domain.RoomKey, s domain.QualitySample) int {
	h := t.getOrCreate(key)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, s)
	if over := len(h.samples) - TelemetryWindow; over > 0 {
		n := copy(h.samples, h.samples[over:])
		clear(h.samples[n:])
		h.samples = h.samples[:n]
	}
	return len(h.samples)
}

// History returns the samples oldest first.
func (t *TelemetryStore) History(key domain.RoomKey) []domain.QualitySample {
	h, ok := t.get(key)
	if !ok {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.QualitySample, len(h.samples))
	copy(out, h.samples)
	return out
}

func (t *TelemetryStore) Latest(key domain.RoomKey) (domain.QualitySample, bool) {
	h, ok := t.get(key)
	if !ok {
		return domain.QualitySample{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.samples) == 0 {
		return domain.QualitySample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Forget drops the history for key.
func (t *TelemetryStore) Forget(key domain.RoomKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, key)
}
