// Package core holds the in-memory room state: membership, network
// telemetry and transcripts. Nothing in here touches transport resources.
package core

import (
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomState is guarded by its own mutex so joins to different rooms
// never contend.
type roomState struct {
	mu           sync.Mutex
	key          domain.RoomKey
	createdAt    time.Time
	participants []domain.Participant
	emptySince   time.Time
	removed      bool
}

func (rs *roomState) info() domain.RoomInfo {
	return domain.RoomInfo{
		Key:          rs.key,
		CreatedAt:    rs.createdAt,
		Participants: len(rs.participants),
		EmptySince:   rs.emptySince,
	}
}

// RoomRegistry owns the set of rooms and their participant lists.
// Rooms are created on first join and kept after they empty out.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*roomState
	now   func() time.Time
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[domain.RoomKey]*roomState),
		now:   time.Now,
	}
}

func (r *RoomRegistry) get(key domain.RoomKey) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rooms[key]
	return rs, ok
}

func (r *RoomRegistry) getOrCreate(key domain.RoomKey) *roomState {
	if rs, ok := r.get(key); ok {
		return rs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rs, ok := r.rooms[key]; ok {
		return rs
	}
	rs := &roomState{key: key, createdAt: r.now()}
	r.rooms[key] = rs
	log.Info().Str("module", "core.registry").Str("room", string(key)).Msg("room created")
	return rs
}

func (r *RoomRegistry) snapshot() []*roomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		out = append(out, rs)
	}
	return out
}

// Join appends the participant and returns the new count. The same sid
// joining twice gets two entries.
func (r *RoomRegistry) Join(key domain.RoomKey, sid domain.SessionID, username string) int {
	for {
		rs := r.getOrCreate(key)
		rs.mu.Lock()
		if rs.removed {
			// lost a race with RemoveIdle; the key now maps to a fresh room
			rs.mu.Unlock()
			continue
		}
		rs.participants = append(rs.participants, domain.Participant{
			SID:      sid,
			Username: username,
			JoinedAt: r.now(),
		})
		rs.emptySince = time.Time{}
		count := len(rs.participants)
		rs.mu.Unlock()
		log.Info().Str("module", "core.registry").Str("room", string(key)).Str("sid", string(sid)).Int("count", count).Msg("participant joined")
		return count
	}
}

// Leave removes every entry for sid. Unknown rooms and sessions are a no-op.
func (r *RoomRegistry) Leave(key domain.RoomKey, sid domain.SessionID) {
	rs, ok := r.get(key)
	if !ok {
		return
	}
	rs.mu.Lock()
	removed := r.removeLocked(rs, sid)
	count := len(rs.participants)
	rs.mu.Unlock()
	if removed > 0 {
		log.Info().Str("module", "core.registry").Str("room", string(key)).Str("sid", string(sid)).Int("count", count).Msg("participant left")
	}
}

func (r *RoomRegistry) removeLocked(rs *roomState, sid domain.SessionID) int {
	kept := rs.participants[:0]
	for _, p := range rs.participants {
		if p.SID != sid {
			kept = append(kept, p)
		}
	}
	removed := len(rs.participants) - len(kept)
	clear(rs.participants[len(kept):])
	rs.participants = kept
	if removed > 0 && len(kept) == 0 {
		rs.emptySince = r.now()
	}
	return removed
}

// LeaveAll drops sid from every room and returns the rooms it was in.
func (r *RoomRegistry) LeaveAll(sid domain.SessionID) []domain.RoomKey {
	var left []domain.RoomKey
	for _, rs := range r.snapshot() {
		rs.mu.Lock()
		if r.removeLocked(rs, sid) > 0 {
			left = append(left, rs.key)
		}
		rs.mu.Unlock()
	}
	sortKeys(left)
	if len(left) > 0 {
		log.Info().Str("module", "core.registry").Str("sid", string(sid)).Int("rooms", len(left)).Msg("session dropped from rooms")
	}
	return left
}

func (r *RoomRegistry) ParticipantCount(key domain.RoomKey) int {
	rs, ok := r.get(key)
	if !ok {
		return 0
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.participants)
}

// Members returns a copy of the participant list in join order.
func (r *RoomRegistry) Members(key domain.RoomKey) []domain.Participant {
	rs, ok := r.get(key)
	if !ok {
		return nil
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]domain.Participant, len(rs.participants))
	copy(out, rs.participants)
	return out
}

// RoomsOf lists the rooms sid currently has at least one entry in.
func (r *RoomRegistry) RoomsOf(sid domain.SessionID) []domain.RoomKey {
	var out []domain.RoomKey
	for _, rs := range r.snapshot() {
		rs.mu.Lock()
		for _, p := range rs.participants {
			if p.SID == sid {
				out = append(out, rs.key)
				break
			}
		}
		rs.mu.Unlock()
	}
	sortKeys(out)
	return out
}

func (r *RoomRegistry) Get(key domain.RoomKey) (domain.RoomInfo, bool) {
	rs, ok := r.get(key)
	if !ok {
		return domain.RoomInfo{}, false
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.info(), true
}

// List returns every known room, empty ones included, sorted by key.
func (r *RoomRegistry) List() []domain.RoomInfo {
	rooms := r.snapshot()
	out := make([]domain.RoomInfo, 0, len(rooms))
	for _, rs := range rooms {
		rs.mu.Lock()
		out = append(out, rs.info())
		rs.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RemoveIdle deletes key if it has been empty since before cutoff. It
// reports whether the room was removed. onRemove hooks run before the
// registry lock is released, so no join can recreate key until they return.
func (r *RoomRegistry) RemoveIdle(key domain.RoomKey, cutoff time.Time, onRemove ...func(domain.RoomKey)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.rooms[key]
	if !ok {
		return false
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.participants) > 0 || rs.emptySince.IsZero() || rs.emptySince.After(cutoff) {
		return false
	}
	rs.removed = true
	delete(r.rooms, key)
	for _, fn := range onRemove {
		fn(key)
	}
	log.Info().Str("module", "core.registry").Str("room", string(key)).Msg("room removed")
	return true
}

func sortKeys(keys []domain.RoomKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
