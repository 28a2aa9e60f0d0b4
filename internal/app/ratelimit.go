package app

import (
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

// StatsLimiter caps network_stats reports per session over a sliding
// window. A nil limiter, or one with limit <= 0, allows everything.
type StatsLimiter struct {
	mu       sync.Mutex
	history  map[domain.SessionID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewStatsLimiter(limit int, interval time.Duration) *StatsLimiter {
	return &StatsLimiter{
		history:  make(map[domain.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *StatsLimiter) enabled() bool {
	return rl != nil && rl.limit > 0 && rl.interval > 0
}

func (rl *StatsLimiter) Allow(sid domain.SessionID) bool {
	if !rl.enabled() {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}
	rl.history[sid] = append(fresh, now)
	return true
}

// Forget drops the window of a disconnected session.
func (rl *StatsLimiter) Forget(sid domain.SessionID) {
	if !rl.enabled() {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, sid)
}
