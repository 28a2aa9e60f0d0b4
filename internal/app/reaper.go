package app

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Reaper removes rooms that have been empty for longer than IdleAfter,
// together with their telemetry and transcript. Rooms are kept forever
// unless a Reaper is started.
type Reaper struct {
	Rooms       *core.RoomRegistry
	Telemetry   *core.TelemetryStore
	Transcripts *core.TranscriptLog
	IdleAfter   time.Duration
	Interval    time.Duration

	now func() time.Time
}

func NewReaper(rooms *core.RoomRegistry, telemetry *core.TelemetryStore, transcripts *core.TranscriptLog, idleAfter, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		Rooms:       rooms,
		Telemetry:   telemetry,
		Transcripts: transcripts,
		IdleAfter:   idleAfter,
		Interval:    interval,
		now:         time.Now,
	}
}

// Sweep removes idle rooms once and returns their keys.
func (r *Reaper) Sweep() []domain.RoomKey {
	cutoff := r.now().Add(-r.IdleAfter)
	var reaped []domain.RoomKey
	for _, info := range r.Rooms.List() {
		if info.Participants > 0 || info.EmptySince.IsZero() || info.EmptySince.After(cutoff) {
			continue
		}
		if !r.Rooms.RemoveIdle(info.Key, cutoff, r.Telemetry.Forget, r.Transcripts.Forget) {
			continue
		}
		reaped = append(reaped, info.Key)
	}
	if len(reaped) > 0 {
		log.Info().Str("module", "app.reaper").Int("rooms", len(reaped)).Msg("reaped idle rooms")
	}
	return reaped
}

// Run sweeps every Interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) error {
	log.Info().Str("module", "app.reaper").Dur("idle_after", r.IdleAfter).Dur("interval", r.Interval).Msg("reaper started")
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopped")
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}
