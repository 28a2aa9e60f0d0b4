package app

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type ConnectedPayload struct {
	Status string `json:"status"`
}

type UserJoinedPayload struct {
	Username string         `json:"username"`
	Room     domain.RoomKey `json:"room"`
	Count    int            `json:"count"`
}

type UserLeftPayload struct {
	Room domain.RoomKey `json:"room"`
}

type QualityUpdatePayload struct {
	Tier           domain.QualityTier   `json:"tier"`
	Sample         domain.QualitySample `json:"sample"`
	Recommendation string               `json:"recommendation"`
}

type LowDataModePayload struct {
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
	Message  string `json:"message"`
}

func (d *Dispatcher) handleJoin(sid domain.SessionID, raw json.RawMessage) []Outbound {
	p := ParsePayload(raw)
	room := p.Room()
	username := p.String("username", domain.DefaultUsername)

	count := d.Rooms.Join(room, sid, username)
	d.setState(sid, StateInRoom)
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(room)).Str("username", username).Msg("join")

	return []Outbound{d.toRoom(sid, room, EventUserJoined, UserJoinedPayload{
		Username: username,
		Room:     room,
		Count:    count,
	})}
}

func (d *Dispatcher) handleLeave(sid domain.SessionID, raw json.RawMessage) []Outbound {
	room := ParsePayload(raw).Room()

	d.Rooms.Leave(room, sid)
	if len(d.Rooms.RoomsOf(sid)) == 0 {
		d.setState(sid, StateConnected)
	}
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(room)).Msg("leave")

	return []Outbound{d.toRoom(sid, room, EventUserLeft, UserLeftPayload{Room: room})}
}

// relay forwards the payload untouched to everyone else in the room.
func (d *Dispatcher) relay(event string) HandlerFunc {
	return func(sid domain.SessionID, raw json.RawMessage) []Outbound {
		room := ParsePayload(raw).Room()
		to := d.recipients(room, sid, true)
		log.Debug().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(room)).Str("event", event).Int("peers", len(to)).Msg("relay")
		if len(to) == 0 {
			return nil
		}
		return []Outbound{{
			Event:  event,
			Data:   raw,
			Target: TargetRoomExceptSender,
			Room:   room,
			To:     to,
		}}
	}
}

func (d *Dispatcher) handleNetworkStats(sid domain.SessionID, raw json.RawMessage) []Outbound {
	if !d.Limiter.Allow(sid) {
		log.Debug().Str("module", "app.dispatch").Str("sid", string(sid)).Msg("network_stats rate limited")
		return nil
	}
	p := ParsePayload(raw)
	room := p.Room()
	sample := domain.QualitySample{
		PacketLoss: p.Float("packet_loss"),
		RTT:        p.Float("rtt"),
		Jitter:     p.Float("jitter"),
		Timestamp:  domain.UnixTime(d.now()),
		User:       sid,
	}

	size := d.Telemetry.Record(room, sample)
	tier, rec := core.Evaluate(sample)
	log.Info().
		Str("module", "app.dispatch").
		Str("room", string(room)).
		Str("tier", string(tier)).
		Float64("packet_loss", sample.PacketLoss).
		Float64("rtt", sample.RTT).
		Int("history", size).
		Msg("network stats")

	return []Outbound{d.toRoom(sid, room, EventQualityUpdate, QualityUpdatePayload{
		Tier:           tier,
		Sample:         sample,
		Recommendation: rec,
	})}
}

func (d *Dispatcher) handleLowDataMode(sid domain.SessionID, raw json.RawMessage) []Outbound {
	p := ParsePayload(raw)
	room := p.Room()
	username := p.String("username", domain.DefaultLowDataUser)
	enabled := p.Bool("enabled")

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return []Outbound{d.toRoom(sid, room, EventLowDataModeUpdate, LowDataModePayload{
		Username: username,
		Enabled:  enabled,
		Message:  fmt.Sprintf("%s %s low data mode", username, state),
	})}
}

func (d *Dispatcher) handleTranscript(sid domain.SessionID, raw json.RawMessage) []Outbound {
	p := ParsePayload(raw)
	room := p.Room()
	entry := domain.TranscriptEntry{
		Username:  p.String("username", domain.DefaultUsername),
		Text:      p.String("text", ""),
		Timestamp: d.now().Format(domain.TranscriptTimeLayout),
	}

	n := d.Transcripts.Append(room, entry)
	log.Debug().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(room)).Int("entries", n).Msg("transcript line")

	return []Outbound{d.toRoom(sid, room, EventTranscriptUpdate, entry)}
}
