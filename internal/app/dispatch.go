package app

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Inbound event names.
const (
	EventJoinRoom        = "join_room"
	EventLeaveRoom       = "leave_room"
	EventOffer           = "offer"
	EventAnswer          = "answer"
	EventICECandidate    = "ice_candidate"
	EventNetworkStats    = "network_stats"
	EventLowDataMode     = "low_data_mode"
	EventAudioTranscript = "audio_transcript"
)

// Outbound event names.
const (
	EventConnected         = "connected"
	EventUserJoined        = "user_joined"
	EventUserLeft          = "user_left"
	EventQualityUpdate     = "quality_update"
	EventLowDataModeUpdate = "low_data_mode_update"
	EventTranscriptUpdate  = "transcript_update"
)

// Target says how the recipients of an Outbound were chosen.
type Target int

const (
	TargetSender Target = iota
	TargetRoom
	TargetRoomExceptSender
)

func (t Target) String() string {
	switch t {
	case TargetSender:
		return "sender"
	case TargetRoom:
		return "room"
	case TargetRoomExceptSender:
		return "room_except_sender"
	default:
		return "unknown"
	}
}

// Outbound is one event to push. To is resolved from the room membership
// at the moment the triggering event was handled.
type Outbound struct {
	Event  string
	Data   any
	Target Target
	Room   domain.RoomKey
	To     []domain.SessionID
}

// HandlerFunc handles one inbound event for sid.
type HandlerFunc func(sid domain.SessionID, raw json.RawMessage) []Outbound

// Dispatcher maps inbound event names to handlers. It holds no transport
// state; callers deliver the returned Outbound values.
type Dispatcher struct {
	Rooms       *core.RoomRegistry
	Telemetry   *core.TelemetryStore
	Transcripts *core.TranscriptLog
	Sessions    *Sessions
	Limiter     *StatsLimiter

	now      func() time.Time
	handlers map[string]HandlerFunc
}

func NewDispatcher(
	rooms *core.RoomRegistry,
	telemetry *core.TelemetryStore,
	transcripts *core.TranscriptLog,
	sessions *Sessions,
	limiter *StatsLimiter,
) *Dispatcher {
	d := &Dispatcher{
		Rooms:       rooms,
		Telemetry:   telemetry,
		Transcripts: transcripts,
		Sessions:    sessions,
		Limiter:     limiter,
		now:         time.Now,
	}
	d.handlers = map[string]HandlerFunc{
		EventJoinRoom:        d.handleJoin,
		EventLeaveRoom:       d.handleLeave,
		EventOffer:           d.relay(EventOffer),
		EventAnswer:          d.relay(EventAnswer),
		EventICECandidate:    d.relay(EventICECandidate),
		EventNetworkStats:    d.handleNetworkStats,
		EventLowDataMode:     d.handleLowDataMode,
		EventAudioTranscript: d.handleTranscript,
	}
	return d
}

// Events lists the inbound events the dispatcher understands.
func (d *Dispatcher) Events() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Connect acknowledges a new connection to its sender.
func (d *Dispatcher) Connect(sid domain.SessionID) []Outbound {
	return []Outbound{{
		Event:  EventConnected,
		Data:   ConnectedPayload{Status: "Connected to signaling server"},
		Target: TargetSender,
		To:     []domain.SessionID{sid},
	}}
}

// Dispatch runs the handler for event. Unknown events yield nothing.
func (d *Dispatcher) Dispatch(sid domain.SessionID, event string, raw json.RawMessage) []Outbound {
	h, ok := d.handlers[event]
	if !ok {
		log.Warn().Str("module", "app.dispatch").Str("sid", string(sid)).Str("event", event).Msg("unknown event")
		return nil
	}
	return h(sid, raw)
}

// Disconnect drops sid from every room it is still in. Nothing is
// announced to the rooms.
func (d *Dispatcher) Disconnect(sid domain.SessionID) []domain.RoomKey {
	prev := StateTerminated
	if d.Sessions != nil {
		prev = d.Sessions.State(sid)
	}
	left := d.Rooms.LeaveAll(sid)
	d.Limiter.Forget(sid)
	d.setState(sid, StateTerminated)
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Str("from", prev.String()).Int("rooms", len(left)).Msg("disconnect")
	return left
}

func (d *Dispatcher) setState(sid domain.SessionID, st SessionState) {
	if d.Sessions != nil {
		d.Sessions.SetState(sid, st)
	}
}

// recipients returns each session in the room once, in join order.
func (d *Dispatcher) recipients(room domain.RoomKey, except domain.SessionID, excludeSender bool) []domain.SessionID {
	members := d.Rooms.Members(room)
	out := make([]domain.SessionID, 0, len(members))
	seen := make(map[domain.SessionID]struct{}, len(members))
	for _, p := range members {
		if excludeSender && p.SID == except {
			continue
		}
		if _, dup := seen[p.SID]; dup {
			continue
		}
		seen[p.SID] = struct{}{}
		out = append(out, p.SID)
	}
	return out
}

func (d *Dispatcher) toRoom(sid domain.SessionID, room domain.RoomKey, event string, data any) Outbound {
	return Outbound{
		Event:  event,
		Data:   data,
		Target: TargetRoom,
		Room:   room,
		To:     d.recipients(room, sid, false),
	}
}
