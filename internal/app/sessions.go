package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
	ErrUnknownSession   = errors.New("unknown session")
)

// SignalConnection abstracts the messaging transport of one session.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

type SessionState int

const (
	StateConnected SessionState = iota
	StateInRoom
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type sessionEntry struct {
	conn   SignalConnection
	state  SessionState
	client string
	cancel context.CancelFunc
}

// Sessions maps session ids to their live connection.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[domain.SessionID]*sessionEntry)}
}

// Bind registers a freshly connected session. client is the browser token
// used for log correlation and may be empty.
func (s *Sessions) Bind(sid domain.SessionID, client string, conn SignalConnection, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = &sessionEntry{conn: conn, state: StateConnected, client: client, cancel: cancel}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("client", client).Msg("bound session")
}

// Unbind marks the session terminated and forgets it.
func (s *Sessions) Unbind(sid domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sid]; ok {
		e.state = StateTerminated
		delete(s.sessions, sid)
		log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
	}
}

func (s *Sessions) Conn(sid domain.SessionID) (SignalConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.sessions[sid]; ok {
		return e.conn, true
	}
	return nil, false
}

// State reports StateTerminated for sessions that are not bound.
func (s *Sessions) State(sid domain.SessionID) SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.sessions[sid]; ok {
		return e.state
	}
	return StateTerminated
}

func (s *Sessions) SetState(sid domain.SessionID, st SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sid]
	if !ok || e.state == st {
		return
	}
	log.Debug().Str("module", "app.sessions").Str("sid", string(sid)).Str("from", e.state.String()).Str("to", st.String()).Msg("session state")
	e.state = st
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cancel stops the session's pumps. It reports whether sid was bound.
func (s *Sessions) Cancel(sid domain.SessionID) bool {
	s.mu.RLock()
	e, ok := s.sessions[sid]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// CancelAll stops every bound session and returns how many were canceled.
func (s *Sessions) CancelAll() int {
	s.mu.RLock()
	sids := make([]domain.SessionID, 0, len(s.sessions))
	for sid := range s.sessions {
		sids = append(sids, sid)
	}
	s.mu.RUnlock()

	n := 0
	for _, sid := range sids {
		if s.Cancel(sid) {
			n++
		}
	}
	return n
}

// PublishResult reports delivery of one outbound event.
type PublishResult struct {
	SentTo  int
	Dropped []domain.SessionID
}

// Deliver encodes o once and sends it to every recipient. A failing
// recipient is recorded and skipped; the rest still get the frame.
func (s *Sessions) Deliver(o Outbound) PublishResult {
	res := PublishResult{}
	if len(o.To) == 0 {
		return res
	}
	frame, err := EncodeEnvelope(o.Event, o.Data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.sessions").Str("event", o.Event).Msg("encode outbound")
		return res
	}
	for _, sid := range o.To {
		if err := s.send(sid, frame); err != nil {
			log.Warn().Err(err).Str("module", "app.sessions").Str("event", o.Event).Str("sid", string(sid)).Msg("delivery failed")
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.sessions").Str("event", o.Event).Str("target", o.Target.String()).Str("room", string(o.Room)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// DeliverAll delivers outs in order.
func (s *Sessions) DeliverAll(outs []Outbound) {
	for _, o := range outs {
		s.Deliver(o)
	}
}

func (s *Sessions) send(sid domain.SessionID, f Frame) error {
	conn, ok := s.Conn(sid)
	if !ok {
		return ErrUnknownSession
	}
	return conn.TrySend(f)
}
