package app

import (
	"context"
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
)

func TestSessions_Lifecycle(t *testing.T) {
	s := NewSessions()
	canceled := false
	_, cancel := context.WithCancel(context.Background())
	s.Bind("s1", "client-1", &fakeConn{}, func() { canceled = true; cancel() })

	if st := s.State("s1"); st != StateConnected {
		t.Errorf("State() after Bind = %s, want connected", st)
	}
	s.SetState("s1", StateInRoom)
	if st := s.State("s1"); st != StateInRoom {
		t.Errorf("State() = %s, want in_room", st)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	if !s.Cancel("s1") || !canceled {
		t.Error("Cancel() should call the session's cancel func")
	}

	s.Unbind("s1")
	if st := s.State("s1"); st != StateTerminated {
		t.Errorf("State() after Unbind = %s, want terminated", st)
	}
	if _, ok := s.Conn("s1"); ok {
		t.Error("Conn() should miss after Unbind")
	}
	if s.Cancel("s1") {
		t.Error("Cancel() of unbound session should report false")
	}
	s.SetState("s1", StateInRoom)
	if s.Count() != 0 {
		t.Error("SetState() must not resurrect a session")
	}
}

func TestSessions_DeliverUnknownRecipient(t *testing.T) {
	s := NewSessions()
	c := &fakeConn{}
	s.Bind("s1", "", c, nil)

	res := s.Deliver(Outbound{Event: "x", Data: map[string]int{"a": 1}, To: []domain.SessionID{"gone", "s1"}})

	if res.SentTo != 1 || len(res.Dropped) != 1 || res.Dropped[0] != "gone" {
		t.Errorf("Deliver() = %+v", res)
	}
	if len(c.frames) != 1 {
		t.Errorf("s1 got %d frames, want 1", len(c.frames))
	}
}

func TestSessionState_String(t *testing.T) {
	tests := map[SessionState]string{
		StateConnected:   "connected",
		StateInRoom:      "in_room",
		StateTerminated:  "terminated",
		SessionState(42): "unknown",
	}
	for st, want := range tests {
		if got := st.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", st, got, want)
		}
	}
}

func TestSessions_CancelAll(t *testing.T) {
	s := NewSessions()
	var canceled []domain.SessionID
	for _, sid := range []domain.SessionID{"s1", "s2"} {
		s.Bind(sid, "", &fakeConn{}, func() { canceled = append(canceled, sid) })
	}
	s.Bind("s3", "", &fakeConn{}, nil)

	if n := s.CancelAll(); n != 3 {
		t.Errorf("CancelAll() = %d, want 3", n)
	}
	if len(canceled) != 2 {
		t.Errorf("cancel funcs called for %v, want s1 and s2", canceled)
	}
	if n := NewSessions().CancelAll(); n != 0 {
		t.Errorf("CancelAll() on empty table = %d", n)
	}
}

func TestTarget_String(t *testing.T) {
	tests := map[Target]string{
		TargetSender:           "sender",
		TargetRoom:             "room",
		TargetRoomExceptSender: "room_except_sender",
		Target(9):              "unknown",
	}
	for tg, want := range tests {
		if got := tg.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", tg, got, want)
		}
	}
}
