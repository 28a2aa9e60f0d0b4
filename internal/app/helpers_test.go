package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// fakeConn records frames; fail makes every send error out.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   error
	closed bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := DecodeEnvelope(f)
		if err != nil {
			t.Fatalf("frame %q is not an envelope: %v", f, err)
		}
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

type testRig struct {
	d     *Dispatcher
	conns map[domain.SessionID]*fakeConn
}

var fixedNow = time.Date(2025, 3, 4, 14, 5, 6, 0, time.Local)

func newTestRig(t *testing.T, sids ...domain.SessionID) *testRig {
	t.Helper()
	sessions := NewSessions()
	d := NewDispatcher(core.NewRoomRegistry(), core.NewTelemetryStore(), core.NewTranscriptLog(), sessions, nil)
	d.now = func() time.Time { return fixedNow }
	rig := &testRig{d: d, conns: make(map[domain.SessionID]*fakeConn)}
	for _, sid := range sids {
		c := &fakeConn{}
		rig.conns[sid] = c
		sessions.Bind(sid, "", c, nil)
	}
	return rig
}

// send dispatches and delivers like the gateway does.
func (r *testRig) send(t *testing.T, sid domain.SessionID, event string, data any) []Outbound {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	outs := r.d.Dispatch(sid, event, raw)
	r.d.Sessions.DeliverAll(outs)
	return outs
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode %s data: %v", env.Event, err)
	}
	return v
}
