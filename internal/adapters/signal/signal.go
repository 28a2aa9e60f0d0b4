package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait         = 5 * time.Second
	defaultPingPeriod = 54 * time.Second
	defaultSendBuffer = 64
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.PingPeriod <= 0 {
		o.PingPeriod = defaultPingPeriod
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	return o
}

// pongWait must exceed the ping period so one lost pong is tolerated.
func (o Options) pongWait() time.Duration {
	return o.PingPeriod * 10 / 9
}

type SignalWSController struct {
	Dispatcher *app.Dispatcher
	Sessions   *app.Sessions
	opts       Options
}

func NewSignalWSController(d *app.Dispatcher, opts Options) *SignalWSController {
	log.Info().Str("module", "signal").Strs("events", d.Events()).Msg("signal controller ready")
	return &SignalWSController{
		Dispatcher: d,
		Sessions:   d.Sessions,
		opts:       opts.withDefaults(),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan app.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f app.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return app.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return app.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the session until the socket
// closes or ctx is canceled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.NewSessionID()
	client := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", client).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan app.Frame, ctl.opts.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	// Closing the socket unblocks readPump so its cleanup runs.
	stop := func() {
		cancel()
		conn.Close()
	}
	ctl.Sessions.Bind(sid, client, conn, stop)
	ctl.Sessions.DeliverAll(ctl.Dispatcher.Connect(sid))

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
