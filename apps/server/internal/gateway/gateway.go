package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gate-lite/apps/server/internal/codec"
	"gate-lite/apps/server/internal/common/clock"
	"gate-lite/apps/server/internal/common/uuid"
	"gate-lite/apps/server/internal/lobby"
	"gate-lite/apps/server/internal/table"
	"gate-lite/gate"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendQueueSize  = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Options struct {
	// A connection with no inbound message for this long is closed.
	IdleTimeout time.Duration
	IdleSweep   time.Duration
	// Ante used when a JOIN carries none.
	DefaultAnte int64
}

func DefaultOptions() Options {
	return Options{
		IdleTimeout: 180 * time.Second,
		IdleSweep:   30 * time.Second,
		DefaultAnte: gate.DefaultAnte,
	}
}

// Connection represents a WebSocket client connection. Its ID doubles as the
// session id at the table.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Gateway *Gateway
	log     logrus.FieldLogger

	send chan []byte

	mu           sync.Mutex
	framing      codec.Framing
	lastActivity time.Time
	closed       bool
	table        *table.Table
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection

	lobby *lobby.Lobby
	ids   uuid.UUID
	clock clock.Clock
	log   logrus.FieldLogger
	opts  Options

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new Gateway instance
func New(lby *lobby.Lobby, ids uuid.UUID, clk clock.Clock, logger logrus.FieldLogger, opts Options) *Gateway {
	if ids == nil {
		ids = uuid.New()
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	defaults := DefaultOptions()
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaults.IdleTimeout
	}
	if opts.IdleSweep <= 0 {
		opts.IdleSweep = defaults.IdleSweep
	}
	if opts.DefaultAnte <= 0 {
		opts.DefaultAnte = defaults.DefaultAnte
	}
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
		ids:         ids,
		clock:       clk,
		log:         logger.WithField("component", "gateway"),
		opts:        opts,
		done:        make(chan struct{}),
	}
}

// HandleWebSocket handles WebSocket upgrade and connection
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade failed")
		return
	}

	c := &Connection{
		ID:           g.ids.NewUUID(),
		Conn:         conn,
		Gateway:      g,
		send:         make(chan []byte, sendQueueSize),
		lastActivity: g.clock.Now(),
	}
	c.log = g.log.WithField("conn", c.ID)

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	c.log.WithField("total", total).Info("client connected")

	go c.readPump()
	go c.writePump()
}

// Send implements table.Subscriber. It encodes in the framing of the last
// inbound frame and never blocks: a full or closed queue drops the message.
func (c *Connection) Send(env codec.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	data, err := codec.Encode(c.framing, env)
	if err != nil {
		c.log.WithError(err).Warn("encode failed")
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend stops outbound delivery. The write pump drains what is queued,
// then closes the socket.
func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Connection) touch(framing codec.Framing) {
	c.mu.Lock()
	c.framing = framing
	c.lastActivity = c.Gateway.clock.Now()
	c.mu.Unlock()
}

func (c *Connection) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Connection) currentTable() *table.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.closeSend()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Debug("read error")
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		framing := codec.FramingText
		if messageType == websocket.BinaryMessage {
			framing = codec.FramingBinary
		}
		c.touch(framing)
		c.handleMessage(framing, message)
	}
}

func (c *Connection) handleMessage(framing codec.Framing, data []byte) {
	msg, err := codec.Decode(framing, data)
	if err != nil {
		c.log.WithError(err).Debug("frame ignored")
		return
	}

	switch msg.Type {
	case codec.TypeJoin:
		c.handleJoin(msg)
	case codec.TypeAction:
		c.handleAction(msg)
	default:
		c.log.WithField("type", msg.Type).Debug("unknown message type")
	}
}

func (c *Connection) handleJoin(msg codec.Inbound) {
	t, err := c.Gateway.lobby.QuickStart(c.ID)
	if err != nil {
		c.log.WithError(err).Warn("quick start failed")
		return
	}
	c.mu.Lock()
	c.table = t
	c.mu.Unlock()

	err = t.SubmitEvent(table.Event{
		Type:       table.EventJoin,
		SessionID:  c.ID,
		Name:       msg.Name,
		Ante:       msg.AnteOr(c.Gateway.opts.DefaultAnte),
		Subscriber: c,
	})
	if err != nil {
		c.log.WithError(err).Warn("join failed")
	}
}

func (c *Connection) handleAction(msg codec.Inbound) {
	t := c.currentTable()
	if t == nil {
		c.log.Debug("action before join")
		return
	}
	err := t.SubmitEvent(table.Event{
		Type:      table.EventAction,
		SessionID: c.ID,
		Action:    msg.ActionType(),
		Amount:    msg.Bet(),
		Choice:    msg.Choice(),
	})
	if err != nil {
		c.log.WithError(err).WithField("action", msg.Action).Debug("action rejected")
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.Conn.WriteMessage(c.messageType(), message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) messageType() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.framing == codec.FramingBinary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// removeConnection forgets the connection and takes its seat out of the
// table, which is the same path as an explicit leave.
func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	if t := c.currentTable(); t != nil {
		if err := t.SubmitEvent(table.Event{Type: table.EventLeave, SessionID: c.ID}); err != nil {
			c.log.WithError(err).Debug("leave not delivered")
		}
	}
	c.log.WithField("total", total).Info("client disconnected")
}

// ConnectionCount returns the number of open connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

// RunIdleSweeper closes idle connections every IdleSweep until ctx is done
// or the gateway is closed.
func (g *Gateway) RunIdleSweeper(ctx context.Context) {
	ticker := time.NewTicker(g.opts.IdleSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.sweepIdle(g.clock.Now())
		case <-ctx.Done():
			return
		case <-g.done:
			return
		}
	}
}

func (g *Gateway) sweepIdle(now time.Time) {
	g.mu.RLock()
	var idle []*Connection
	for _, c := range g.connections {
		if now.Sub(c.idleSince()) > g.opts.IdleTimeout {
			idle = append(idle, c)
		}
	}
	g.mu.RUnlock()

	notice := codec.Error(idleNotice(g.opts.IdleTimeout))
	for _, c := range idle {
		c.log.Info("closing idle connection")
		c.Send(notice)
		c.closeSend()
	}
}

func idleNotice(timeout time.Duration) string {
	if timeout >= time.Minute {
		return fmt.Sprintf("You have been disconnected due to inactivity (%d min).", int(timeout.Minutes()))
	}
	return fmt.Sprintf("You have been disconnected due to inactivity (%d s).", int(timeout.Seconds()))
}

// Close stops the idle sweeper and closes every connection.
func (g *Gateway) Close() {
	g.stopOnce.Do(func() { close(g.done) })

	g.mu.RLock()
	conns := make([]*Connection, 0, len(g.connections))
	for _, c := range g.connections {
		conns = append(conns, c)
	}
	g.mu.RUnlock()

	for _, c := range conns {
		c.closeSend()
	}
}
