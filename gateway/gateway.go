// ABOUTME: Websocket connection state machine: handshake, heartbeating, identify, reconnect.
// ABOUTME: Each connection generation owns a session destroyed and recreated on reconnect.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/unicord/unicord/bus"
	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/dispatch"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/processor"
	"github.com/unicord/unicord/rest"
)

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opPresenceUpdate = 3
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

const (
	// identifyDelay is the fixed pause between HELLO and identify so
	// the heartbeat loop is established first.
	identifyDelay = 2500 * time.Millisecond

	// invalidSessionDelay is the pause before reconnecting after the
	// platform invalidates the session.
	invalidSessionDelay = 500 * time.Millisecond
)

var (
	// ErrNoHeartbeatInterval means a heartbeat was attempted before
	// HELLO delivered an interval. The connection cannot proceed.
	ErrNoHeartbeatInterval = errors.New("gateway: heartbeat interval not set")

	// ErrAlreadyConnected means Connect was called on a live
	// connection.
	ErrAlreadyConnected = errors.New("gateway: already connected")
)

// State is the connection lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingHello
	StateIdentifying
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingHello:
		return "awaiting_hello"
	case StateIdentifying:
		return "identifying"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// frame is the inbound wire shape.
type frame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  *string         `json:"t"`
}

// outbound is the sent wire shape.
type outbound struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

// Config carries the connection parameters.
type Config struct {
	Token         string
	ApplicationID string
	Prefix        string
	Intents       []Intent

	// NotFound, when set, runs for text commands that match the prefix
	// but have no registered handler.
	NotFound func(ctx context.Context, dctx *dispatch.Context, command string)
}

// session is one connection generation. It is created on socket open
// and destroyed whole on disconnect or reconnect.
type session struct {
	id   string
	conn *websocket.Conn

	// queue feeds the session's dispatch worker: handler invocations
	// start in wire-arrival order without blocking the frame loop.
	queue chan func()
	quit  chan struct{}

	writeMu sync.Mutex

	mu                sync.Mutex
	seq               int64
	heartbeatInterval time.Duration
	heartbeatTimer    *time.Timer
	identifyTimer     *time.Timer
	acked             bool
	closed            bool
}

// sequence returns the last seen sequence number, or nil before the
// first dispatch (heartbeats ack with null in that window).
func (s *session) sequence() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		return nil
	}
	return s.seq
}

// teardown stops the session's timers and closes its socket. Safe to
// call more than once.
func (s *session) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.heartbeatTimer != nil {
		s.heartbeatTimer.Stop()
	}
	if s.identifyTimer != nil {
		s.identifyTimer.Stop()
	}
	s.mu.Unlock()
	close(s.quit)
	_ = s.conn.Close()
}

// enqueue hands fn to the session's dispatch worker. A dead session
// drops the work.
func (s *session) enqueue(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.quit:
	}
}

// Gateway is the persistent connection owner.
type Gateway struct {
	cfg    Config
	api    rest.API
	caches *cache.Caches
	proc   *processor.Processor
	events *bus.Bus
	logger *slog.Logger
	dialer *websocket.Dialer

	mu     sync.Mutex
	state  State
	sess   *session
	self   *entity.User
	closed bool
}

// New wires a gateway over the given collaborators. Pass nil logger
// for default.
func New(cfg Config, api rest.API, caches *cache.Caches, proc *processor.Processor, events *bus.Bus, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:    cfg,
		api:    api,
		caches: caches,
		proc:   proc,
		events: events,
		logger: logger.With("component", "gateway"),
		dialer: websocket.DefaultDialer,
	}
}

// State reports the current connection state.
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Self returns the connection's own user once READY has arrived.
func (g *Gateway) Self() *entity.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.self
}

// Connect resolves the gateway endpoint over REST, opens the socket,
// and starts the read loop. It returns once the socket is open; the
// handshake completes asynchronously.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	if g.state != StateDisconnected {
		g.mu.Unlock()
		return ErrAlreadyConnected
	}
	g.closed = false
	g.state = StateConnecting
	g.mu.Unlock()

	endpoint, err := g.resolveEndpoint(ctx)
	if err != nil {
		g.setState(StateDisconnected)
		return fmt.Errorf("resolving gateway endpoint: %w", err)
	}

	conn, _, err := g.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		g.setState(StateDisconnected)
		return fmt.Errorf("dialing gateway: %w", err)
	}

	sess := &session{
		id:    uuid.NewString(),
		conn:  conn,
		queue: make(chan func(), 256),
		quit:  make(chan struct{}),
	}

	g.mu.Lock()
	g.sess = sess
	g.state = StateAwaitingHello
	g.mu.Unlock()

	g.logger.Info("connected to gateway", "session", sess.id)
	go g.dispatchLoop(sess)
	go g.readLoop(sess)
	return nil
}

// dispatchLoop runs queued handler invocations one at a time, in the
// order the frame loop enqueued them. It exits on session teardown.
func (g *Gateway) dispatchLoop(sess *session) {
	for {
		select {
		case <-sess.quit:
			return
		case fn := <-sess.queue:
			fn()
		}
	}
}

// Close tears the connection down deliberately; no reconnect follows.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	sess := g.sess
	g.sess = nil
	g.state = StateDisconnected
	g.mu.Unlock()
	if sess != nil {
		sess.teardown()
	}
}

// resolveEndpoint asks the REST API for the websocket URL and pins the
// protocol version and encoding.
func (g *Gateway) resolveEndpoint(ctx context.Context) (string, error) {
	raw, err := g.api.Get(ctx, "/gateway/bot")
	if err != nil {
		return "", err
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decoding gateway endpoint: %w", err)
	}
	u, err := url.Parse(body.URL)
	if err != nil {
		return "", fmt.Errorf("parsing gateway endpoint: %w", err)
	}
	q := u.Query()
	q.Set("v", "10")
	q.Set("encoding", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// readLoop handles inbound frames one at a time, in arrival order.
func (g *Gateway) readLoop(sess *session) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			sess.mu.Lock()
			deliberate := sess.closed
			sess.mu.Unlock()
			if deliberate || g.isClosed() {
				return
			}
			g.logger.Warn("gateway read failed", "session", sess.id, "err", err)
			g.reconnect(sess, 0)
			return
		}
		g.handleFrame(sess, data)
	}
}

// handleFrame runs the opcode state machine for one frame. Malformed
// JSON is logged and dropped; the connection continues.
func (g *Gateway) handleFrame(sess *session, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		g.logger.Warn("dropping malformed frame", "session", sess.id, "err", err)
		return
	}

	switch f.Op {
	case opDispatch:
		g.handleDispatch(sess, &f)
	case opHeartbeat:
		// Immediate beat requested by the platform.
		if err := g.sendHeartbeat(sess); err != nil {
			g.fail(sess, err)
		}
	case opReconnect:
		g.logger.Info("reconnect requested", "session", sess.id)
		g.reconnect(sess, 0)
	case opInvalidSession:
		g.logger.Warn("session invalidated", "session", sess.id)
		g.reconnect(sess, invalidSessionDelay)
	case opHello:
		g.handleHello(sess, f.D)
	case opHeartbeatACK:
		sess.mu.Lock()
		sess.acked = true
		sess.mu.Unlock()
	default:
		g.logger.Debug("ignoring opcode", "session", sess.id, "op", f.Op)
	}
}

// handleHello stores the heartbeat interval, starts the heartbeat
// loop, and schedules identify. An unparseable HELLO is protocol-fatal.
func (g *Gateway) handleHello(sess *session, d json.RawMessage) {
	var hello struct {
		HeartbeatInterval int64 `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(d, &hello); err != nil || hello.HeartbeatInterval <= 0 {
		g.fail(sess, fmt.Errorf("invalid HELLO payload: %v", err))
		return
	}

	interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond

	sess.mu.Lock()
	sess.heartbeatInterval = interval
	sess.acked = true
	// First beat lands inside a jittered window to spread reconnect
	// herds; the steady state is the full interval.
	sess.heartbeatTimer = time.AfterFunc(time.Duration(rand.Float64()*float64(interval)), func() {
		g.beat(sess)
	})
	sess.identifyTimer = time.AfterFunc(identifyDelay, func() {
		g.identify(sess)
	})
	sess.mu.Unlock()

	g.setState(StateIdentifying)
	g.logger.Debug("hello received", "session", sess.id, "heartbeat_interval", interval)
}

// beat sends one heartbeat and reschedules itself. A missing ack since
// the previous beat is a liveness failure and forces a reconnect.
func (g *Gateway) beat(sess *session) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	if !sess.acked {
		sess.mu.Unlock()
		g.logger.Warn("heartbeat ack missed", "session", sess.id)
		g.reconnect(sess, 0)
		return
	}
	sess.acked = false
	interval := sess.heartbeatInterval
	sess.mu.Unlock()

	if err := g.sendHeartbeat(sess); err != nil {
		g.fail(sess, err)
		return
	}

	sess.mu.Lock()
	if !sess.closed {
		sess.heartbeatTimer = time.AfterFunc(interval, func() {
			g.beat(sess)
		})
	}
	sess.mu.Unlock()
}

// sendHeartbeat emits a heartbeat carrying the current sequence.
// Attempting one with no known interval is protocol-fatal.
func (g *Gateway) sendHeartbeat(sess *session) error {
	sess.mu.Lock()
	interval := sess.heartbeatInterval
	sess.mu.Unlock()
	if interval <= 0 {
		return ErrNoHeartbeatInterval
	}
	return g.send(sess, outbound{Op: opHeartbeat, D: sess.sequence()})
}

// identify authenticates the connection: token, OR-folded intents, and
// the client properties block.
func (g *Gateway) identify(sess *session) {
	err := g.send(sess, outbound{
		Op: opIdentify,
		D: map[string]any{
			"token":   g.cfg.Token,
			"intents": combineIntents(g.cfg.Intents),
			"properties": map[string]any{
				"os":      runtime.GOOS,
				"browser": "unicord",
				"device":  "unicord",
			},
		},
	})
	if err != nil {
		g.fail(sess, fmt.Errorf("identify: %w", err))
	}
}

// SetPresence publishes a presence update on the live connection.
func (g *Gateway) SetPresence(status string, activities ...map[string]any) error {
	g.mu.Lock()
	sess := g.sess
	g.mu.Unlock()
	if sess == nil {
		return errors.New("gateway: not connected")
	}
	if activities == nil {
		activities = []map[string]any{}
	}
	return g.send(sess, outbound{
		Op: opPresenceUpdate,
		D: map[string]any{
			"since":      nil,
			"activities": activities,
			"status":     status,
			"afk":        false,
		},
	})
}

// send serializes one outbound frame. Writes are serialized per
// session.
func (g *Gateway) send(sess *session, payload outbound) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	return sess.conn.WriteJSON(payload)
}

// reconnect destroys the session and dials again after delay. Only the
// current session may trigger it; stale generations are ignored.
func (g *Gateway) reconnect(sess *session, delay time.Duration) {
	g.mu.Lock()
	if g.sess != sess || g.closed {
		g.mu.Unlock()
		return
	}
	g.sess = nil
	g.state = StateDisconnected
	g.mu.Unlock()

	sess.teardown()

	if delay > 0 {
		time.Sleep(delay)
	}
	if g.isClosed() {
		return
	}
	if err := g.Connect(context.Background()); err != nil {
		g.logger.Error("reconnect failed", "err", err)
	}
}

// fail is a protocol-fatal stop: teardown with no retry. A stale
// generation only tears itself down; the live connection's state is
// untouched.
func (g *Gateway) fail(sess *session, err error) {
	g.logger.Error("gateway failure", "session", sess.id, "err", err)
	g.mu.Lock()
	if g.sess != sess {
		g.mu.Unlock()
		sess.teardown()
		return
	}
	g.sess = nil
	g.state = StateDisconnected
	g.mu.Unlock()
	sess.teardown()
}

func (g *Gateway) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

func (g *Gateway) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
