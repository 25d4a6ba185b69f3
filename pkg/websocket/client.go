package websocket

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"github.com/zfogg/inkwell/pkg/config"
	"github.com/zfogg/inkwell/pkg/logger"
)

// MessageType names a frame sent by the live feed.
type MessageType string

const (
	MessageTypeLikeCountUpdate     MessageType = "like_count_update"
	MessageTypeCommentAdded        MessageType = "comment_added"
	MessageTypeFollowerCountUpdate MessageType = "follower_count_update"
	MessageTypeBookmarkUpdate      MessageType = "bookmark_update"
	MessageTypeHeartbeat           MessageType = "heartbeat"
	MessageTypePong                MessageType = "pong"
	MessageTypeError               MessageType = "error"

	// MessageTypeAny subscribes to every message
	MessageTypeAny MessageType = ""
)

// Message is one frame from the server. Payload is decoded by the listener.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(m.Payload, v)
}

// TokenSource supplies the bearer token; it is read on every dial so a
// reconnect picks up a new session.
type TokenSource interface {
	Token() string
}

// Config controls dialing and reconnects.
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig points at a local server and retries forever.
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://localhost:5000/ws",
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConfigFromSettings reads ws.* settings over the defaults
func ConfigFromSettings() Config {
	cfg := DefaultConfig()
	if u := config.GetString("ws.url"); u != "" {
		cfg.URL = u
	}
	if ms := config.GetInt("ws.heartbeat_ms"); ms > 0 {
		cfg.HeartbeatInterval = time.Duration(ms) * time.Millisecond
	}
	if ms := config.GetInt("ws.reconnect_base_ms"); ms > 0 {
		cfg.ReconnectBaseDelay = time.Duration(ms) * time.Millisecond
	}
	if ms := config.GetInt("ws.reconnect_max_ms"); ms > 0 {
		cfg.ReconnectMaxDelay = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// ErrNotConnected is returned by Send between connections.
var ErrNotConnected = errors.New("websocket: not connected")

// Stats counts traffic since the client was created.
type Stats struct {
	Received   int64
	Sent       int64
	Reconnects int64
}

type listener struct {
	id int
	fn func(Message)
}

// Client keeps one live-feed connection open. After the first successful
// Connect, dropped connections are redialed with exponential backoff until
// Disconnect.
type Client struct {
	cfg    Config
	tokens TokenSource

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards conn and serializes writes to it
	mu        sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool

	lmu       sync.RWMutex
	listeners map[MessageType][]listener
	nextID    int

	received, sent, reconnects atomic.Int64
}

// NewClient creates a client. tokens may be nil for anonymous feeds.
func NewClient(cfg Config, tokens TokenSource) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:       cfg,
		tokens:    tokens,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[MessageType][]listener),
	}
}

// Connect dials once and returns the dial error, if any. On success the
// connection is served in the background.
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	logger.Debug("Live feed connected", "url", c.cfg.URL)

	c.wg.Add(1)
	go c.run(conn)
	return nil
}

// Disconnect closes the connection, stops reconnecting and waits for the
// background goroutines.
func (c *Client) Disconnect() error {
	c.cancel()
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
	return nil
}

func (c *Client) IsConnected() bool { return c.connected.Load() }

func (c *Client) Stats() Stats {
	return Stats{Received: c.received.Load(), Sent: c.sent.Load(), Reconnects: c.reconnects.Load()}
}

// On subscribes to a message type. Callbacks run on the read goroutine in
// arrival order. The returned func unsubscribes.
func (c *Client) On(msgType MessageType, fn func(Message)) func() {
	c.lmu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[msgType] = append(c.listeners[msgType], listener{id: id, fn: fn})
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		ls := c.listeners[msgType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[msgType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Send writes one frame. payload may be nil.
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = raw
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	c.sent.Add(1)
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	header := http.Header{}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}

	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	return conn, err
}

// run serves conn, then redials until the client is closed or the attempt
// limit is hit.
func (c *Client) run(conn *websocket.Conn) {
	defer c.wg.Done()
	for conn != nil {
		c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
		logger.Debug("Live feed dropped, reconnecting")
		if conn = c.redial(); conn != nil {
			c.reconnects.Add(1)
			logger.Debug("Live feed reconnected")
		}
	}
}

// serve reads frames until the connection fails.
func (c *Client) serve(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.connected.Store(true)

	stop := make(chan struct{})
	defer func() {
		close(stop)
		c.connected.Store(false)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()
	if c.cfg.HeartbeatInterval > 0 {
		go c.heartbeat(stop)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				logger.Warn("Live feed read failed", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Live feed frame dropped", "error", err)
			continue
		}
		c.received.Add(1)
		c.dispatch(msg)
	}
}

func (c *Client) heartbeat(stop <-chan struct{}) {
	t := time.NewTicker(c.cfg.HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Heartbeat failed", "error", err)
			}
		}
	}
}

func (c *Client) redial() *websocket.Conn {
	b := backoff{next: c.cfg.ReconnectBaseDelay, max: c.cfg.ReconnectMaxDelay}
	for attempt := 1; c.cfg.MaxReconnectAttempts < 0 || attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		wait := b.step()
		logger.Debug("Redialing live feed", "attempt", attempt, "wait_ms", wait.Milliseconds())
		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(wait):
		}
		conn, err := c.dial()
		if err == nil {
			return conn
		}
		logger.Debug("Redial failed", "error", err)
	}
	logger.Error("Live feed gave up reconnecting", "attempts", c.cfg.MaxReconnectAttempts)
	return nil
}

func (c *Client) dispatch(msg Message) {
	c.lmu.RLock()
	ls := append([]listener(nil), c.listeners[msg.Type]...)
	if msg.Type != MessageTypeAny {
		ls = append(ls, c.listeners[MessageTypeAny]...)
	}
	c.lmu.RUnlock()

	for _, l := range ls {
		l.fn(msg)
	}
}

// backoff doubles up to max and adds up to 50% jitter.
type backoff struct {
	next, max time.Duration
}

func (b *backoff) step() time.Duration {
	d := b.next
	if d <= 0 {
		d = time.Second
	}
	if b.max > 0 {
		b.next = min(2*d, b.max)
	} else {
		b.next = 2 * d
	}
	return d + rand.N(d/2+1)
}
