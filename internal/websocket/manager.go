package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/combochart/internal/logging"
)

const (
	pingInterval  = 54 * time.Second
	writeTimeout  = 10 * time.Second
	clientBacklog = 64
)

// Manager handles WebSocket connection management and broadcasting for the
// preview page.
//
// Architecture:
//   - Hub Pattern: one goroutine owns client registration, removal and fan-out
//   - Last frame: the most recent frame message is replayed to new clients
//   - Client messages: decoded and passed to the MessageHandler
//
// Invariants:
//   - clients map access always protected by clientsMutex
//   - client send channels are closed only by the hub goroutine
type Manager struct {
	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *websocket.Conn

	originValidator OriginValidator
	newLimiter      func() RateLimiter
	onMessage       MessageHandler
	log             logging.Logger

	lastMutex sync.RWMutex
	lastFrame []byte

	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// Options configures a Manager.
type Options struct {
	// OriginValidator is required.
	OriginValidator OriginValidator
	// MessageLimit caps client messages per MessageWindow. Zero disables it.
	MessageLimit  int
	MessageWindow time.Duration
	OnMessage     MessageHandler
	Logger        logging.Logger
}

// NewManager creates a manager and starts its hub goroutine.
//
// Panics if opts.OriginValidator is nil.
func NewManager(opts Options) *Manager {
	if opts.OriginValidator == nil {
		panic("websocket.Manager: originValidator cannot be nil")
	}
	window := opts.MessageWindow
	if window <= 0 {
		window = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		clients:         make(map[*websocket.Conn]*Client),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client, 32),
		unregister:      make(chan *websocket.Conn, 32),
		originValidator: opts.OriginValidator,
		newLimiter: func() RateLimiter {
			return NewWindowRateLimiter(opts.MessageLimit, window)
		},
		onMessage: opts.OnMessage,
		log:       logging.OrNop(opts.Logger).WithComponent("websocket"),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go m.runHub()
	return m
}

// HandleWebSocket validates the origin, upgrades the connection and
// registers the client with the hub.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if m.isShutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	remote := clientIP(r)
	if origin := r.Header.Get("Origin"); !m.originValidator.IsAllowedOrigin(origin) {
		m.log.Warn(r.Context(), nil, "WebSocket connection rejected: invalid origin",
			"origin", origin, "remote", remote)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Origins are validated above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		m.log.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", remote)
		return
	}

	client := &Client{
		conn:         conn,
		send:         make(chan []byte, clientBacklog),
		remote:       remote,
		lastActivity: time.Now(),
		rateLimiter:  m.newLimiter(),
	}

	select {
	case m.register <- client:
	case <-m.ctx.Done():
		_ = conn.Close(websocket.StatusServiceRestart, "Server shutting down")
		return
	}

	m.handleClient(client)
}

// clientIP extracts client IP from request
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (m *Manager) runHub() {
	defer close(m.done)
	for {
		select {
		case client := <-m.register:
			m.registerClient(client)

		case conn := <-m.unregister:
			m.unregisterClient(conn)

		case message := <-m.broadcast:
			m.broadcastToClients(message)

		case <-m.ctx.Done():
			m.closeAll()
			return
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client.conn] = client
	total := len(m.clients)
	m.clientsMutex.Unlock()

	m.lastMutex.RLock()
	last := m.lastFrame
	m.lastMutex.RUnlock()
	if last != nil {
		client.send <- last
	}

	m.log.Info(m.ctx, "WebSocket client connected", "remote", client.remote, "clients", total)
}

func (m *Manager) unregisterClient(conn *websocket.Conn) {
	m.clientsMutex.Lock()
	client, exists := m.clients[conn]
	if exists {
		delete(m.clients, conn)
		close(client.send)
	}
	total := len(m.clients)
	m.clientsMutex.Unlock()

	if exists {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		m.log.Info(m.ctx, "WebSocket client disconnected", "remote", client.remote, "clients", total)
	}
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()
	for conn, client := range m.clients {
		close(client.send)
		_ = conn.Close(websocket.StatusGoingAway, "Server shutdown")
	}
	m.clients = make(map[*websocket.Conn]*Client)
}

func (m *Manager) broadcastToClients(message []byte) {
	m.clientsMutex.RLock()
	var slow []*websocket.Conn
	for conn, client := range m.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, conn)
		}
	}
	m.clientsMutex.RUnlock()

	for _, conn := range slow {
		m.unregisterClient(conn)
	}
}

func (m *Manager) handleClient(client *Client) {
	defer func() {
		select {
		case m.unregister <- client.conn:
		case <-m.ctx.Done():
		}
	}()

	go m.writeToClient(client)
	m.readFromClient(client)
}

func (m *Manager) readFromClient(client *Client) {
	for {
		_, message, err := client.conn.Read(m.ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				m.log.Debug(m.ctx, "WebSocket client closed", "remote", client.remote)
			} else if m.ctx.Err() == nil {
				m.log.Debug(m.ctx, "WebSocket read ended", "remote", client.remote, "error", err.Error())
			}
			return
		}

		client.lastActivity = time.Now()
		if !client.rateLimiter.Allow() {
			m.log.Warn(m.ctx, nil, "WebSocket message rate limit exceeded", "remote", client.remote)
			_ = client.conn.Close(websocket.StatusPolicyViolation, "rate limit exceeded")
			return
		}

		m.processClientMessage(client, message)
	}
}

func (m *Manager) writeToClient(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(m.ctx, writeTimeout)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				m.log.Debug(m.ctx, "WebSocket write failed", "remote", client.remote, "error", err.Error())
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(m.ctx, writeTimeout)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				m.log.Debug(m.ctx, "WebSocket ping failed", "remote", client.remote, "error", err.Error())
				return
			}

		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) processClientMessage(client *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.reply(client, UpdateMessage{Type: MessageError, Error: fmt.Sprintf("malformed message: %v", err)})
		return
	}
	if msg.Type != MessageEvent {
		m.log.Debug(m.ctx, "Ignoring WebSocket message", "type", msg.Type, "remote", client.remote)
		return
	}
	if m.onMessage == nil {
		return
	}
	if err := m.onMessage(m.ctx, msg); err != nil {
		m.reply(client, UpdateMessage{Type: MessageError, Error: err.Error()})
	}
}

func (m *Manager) reply(client *Client, msg UpdateMessage) {
	msg.Timestamp = time.Now()
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, writeTimeout)
	defer cancel()
	if err := client.conn.Write(ctx, websocket.MessageText, data); err != nil {
		m.log.Debug(m.ctx, "WebSocket reply failed", "remote", client.remote, "error", err.Error())
	}
}

// BroadcastMessage sends a message to all connected WebSocket clients. Frame
// messages are also kept for clients that connect later.
func (m *Manager) BroadcastMessage(message UpdateMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	data, err := json.Marshal(message)
	if err != nil {
		m.log.Error(m.ctx, err, "Failed to marshal broadcast message")
		return
	}
	if message.Type == MessageFrame {
		m.lastMutex.Lock()
		m.lastFrame = data
		m.lastMutex.Unlock()
	}

	select {
	case m.broadcast <- data:
	case <-m.ctx.Done():
	default:
		m.log.Warn(m.ctx, nil, "Broadcast channel full, dropping message", "type", message.Type)
	}
}

// GetConnectedClients returns the number of connected clients
func (m *Manager) GetConnectedClients() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}

// Shutdown closes every client and stops the hub. It waits for the hub to
// exit or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.isShutdown.Store(true)
		m.cancel()
	})
	select {
	case <-m.done:
		m.log.Info(ctx, "WebSocket manager shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShutdown returns whether the WebSocket manager has been shut down
func (m *Manager) IsShutdown() bool {
	return m.isShutdown.Load()
}
