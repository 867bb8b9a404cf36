package websocket

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/combochart/internal/chart"
)

// Message types exchanged with the preview page.
const (
	MessageFrame = "frame"
	MessageError = "error"
	MessageEvent = "event"
)

// Client represents a WebSocket client connection
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	remote       string
	lastActivity time.Time
	rateLimiter  RateLimiter
}

// UpdateMessage is sent to the browser. Frame messages carry the serialized
// SVG document; error messages carry the render or load failure.
type UpdateMessage struct {
	Type      string    `json:"type"`
	SVG       string    `json:"svg,omitempty"`
	Error     string    `json:"error,omitempty"`
	Settled   bool      `json:"settled,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is received from the browser.
type ClientMessage struct {
	Type  string      `json:"type"`
	Event chart.Event `json:"event"`
}

// MessageHandler processes a decoded client message. A returned error is
// reported back to the sending client only.
type MessageHandler func(ctx context.Context, msg ClientMessage) error

// RateLimiter interface for WebSocket rate limiting
type RateLimiter interface {
	Allow() bool
	Reset()
}

// OriginValidator interface for WebSocket origin validation
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// OriginAllowList accepts same-origin requests, the configured host and
// loopback names on the server port, and any extra origins. An extra origin
// of "*" accepts everything.
type OriginAllowList struct {
	allowed map[string]struct{}
	any     bool
}

// NewOriginAllowList builds the allow list for a server listening on
// host:port.
func NewOriginAllowList(host string, port int, extra []string) *OriginAllowList {
	o := &OriginAllowList{allowed: make(map[string]struct{})}
	for _, h := range []string{host, "localhost", "127.0.0.1"} {
		if h == "" {
			continue
		}
		o.allowed[fmt.Sprintf("http://%s:%d", h, port)] = struct{}{}
	}
	for _, origin := range extra {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			o.any = true
			continue
		}
		if origin != "" {
			o.allowed[origin] = struct{}{}
		}
	}
	return o
}

// IsAllowedOrigin checks if the origin is allowed for WebSocket connections
func (o *OriginAllowList) IsAllowedOrigin(origin string) bool {
	if origin == "" || o.any {
		return true
	}
	_, ok := o.allowed[strings.TrimRight(origin, "/")]
	return ok
}

// WindowRateLimiter allows at most limit messages per fixed window.
type WindowRateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	count  int
	start  time.Time
	now    func() time.Time
}

// NewWindowRateLimiter returns a limiter; limit <= 0 disables limiting.
func NewWindowRateLimiter(limit int, window time.Duration) *WindowRateLimiter {
	return &WindowRateLimiter{limit: limit, window: window, now: time.Now}
}

// Allow implements RateLimiter.
func (r *WindowRateLimiter) Allow() bool {
	if r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.start.IsZero() || now.Sub(r.start) >= r.window {
		r.start = now
		r.count = 0
	}
	if r.count >= r.limit {
		return false
	}
	r.count++
	return true
}

// Reset implements RateLimiter.
func (r *WindowRateLimiter) Reset() {
	r.mu.Lock()
	r.count = 0
	r.start = time.Time{}
	r.mu.Unlock()
}
