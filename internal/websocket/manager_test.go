package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/combochart/internal/chart"
)

func newTestServer(t *testing.T, opts Options) (*Manager, string) {
	t.Helper()
	if opts.OriginValidator == nil {
		opts.OriginValidator = NewOriginAllowList("localhost", 8090, nil)
	}
	m := NewManager(opts)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
		srv.Close()
	})
	return m, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) UpdateMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestNewManagerRequiresValidator(t *testing.T) {
	assert.Panics(t, func() { NewManager(Options{}) })
}

func TestBroadcastReachesClients(t *testing.T) {
	m, url := newTestServer(t, Options{})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return m.GetConnectedClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	m.BroadcastMessage(UpdateMessage{Type: MessageFrame, SVG: "<svg/>"})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageFrame, msg.Type)
	assert.Equal(t, "<svg/>", msg.SVG)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestLastFrameReplayedToNewClient(t *testing.T) {
	m, url := newTestServer(t, Options{})
	m.BroadcastMessage(UpdateMessage{Type: MessageFrame, SVG: "<svg>first</svg>"})
	m.BroadcastMessage(UpdateMessage{Type: MessageError, Error: "boom"})

	conn := dial(t, url)
	msg := readMessage(t, conn)
	assert.Equal(t, MessageFrame, msg.Type)
	assert.Equal(t, "<svg>first</svg>", msg.SVG)
}

func TestClientEventsReachHandler(t *testing.T) {
	got := make(chan ClientMessage, 1)
	_, url := newTestServer(t, Options{
		OnMessage: func(_ context.Context, msg ClientMessage) error {
			got <- msg
			return nil
		},
	})
	conn := dial(t, url)

	payload := `{"type":"event","event":{"kind":"click","key":"series:a/Feb"}}`
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, []byte(payload)))

	select {
	case msg := <-got:
		assert.Equal(t, chart.EventClick, msg.Event.Kind)
		assert.Equal(t, "series:a/Feb", msg.Event.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
}

func TestHandlerErrorRepliesToSender(t *testing.T) {
	_, url := newTestServer(t, Options{
		OnMessage: func(context.Context, ClientMessage) error {
			return errors.New("unknown event kind")
		},
	})
	conn := dial(t, url)

	payload := `{"type":"event","event":{"kind":"drag","key":"x"}}`
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, []byte(payload)))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "unknown event kind", msg.Error)
}

func TestMalformedMessage(t *testing.T) {
	_, url := newTestServer(t, Options{})
	conn := dial(t, url)

	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, []byte("{nope")))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "malformed message")
}

func TestRejectsForeignOrigin(t *testing.T) {
	_, url := newTestServer(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestShutdown(t *testing.T) {
	m, url := newTestServer(t, Options{})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return m.GetConnectedClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	assert.True(t, m.IsShutdown())
	assert.Equal(t, 0, m.GetConnectedClients())

	readCtx, readCancel := context.WithTimeout(context.Background(), time.Second)
	defer readCancel()
	_, _, err := conn.Read(readCtx)
	assert.Error(t, err)

	// A second call is a no-op.
	assert.NoError(t, m.Shutdown(ctx))
}

func TestOriginAllowList(t *testing.T) {
	tests := []struct {
		name   string
		extra  []string
		origin string
		want   bool
	}{
		{"same origin", nil, "", true},
		{"localhost", nil, "http://localhost:8090", true},
		{"loopback", nil, "http://127.0.0.1:8090", true},
		{"configured host", nil, "http://charts.internal:8090", true},
		{"other port", nil, "http://localhost:3000", false},
		{"extra", []string{"http://localhost:3000/"}, "http://localhost:3000", true},
		{"wildcard", []string{"*"}, "https://anything.example", true},
		{"foreign", nil, "http://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOriginAllowList("charts.internal", 8090, tt.extra)
			assert.Equal(t, tt.want, o.IsAllowedOrigin(tt.origin))
		})
	}
}

func TestWindowRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewWindowRateLimiter(2, time.Second)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())

	now = now.Add(time.Second)
	assert.True(t, r.Allow())

	r.Reset()
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())

	assert.True(t, NewWindowRateLimiter(0, time.Second).Allow())
}
