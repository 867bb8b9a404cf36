package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/combochart/internal/config"
	ws "github.com/conneroisu/combochart/internal/websocket"
)

const defPath = "/charts/combo.yaml"

const comboYAML = `
title: Revenue <& cost>
xKey: m
data:
  - {m: Jan, a: 10, b: 20}
  - {m: Feb, a: 15, b: 5}
series:
  - type: bar
    dataKey: a
  - type: scatter
    dataKey: b
    yAxis: right
`

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestServer(t *testing.T, def string) (*PreviewServer, afero.Fs, *clock) {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, defPath, []byte(def), 0o644))

	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(cfg, defPath, Options{Fs: fs, Now: clk.Now})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, fs, clk
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestChartEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t, comboYAML)
	h := s.Handler()

	rec := get(t, h, "/chart.svg")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, s.Reload(context.Background()))

	rec = get(t, h, "/chart.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<svg"))
	assert.Contains(t, body, `data-key="series:a/0"`)
	assert.Contains(t, body, "Revenue &lt;&amp; cost&gt;")
}

func TestIndexPage(t *testing.T) {
	s, _, _ := newTestServer(t, comboYAML)
	require.NoError(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Revenue &lt;&amp; cost&gt;</title>")
	assert.Contains(t, body, `<div id="chart"><svg`)
	assert.Contains(t, body, `new WebSocket`)
	assert.Contains(t, body, `<pre id="problem" hidden>`)

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope").Code)
}

func TestReloadFailureKeepsScene(t *testing.T) {
	s, fs, _ := newTestServer(t, comboYAML)
	ctx := context.Background()
	require.NoError(t, s.Reload(ctx))

	require.NoError(t, afero.WriteFile(fs, defPath, []byte("series:\n  - type: pie\n"), 0o644))
	require.Error(t, s.Reload(ctx))

	rec := get(t, s.Handler(), "/chart.svg")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var h health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "degraded", h.Status)
	assert.True(t, h.Rendered)
	assert.NotEmpty(t, h.Error)

	page := get(t, s.Handler(), "/").Body.String()
	assert.NotContains(t, page, `<pre id="problem" hidden>`)
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t, comboYAML)
	require.NoError(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var h health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, defPath, h.Chart)
	assert.False(t, h.Settled)
	assert.Equal(t, 0, h.Clients)
}

func TestStepAdvancesUntilSettled(t *testing.T) {
	s, _, clk := newTestServer(t, comboYAML)
	ctx := context.Background()
	require.NoError(t, s.Reload(ctx))

	clk.Add(100 * time.Millisecond)
	msg, ok := s.step(ctx)
	require.True(t, ok)
	assert.False(t, msg.Settled)

	clk.Add(time.Second)
	msg, ok = s.step(ctx)
	require.True(t, ok)
	assert.True(t, msg.Settled)

	_, ok = s.step(ctx)
	assert.False(t, ok)
}

func TestWebSocketFramesAndEvents(t *testing.T) {
	s, _, clk := newTestServer(t, comboYAML)
	ctx := context.Background()
	require.NoError(t, s.Reload(ctx))
	clk.Add(time.Second)
	settled, ok := s.step(ctx)
	require.True(t, ok)
	s.hub.BroadcastMessage(settled)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() ws.UpdateMessage {
		readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_, data, err := conn.Read(readCtx)
		require.NoError(t, err)
		var msg ws.UpdateMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	require.Equal(t, ws.MessageFrame, first.Type)
	assert.True(t, first.Settled)
	assert.Contains(t, first.SVG, `r="5"`)

	event := `{"type":"event","event":{"kind":"hover","key":"series:b/1"}}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(event)))

	hovered := read()
	require.Equal(t, ws.MessageFrame, hovered.Type)
	s.mu.Lock()
	ref, ok := s.engine.Hovered()
	s.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "series:b/1", ref.String())

	bad := `{"type":"event","event":{"kind":"drag","key":"series:b/1"}}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(bad)))
	assert.Equal(t, ws.MessageError, read().Type)
}

func TestShutdownWithoutStart(t *testing.T) {
	s, _, _ := newTestServer(t, comboYAML)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, "localhost:8090", s.Addr())
}
