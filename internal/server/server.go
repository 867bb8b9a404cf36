// Package server serves a live preview of one chart definition. The page
// receives every animation frame over a WebSocket and sends pointer events
// back to the engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/chartdef"
	"github.com/conneroisu/combochart/internal/config"
	"github.com/conneroisu/combochart/internal/engine"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/logging"
	"github.com/conneroisu/combochart/internal/svg"
	"github.com/conneroisu/combochart/internal/watcher"
	"github.com/conneroisu/combochart/internal/websocket"
)

// Options configures a PreviewServer.
type Options struct {
	Fs     afero.Fs
	Logger logging.Logger
	Now    func() time.Time
}

// PreviewServer renders one chart definition and pushes frames to the
// connected pages.
type PreviewServer struct {
	config *config.Config
	path   string
	fs     afero.Fs
	log    logging.Logger
	now    func() time.Time

	// mu guards the engine and everything derived from the last load.
	mu       sync.Mutex
	engine   *engine.Engine
	chart    *chartdef.Chart
	lastErr  error
	rendered bool

	hub     *websocket.Manager
	watcher *watcher.FileWatcher

	serverMutex  sync.RWMutex
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New creates a preview server for the definition at path.
func New(cfg *config.Config, path string, opts Options) *PreviewServer {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := logging.OrNop(opts.Logger).WithComponent("server")

	s := &PreviewServer{
		config: cfg,
		path:   path,
		fs:     opts.Fs,
		log:    log,
		now:    opts.Now,
	}
	s.engine = engine.New(engine.Options{
		Logger:     opts.Logger,
		Handlers:   eventLogger{log: log},
		Transition: cfg.Transition(),
	})
	s.hub = websocket.NewManager(websocket.Options{
		OriginValidator: websocket.NewOriginAllowList(cfg.Server.Host, cfg.Server.Port, cfg.Server.AllowedOrigins),
		MessageLimit:    120,
		MessageWindow:   time.Second,
		OnMessage:       s.handleClientMessage,
		Logger:          opts.Logger,
	})
	return s
}

// Addr is the listen address from the configuration.
func (s *PreviewServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Start loads the chart, starts the watcher and frame loop, and serves
// until ctx is cancelled or the server is shut down.
func (s *PreviewServer) Start(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		errors.NewErrorHandler(s.log).Handle(ctx, err)
	}

	if err := s.setupFileWatcher(ctx); err != nil {
		return err
	}
	go s.frameLoop(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.log.Info(ctx, "Preview server listening", "url", "http://"+s.Addr(), "definition", s.path)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.ErrorTypeNetwork, "LISTEN", "server error")
	}
	return nil
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(s.config.Watch.Debounce, s.log)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "WATCH", "failed to create file watcher")
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	if err := fw.WatchFiles(s.watchedFiles()...); err != nil {
		_ = fw.Stop()
		return errors.Wrap(err, errors.ErrorTypeIO, "WATCH", "failed to watch chart files")
	}
	fw.AddHandler(s.handleFileChange)
	s.watcher = fw
	return fw.Start(ctx)
}

func (s *PreviewServer) watchedFiles() []string {
	files := []string{s.path}
	s.mu.Lock()
	if s.chart != nil && s.chart.DataPath != "" {
		files = append(files, s.chart.DataPath)
	}
	s.mu.Unlock()
	return files
}

func (s *PreviewServer) handleFileChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, e := range events {
		s.log.Info(ctx, "Chart file changed", "path", e.Path, "type", e.Type.String())
	}
	err := s.Reload(ctx)
	if err == nil && s.watcher != nil {
		// The definition may now point at a different dataset.
		if werr := s.watcher.WatchFiles(s.watchedFiles()...); werr != nil {
			s.log.Warn(ctx, werr, "Cannot watch dataset")
		}
	}
	return err
}

// Reload reads the definition again and renders a new pass. A failed load
// keeps the previous scene and reports the error to the pages.
func (s *PreviewServer) Reload(ctx context.Context) error {
	c, err := chartdef.Open(s.fs, s.path, s.config.Defaults())
	if err == nil {
		err = c.Definition.Validate()
	}

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.hub.BroadcastMessage(websocket.UpdateMessage{
			Type:  websocket.MessageError,
			Error: errors.FormatError(err),
		})
		return err
	}

	s.chart = c
	s.lastErr = nil
	s.engine.SetTransition(c.Transition)
	_, err = s.engine.Render(ctx, c.Input, s.now())
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.hub.BroadcastMessage(websocket.UpdateMessage{Type: websocket.MessageError, Error: err.Error()})
		return err
	}
	s.rendered = true
	msg, ferr := s.frameLocked()
	s.mu.Unlock()

	if ferr != nil {
		return ferr
	}
	s.hub.BroadcastMessage(msg)
	return nil
}

// frameLocked serializes the current scene. s.mu must be held.
func (s *PreviewServer) frameLocked() (websocket.UpdateMessage, error) {
	b, err := svg.Render(s.engine.Document())
	if err != nil {
		return websocket.UpdateMessage{}, errors.WrapRender(err, errors.ErrCodeRenderFailed, "cannot serialize frame", s.path)
	}
	return websocket.UpdateMessage{
		Type:    websocket.MessageFrame,
		SVG:     string(b),
		Settled: s.engine.Settled(),
	}, nil
}

// frameLoop pushes animation frames while a transition is in flight.
func (s *PreviewServer) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if msg, ok := s.step(ctx); ok {
				s.hub.BroadcastMessage(msg)
			}
		}
	}
}

// step advances in-flight transitions and returns the new frame, if any.
func (s *PreviewServer) step(ctx context.Context) (websocket.UpdateMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rendered || s.engine.Settled() {
		return websocket.UpdateMessage{}, false
	}
	s.engine.Advance(s.now())
	msg, err := s.frameLocked()
	if err != nil {
		s.log.Error(ctx, err, "Frame failed")
		return websocket.UpdateMessage{}, false
	}
	return msg, true
}

func (s *PreviewServer) handleClientMessage(ctx context.Context, msg websocket.ClientMessage) error {
	s.mu.Lock()
	addressed, err := s.engine.Dispatch(ctx, msg.Event, s.now())
	// Only hover and leave change the scene.
	redraw := msg.Event.Kind == chart.EventLeave || (addressed && msg.Event.Kind == chart.EventHover)
	if err != nil || !redraw {
		s.mu.Unlock()
		return err
	}
	frame, err := s.frameLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.BroadcastMessage(frame)
	return nil
}

// Shutdown stops the watcher, closes every WebSocket client and shuts the
// HTTP server down.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.watcher != nil {
			err = errors.CombineErrors(err, s.watcher.Stop())
		}
		err = errors.CombineErrors(err, s.hub.Shutdown(ctx))

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			err = errors.CombineErrors(err, server.Shutdown(ctx))
		}
		s.log.Info(ctx, "Preview server stopped")
	})
	return err
}

// eventLogger reports chart interactions in the server log.
type eventLogger struct {
	log logging.Logger
}

func (h eventLogger) OnSeriesClick(s chart.Series, d chart.Datum, ev chart.Event) {
	h.log.Info(context.Background(), "Series clicked",
		"series", chart.DisplayName(s), "x", d.X, "y", d.Y, "key", ev.Key)
}

func (h eventLogger) OnSeriesHover(s chart.Series, d chart.Datum, ev chart.Event) {
	h.log.Debug(context.Background(), "Series hovered",
		"series", chart.DisplayName(s), "x", d.X, "y", d.Y, "key", ev.Key)
}
