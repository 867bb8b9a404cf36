package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/svg"
	"github.com/conneroisu/combochart/internal/version"
)

// Handler returns the preview routes wrapped in the server middleware.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/chart.svg", s.handleChart)
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.addMiddleware(mux)
}

func (s *PreviewServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.log.Debug(r.Context(), "Request served",
			"method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

// snapshot returns the current frame and the last load error.
func (s *PreviewServer) snapshot() ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := s.path
	if s.chart != nil && s.chart.Input.Title != "" {
		title = s.chart.Input.Title
	}
	if !s.rendered {
		return nil, title, s.lastErr
	}
	b, err := svg.Render(s.engine.Document())
	if err != nil {
		return nil, title, err
	}
	return b, title, s.lastErr
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, title, loadErr := s.snapshot()
	var problem string
	if loadErr != nil {
		problem = errors.FormatError(loadErr)
	}
	templ.Handler(page(title, templ.Raw(string(frame)), problem)).ServeHTTP(w, r)
}

func (s *PreviewServer) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, _, err := s.snapshot()
	if frame == nil {
		msg := "chart not rendered"
		if err != nil {
			msg = errors.FormatError(err)
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", svg.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(frame); err != nil {
		s.log.Debug(r.Context(), "Failed to write chart", "error", err.Error())
	}
}

type health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Chart     string    `json:"chart"`
	Rendered  bool      `json:"rendered"`
	Settled   bool      `json:"settled"`
	Clients   int       `json:"clients"`
	Error     string    `json:"error,omitempty"`
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	h := health{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.GetShortVersion(),
		Chart:     s.path,
		Rendered:  s.rendered,
		Settled:   s.engine.Settled(),
	}
	if s.lastErr != nil {
		h.Status = "degraded"
		h.Error = s.lastErr.Error()
	}
	s.mu.Unlock()
	h.Clients = s.hub.GetConnectedClients()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		s.log.Debug(r.Context(), "Failed to encode health response", "error", err.Error())
	}
}
