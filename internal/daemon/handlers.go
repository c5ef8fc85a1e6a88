package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

const maxRequestBody = 64 << 10

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	// The stream is long-lived and stays outside the request timeout.
	r.Get("/v1/stream", s.handleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/v1/status", s.handleStatus)
		r.Get("/v1/forecast", s.handleForecast)
		r.Post("/v1/forecast", s.handleSubmit)
		r.Get("/v1/presets", s.handlePresets)
		r.Post("/v1/presets/{name}", s.handleApplyPreset)
		r.Get("/v1/alerts", s.handleAlerts)
		r.Get("/v1/events", s.handleEvents)
		r.Get("/v1/runs", s.handleRuns)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.Current())
}

// handleSubmit accepts either a JSON Input, applied over the current input so
// omitted fields keep their value, or a form of raw field text parsed with
// the daemon's parse mode.
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	in, err := s.decodeInput(r)
	if err != nil {
		s.mu.Lock()
		s.invalidCount++
		s.lastError = err.Error()
		s.mu.Unlock()
		s.metrics.RecordInvalidInput(r.Context(), "api")
		respondError(w, http.StatusBadRequest, "invalid forecast input", err)
		return
	}

	snap, err := s.recompute(r.Context(), "api", func() (*scenario.Snapshot, error) {
		return s.ctrl.Submit(in)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid forecast input", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Service) decodeInput(r *http.Request) (forecast.Input, error) {
	base := s.ctrl.Current().Input

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return base, fmt.Errorf("reading form: %w", err)
		}
		fields := make(map[forecast.Field]string)
		for name, vals := range r.PostForm {
			f, ok := forecast.ParseFieldName(name)
			if !ok {
				return base, fmt.Errorf("%w: unknown field %q", forecast.ErrInvalidInput, name)
			}
			if len(vals) > 0 {
				fields[f] = vals[0]
			}
		}
		return forecast.ParseInput(fields, base, s.cfg.ParseMode)
	}

	in := base
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return base, fmt.Errorf("%w: empty body", forecast.ErrInvalidInput)
		}
		return base, fmt.Errorf("%w: %v", forecast.ErrInvalidInput, err)
	}
	return in, nil
}

func (s *Service) handlePresets(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, forecast.Presets())
}

func (s *Service) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, err := s.recompute(r.Context(), "preset", func() (*scenario.Snapshot, error) {
		return s.ctrl.ApplyPreset(name)
	})
	if errors.Is(err, scenario.ErrUnknownPreset) {
		respondError(w, http.StatusNotFound, "preset not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "applying preset failed", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Service) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.currentAlerts())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, events)
}

func (s *Service) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondError(w, http.StatusNotFound, "run history is disabled", nil)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(r.Context(), r.URL.Query().Get("scenario"), limit)
	if err != nil {
		s.sentry.CaptureError(err, map[string]string{"op": "list_runs"})
		respondError(w, http.StatusInternalServerError, "listing runs failed", err)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.mu.RLock()
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.last,
	}
	s.mu.RUnlock()
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.stop:
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
