// Package daemon serves the live forecast over HTTP and streams recompute
// events to subscribers.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/telemetry"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventForecast = "forecast"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	ParseMode    forecast.ParseMode
}

// RunStore records forecast runs. *store.Store satisfies it.
type RunStore interface {
	RecordRun(ctx context.Context, scenarioID string, snap *scenario.Snapshot, trigger string) (*store.Run, error)
	ListRuns(ctx context.Context, scenarioID string, limit int) ([]store.Run, error)
}

// Deps are the collaborators a Service uses. Only Controller is required.
type Deps struct {
	Controller *scenario.Controller
	Alerts     *alerts.Engine
	Store      RunStore
	Metrics    telemetry.Recorder
	Sentry     *telemetry.Reporter
	Logger     *zap.Logger
}

// Brief is a compact view of a snapshot for status and event payloads.
type Brief struct {
	At            time.Time `json:"at"`
	Version       uint64    `json:"version"`
	Preset        string    `json:"preset,omitempty"`
	Runway        string    `json:"runway"`
	RunwayMonths  int       `json:"runway_months"`
	BeyondHorizon bool      `json:"beyond_horizon"`
	EndingCash    int64     `json:"ending_cash"`
	MinCash       float64   `json:"min_cash"`
	NetBurn       float64   `json:"net_burn"`
}

// Delta captures the change between two consecutive snapshots.
type Delta struct {
	RunwayMonths int     `json:"runway_months"`
	EndingCash   int64   `json:"ending_cash"`
	NetBurn      float64 `json:"net_burn"`
}

func (d Delta) isZero() bool {
	return d.RunwayMonths == 0 && d.EndingCash == 0 && d.NetBurn == 0
}

// Event is emitted whenever the forecast is recomputed.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Brief     `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Unchanged bool      `json:"unchanged,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time      `json:"started_at"`
	LastComputeAt   time.Time      `json:"last_compute_at"`
	ComputeCount    int64          `json:"compute_count"`
	InvalidCount    int64          `json:"invalid_count"`
	ParseMode       string         `json:"parse_mode"`
	Input           forecast.Input `json:"input"`
	Summary         Brief          `json:"summary"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
	AlertCount      int            `json:"alert_count"`
	StoreEnabled    bool           `json:"store_enabled"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	ctrl    *scenario.Controller
	engine  *alerts.Engine
	runs    RunStore
	metrics telemetry.Recorder
	sentry  *telemetry.Reporter
	log     *zap.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastComputeAt time.Time
	computeCount  int64
	invalidCount  int64
	lastError     string
	last          Brief
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event

	stopOnce sync.Once
	stop     chan struct{}
}

// New returns a daemon service around deps.Controller.
func New(cfg Config, deps Deps) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		ctrl:      deps.Controller,
		engine:    deps.Alerts,
		runs:      deps.Store,
		metrics:   deps.Metrics,
		sentry:    deps.Sentry,
		log:       deps.Logger.Named("daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		stop:      make(chan struct{}),
	}

	// Seed the ring with the starting snapshot so /v1/events is useful
	// before the first recompute.
	cur := s.ctrl.Current()
	s.last = briefOf(cur)
	s.lastComputeAt = cur.ComputedAt
	s.nextEventID++
	s.events = append(s.events, Event{
		ID:        s.nextEventID,
		Type:      EventSnapshot,
		Timestamp: cur.ComputedAt,
		Snapshot:  s.last,
	})

	s.ctrl.OnChange(s.onSnapshot)
	return s
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("daemon listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is canceled, then shuts down gracefully.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	server.RegisterOnShutdown(s.closeStreams)

	s.log.Info("daemon listening", zap.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("daemon shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) closeStreams() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// recompute runs fn against the controller and records the outcome.
// Invalid input leaves the current snapshot untouched.
func (s *Service) recompute(ctx context.Context, trigger string, fn func() (*scenario.Snapshot, error)) (*scenario.Snapshot, error) {
	snap, err := fn()
	if err != nil {
		s.mu.Lock()
		s.invalidCount++
		s.lastError = err.Error()
		s.mu.Unlock()
		s.metrics.RecordInvalidInput(ctx, trigger)
		s.log.Warn("rejected forecast input", zap.String("trigger", trigger), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordForecast(ctx, snap, trigger)
	if s.runs != nil {
		if _, err := s.runs.RecordRun(ctx, "", snap, trigger); err != nil {
			s.log.Error("recording forecast run", zap.Error(err))
			s.sentry.CaptureError(err, map[string]string{"op": "record_run", "trigger": trigger})
		}
	}
	return snap, nil
}

// onSnapshot is the controller observer. It publishes one event per new
// snapshot.
func (s *Service) onSnapshot(snap *scenario.Snapshot) {
	b := briefOf(snap)

	s.mu.Lock()
	delta := diffBriefs(s.last, b)
	s.last = b
	s.lastComputeAt = snap.ComputedAt
	s.computeCount++
	s.lastError = ""
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      EventForecast,
		Timestamp: snap.ComputedAt,
		Snapshot:  b,
		Delta:     delta,
		Unchanged: delta.isZero(),
	}
	s.mu.Unlock()

	s.publishEvent(ev)
	s.log.Debug("forecast recomputed",
		zap.Uint64("version", snap.Version),
		zap.String("runway", snap.RunwayText),
		zap.Int64("ending_cash", snap.Summary.EndingCash),
	)
}

func briefOf(snap *scenario.Snapshot) Brief {
	return Brief{
		At:            snap.ComputedAt,
		Version:       snap.Version,
		Preset:        snap.Preset,
		Runway:        snap.RunwayText,
		RunwayMonths:  snap.Runway.Months,
		BeyondHorizon: snap.Runway.BeyondHorizon,
		EndingCash:    snap.Summary.EndingCash,
		MinCash:       snap.Summary.MinRawCash,
		NetBurn:       snap.Summary.NetBurn,
	}
}

func diffBriefs(prev, curr Brief) Delta {
	return Delta{
		RunwayMonths: curr.RunwayMonths - prev.RunwayMonths,
		EndingCash:   curr.EndingCash - prev.EndingCash,
		NetBurn:      curr.NetBurn - prev.NetBurn,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// currentAlerts evaluates the alert rules against the current snapshot.
func (s *Service) currentAlerts() []model.Alert {
	if s.engine == nil {
		return []model.Alert{}
	}
	out, errs := s.engine.Evaluate(s.ctrl.Current())
	for _, err := range errs {
		s.log.Warn("alert rule failed", zap.Error(err))
	}
	if out == nil {
		out = []model.Alert{}
	}
	return out
}

func (s *Service) snapshotStatus() Status {
	cur := s.ctrl.Current()
	alertCount := len(s.currentAlerts())

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastComputeAt:   s.lastComputeAt,
		ComputeCount:    s.computeCount,
		InvalidCount:    s.invalidCount,
		ParseMode:       s.cfg.ParseMode.String(),
		Input:           cur.Input,
		Summary:         s.last,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		AlertCount:      alertCount,
		StoreEnabled:    s.runs != nil,
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
