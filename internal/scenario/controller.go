// Package scenario owns the current forecast input together with the
// projection computed from it. Every change replaces the pair wholesale.
package scenario

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
)

// ErrUnknownPreset is returned when a preset name does not match any
// built-in preset.
var ErrUnknownPreset = errors.New("unknown preset")

// Snapshot is an immutable (input, forecast) pair. Callers must not modify
// the Points slice.
type Snapshot struct {
	Input      forecast.Input   `json:"input"`
	Points     []forecast.Point `json:"points"`
	Runway     forecast.Runway  `json:"runway"`
	RunwayText string           `json:"runway_text"`
	Summary    forecast.Summary `json:"summary"`
	// Preset is the name of the preset the input came from, or empty after
	// manual edits.
	Preset     string    `json:"preset,omitempty"`
	Version    uint64    `json:"version"`
	ComputedAt time.Time `json:"computed_at"`
}

// Compute projects in and builds a snapshot from the result.
func Compute(in forecast.Input, preset string) (*Snapshot, error) {
	points, err := forecast.Project(in)
	if err != nil {
		return nil, err
	}
	r := forecast.EstimateRunway(points)
	return &Snapshot{
		Input:      in,
		Points:     points,
		Runway:     r,
		RunwayText: r.String(),
		Summary:    forecast.Summarize(in, points),
		Preset:     preset,
		ComputedAt: time.Now(),
	}, nil
}

// Controller holds the most recent snapshot. Updates are last-write-wins:
// each one computes a complete new snapshot and swaps it in atomically.
type Controller struct {
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64

	mu        sync.Mutex
	observers []func(*Snapshot)
}

// New creates a controller seeded with in.
func New(in forecast.Input) (*Controller, error) {
	return newController(in, "")
}

// NewFromPreset creates a controller seeded with a named preset.
func NewFromPreset(name string, horizon int) (*Controller, error) {
	p, ok := forecast.PresetByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return newController(p.Apply(horizon), p.Name)
}

func newController(in forecast.Input, preset string) (*Controller, error) {
	s, err := Compute(in, preset)
	if err != nil {
		return nil, err
	}
	c := &Controller{}
	s.Version = c.version.Add(1)
	c.cur.Store(s)
	return c, nil
}

// Current returns the latest snapshot.
func (c *Controller) Current() *Snapshot {
	return c.cur.Load()
}

// Submit replaces the input with in. An invalid input leaves the current
// snapshot in place.
func (c *Controller) Submit(in forecast.Input) (*Snapshot, error) {
	return c.replace(in, "")
}

// ApplyPreset overwrites every numeric field with the named preset while
// keeping the current horizon. Applying the same preset twice yields the
// same projection.
func (c *Controller) ApplyPreset(name string) (*Snapshot, error) {
	p, ok := forecast.PresetByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return c.replace(p.Apply(c.Current().Input.HorizonMonths), p.Name)
}

// SetHorizon recomputes the current input over a new horizon.
func (c *Controller) SetHorizon(months int) (*Snapshot, error) {
	cur := c.Current()
	in := cur.Input
	in.HorizonMonths = months
	return c.replace(in, cur.Preset)
}

// OnChange registers fn to be called with every new snapshot. Observers run
// synchronously on the goroutine that made the change.
func (c *Controller) OnChange(fn func(*Snapshot)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

func (c *Controller) replace(in forecast.Input, preset string) (*Snapshot, error) {
	s, err := Compute(in, preset)
	if err != nil {
		return nil, err
	}
	s.Version = c.version.Add(1)
	c.cur.Store(s)

	c.mu.Lock()
	obs := make([]func(*Snapshot), len(c.observers))
	copy(obs, c.observers)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(s)
	}
	return s, nil
}
