package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/daemon"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

func startDaemon(t *testing.T, cfg daemon.Config) *Client {
	t.Helper()
	ctrl, err := scenario.NewFromPreset(forecast.DefaultPreset, forecast.DefaultHorizon)
	require.NoError(t, err)
	engine, err := alerts.NewEngine(alerts.DefaultRules())
	require.NoError(t, err)

	svc := daemon.New(cfg, daemon.Deps{Controller: ctrl, Alerts: engine})
	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	return c
}

func TestNewNormalizesAddress(t *testing.T) {
	c, err := New("127.0.0.1:8787")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8787", c.BaseURL())

	c, err = New("https://runway.local/")
	require.NoError(t, err)
	assert.Equal(t, "https://runway.local", c.BaseURL())

	_, err = New("  ")
	assert.Error(t, err)
}

func TestClientAgainstDaemon(t *testing.T) {
	c := startDaemon(t, daemon.Config{})
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12+ months", st.Summary.Runway)

	snap, err := c.Forecast(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Points, 12)
	assert.Equal(t, int64(465700), snap.Points[0].CashBalance)

	in := forecast.Input{StartingCash: 100000, MonthlyExpenses: 10000, HorizonMonths: 12}
	snap, err = c.Submit(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "8 months", snap.RunwayText)

	got, err := c.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "runway-short", got[0].ID)

	snap, err = c.ApplyPreset(ctx, "conservative")
	require.NoError(t, err)
	assert.Equal(t, "conservative", snap.Preset)

	presets, err := c.Presets(ctx)
	require.NoError(t, err)
	assert.Len(t, presets, 3)

	events, err := c.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestClientErrorsAreTyped(t *testing.T) {
	c := startDaemon(t, daemon.Config{})
	ctx := context.Background()

	_, err := c.Submit(ctx, forecast.Input{HorizonMonths: 0})
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "invalid forecast input")

	_, err = c.ApplyPreset(ctx, "moonshot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitFieldsUsesDaemonParseMode(t *testing.T) {
	ctx := context.Background()
	fields := map[forecast.Field]string{forecast.FieldExpenses: "12k"}

	strict := startDaemon(t, daemon.Config{ParseMode: forecast.Strict})
	_, err := strict.SubmitFields(ctx, fields)
	assert.ErrorIs(t, err, ErrBadRequest)

	lenient := startDaemon(t, daemon.Config{ParseMode: forecast.Lenient})
	snap, err := lenient.SubmitFields(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, 12.0, snap.Input.MonthlyExpenses)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetry(5, time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetry(5, time.Millisecond))
	require.NoError(t, err)
	err = c.Health(context.Background())
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnreachableDaemon(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr, WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	_, err = c.Status(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	err = c.Health(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}
