package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends errors to Sentry. The zero value is disabled and every
// method is a no-op.
type Reporter struct {
	enabled bool
}

// InitSentry configures the global Sentry client. An empty DSN returns a
// disabled reporter.
func InitSentry(dsn, environment, release string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return nil, fmt.Errorf("initializing sentry: %w", err)
	}
	return &Reporter{enabled: true}, nil
}

// Enabled reports whether errors are being sent.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// CaptureError reports err with optional string tags.
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent.
func (r *Reporter) Flush(timeout time.Duration) {
	if r.Enabled() {
		sentry.Flush(timeout)
	}
}
