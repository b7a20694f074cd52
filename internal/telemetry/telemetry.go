// Package telemetry wires optional Sentry error reporting.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/robert1948/localstorm-sub001/internal/conf"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// Init configures the Sentry client when enabled in settings. It is a
// no-op when disabled or when no DSN is set.
func Init(settings *conf.SentrySettings, version string, log logger.Logger) error {
	if settings == nil || !settings.Enabled || settings.DSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Release:          "stormalert@" + version,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	log.Info("sentry telemetry enabled")
	return nil
}

// CaptureError reports err with a component tag. Safe to call when
// telemetry is disabled.
func CaptureError(err error, component string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		sentry.CaptureException(err)
	})
}

// Flush drains pending events before shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
