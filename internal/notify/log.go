// Package notify provides the channel adapter implementations: log sink,
// webhook, email, Slack, MQTT, and shoutrrr push. Each adapter delivers one
// rendered payload to one medium; enablement and rate limiting live on the
// channel registry, not here.
package notify

import (
	"context"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// LogAdapter writes notifications to the structured log. Always available,
// no external dependency.
type LogAdapter struct {
	name string
	log  logger.Logger
}

// NewLogAdapter creates a log-sink adapter.
func NewLogAdapter(name string, log logger.Logger) *LogAdapter {
	return &LogAdapter{name: name, log: log}
}

func (a *LogAdapter) Name() string { return a.name }

// Send logs the payload at a level matching its severity.
func (a *LogAdapter) Send(_ context.Context, p *alerting.Payload) error {
	fields := []logger.Field{
		logger.String("alert_id", p.AlertID),
		logger.String("rule", p.RuleName),
		logger.String("severity", string(p.Severity)),
		logger.String("type", string(p.Type)),
		logger.String("title", p.Title),
		logger.String("status", string(p.Status)),
	}
	if p.Severity.AtLeast(alerting.SeverityError) {
		a.log.Error("ALERT: "+p.Description, fields...)
	} else {
		a.log.Warn("ALERT: "+p.Description, fields...)
	}
	return nil
}
