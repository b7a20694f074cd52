package main

import (
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// auditLog writes audit events to the structured log under a dedicated
// component attribute. It stands in for an external audit trail.
type auditLog struct {
	log logger.Logger
}

func newAuditLog(log logger.Logger) *auditLog {
	return &auditLog{log: log.With(logger.String("component", "audit"))}
}

func (a *auditLog) LogEvent(eventType, component, status string, metadata map[string]any) error {
	fields := []logger.Field{
		logger.String("event", eventType),
		logger.String("source", component),
		logger.String("status", status),
	}
	for k, v := range metadata {
		fields = append(fields, logger.Any(k, v))
	}
	a.log.Info("audit event", fields...)
	return nil
}
