package alerting

import (
	"context"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// Escalator scans unresolved alerts and promotes those that have outlived
// their rule's escalation timeout. Promotion is one-shot per alert.
type Escalator struct {
	store      *Store
	registry   *Registry
	dispatcher *Dispatcher
	log        logger.Logger
}

// NewEscalator creates an escalator over the shared store, registry, and
// dispatcher.
func NewEscalator(store *Store, registry *Registry, dispatcher *Dispatcher, log logger.Logger) *Escalator {
	return &Escalator{store: store, registry: registry, dispatcher: dispatcher, log: log}
}

// CheckEscalations promotes every active or acknowledged alert whose age
// exceeds its rule's escalation timeout, dispatching the escalated payload
// to all currently enabled channels. Returns the alerts just escalated.
// Alerts whose rule has been removed or has escalation disabled are left
// alone.
func (e *Escalator) CheckEscalations(ctx context.Context, now time.Time) []Alert {
	var escalated []Alert
	for _, candidate := range e.store.escalationCandidates() {
		rule, ok := e.registry.GetRule(candidate.RuleName)
		if !ok || rule.EscalationSec <= 0 {
			continue
		}
		if now.Sub(candidate.CreatedAt) < rule.EscalationTimeout() {
			continue
		}
		// MarkEscalated re-checks state under the store lock; a concurrent
		// resolve between the scan and here makes it return false.
		if !e.store.MarkEscalated(candidate.ID, now) {
			continue
		}
		alert, ok := e.store.Get(candidate.ID)
		if !ok {
			continue
		}
		escalated = append(escalated, alert)

		e.log.Warn("alert escalated",
			logger.String("alert_id", alert.ID),
			logger.String("rule", alert.RuleName),
			logger.Duration("age", now.Sub(alert.CreatedAt)))

		payload := alert.EscalationPayload(now)
		e.dispatcher.DispatchAll(ctx, payload, alert.RuleName, now)
	}
	return escalated
}
