package alerting

import (
	"fmt"
	"time"
)

// Alert is one concrete, time-stamped occurrence of a rule's condition.
type Alert struct {
	ID          string    `json:"id"`
	RuleName    string    `json:"rule_name"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	EscalatedAt    *time.Time `json:"escalated_at,omitempty"`

	// Snapshot is the state map that was true when the alert fired, kept
	// for audit and debugging. Never mutated after creation.
	Snapshot Snapshot `json:"snapshot,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// newAlertID builds a globally unique identifier from the rule name and a
// monotonic timestamp.
func newAlertID(ruleName string, now time.Time) string {
	return fmt.Sprintf("%s-%d", ruleName, now.UnixNano())
}

// dedupKeyFor computes the identity used to decide whether two evaluations
// refer to the same alert: the rule's explicit key if set, otherwise
// ruleName + title.
func dedupKeyFor(rule *AlertRule, title string) string {
	if rule.DedupKey != "" {
		return rule.DedupKey
	}
	return rule.Name + "/" + title
}

// clone returns a deep copy safe to hand outside the store lock.
func (a *Alert) clone() Alert {
	out := *a
	out.Tags = append([]string(nil), a.Tags...)
	out.Snapshot = a.Snapshot.clone()
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		out.AcknowledgedAt = &t
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		out.ResolvedAt = &t
	}
	if a.EscalatedAt != nil {
		t := *a.EscalatedAt
		out.EscalatedAt = &t
	}
	return out
}

// Payload is the rendered notification document handed to channel adapters.
type Payload struct {
	AlertID     string    `json:"alert_id"`
	RuleName    string    `json:"rule_name"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Tags        []string  `json:"tags,omitempty"`
	Snapshot    Snapshot  `json:"snapshot,omitempty"`
}

// RenderPayload builds the delivery payload for the alert as it currently
// stands.
func (a *Alert) RenderPayload() *Payload {
	return &Payload{
		AlertID:     a.ID,
		RuleName:    a.RuleName,
		Type:        a.Type,
		Severity:    a.Severity,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		Timestamp:   a.CreatedAt,
		Tags:        append([]string(nil), a.Tags...),
		Snapshot:    a.Snapshot.clone(),
	}
}

// EscalationPayload derives the broadened notification sent when the alert
// is promoted: severity forced to critical and the title marked.
func (a *Alert) EscalationPayload(now time.Time) *Payload {
	p := a.RenderPayload()
	p.Severity = SeverityCritical
	p.Title = "[ESCALATED] " + p.Title
	p.Status = StatusEscalated
	p.Timestamp = now
	return p
}
