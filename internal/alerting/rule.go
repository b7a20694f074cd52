package alerting

import (
	"fmt"
	"time"
)

// Condition is a tagged comparison against one snapshot key. Kind selects
// the comparator; Threshold is used by greater_than, Operand by equals and
// not_equals, and is_false needs only the key.
type Condition struct {
	Kind      ComparatorKind `json:"kind"`
	Key       string         `json:"key"`
	Threshold float64        `json:"threshold,omitempty"`
	Operand   string         `json:"operand,omitempty"`
}

// AlertRule describes when and how to alert. The struct is treated as
// immutable configuration except for the Enabled flag, which the registry
// may toggle at runtime.
type AlertRule struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Condition   Condition `json:"condition"`

	// DurationSec is advisory: it records how long the condition should
	// logically hold before alerting is honored by policy, but the engine
	// fires on the first true evaluation at its sampling cadence and does
	// not track a sliding window.
	DurationSec int `json:"duration_seconds,omitempty"`

	Channels      []string `json:"channels"`
	CooldownSec   int      `json:"cooldown_seconds"`
	EscalationSec int      `json:"escalation_seconds"`

	// DedupKey overrides the default dedup identity (ruleName + title)
	// when set.
	DedupKey string   `json:"dedup_key,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Enabled  bool     `json:"enabled"`
}

// NewRule returns a rule with the documented defaults applied: enabled,
// 300s cooldown, 1800s escalation.
func NewRule(name string, alertType AlertType, severity Severity, cond Condition) AlertRule {
	return AlertRule{
		Name:          name,
		Type:          alertType,
		Severity:      severity,
		Condition:     cond,
		CooldownSec:   DefaultCooldownSec,
		EscalationSec: DefaultEscalationSec,
		Enabled:       true,
	}
}

// Validate checks structural constraints only. Semantic validity of the
// condition is the evaluator's concern at evaluation time so that
// registration stays non-blocking for hot reloads.
func (r *AlertRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.CooldownSec < 0 {
		return fmt.Errorf("rule %q: cooldown_seconds must not be negative", r.Name)
	}
	if r.EscalationSec < 0 {
		return fmt.Errorf("rule %q: escalation_seconds must not be negative", r.Name)
	}
	if r.DurationSec < 0 {
		return fmt.Errorf("rule %q: duration_seconds must not be negative", r.Name)
	}
	return nil
}

// Cooldown returns the creation cooldown as a duration.
func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSec) * time.Second
}

// EscalationTimeout returns the escalation timeout; zero disables escalation.
func (r *AlertRule) EscalationTimeout() time.Duration {
	return time.Duration(r.EscalationSec) * time.Second
}

// clone returns a deep copy so callers cannot mutate registry state.
func (r *AlertRule) clone() AlertRule {
	out := *r
	out.Channels = append([]string(nil), r.Channels...)
	out.Tags = append([]string(nil), r.Tags...)
	return out
}

// hasTag reports whether the rule carries the given tag.
func (r *AlertRule) hasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
