// Package entities defines the GORM models persisted by the alerting
// datastore.
package entities

import (
	"encoding/json"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// AlertRule is the persisted form of an alerting rule.
type AlertRule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description   string    `gorm:"size:1000;default:''" json:"description"`
	Type          string    `gorm:"size:50;not null;index" json:"type"`
	Severity      string    `gorm:"size:20;not null" json:"severity"`
	ConditionKind string    `gorm:"size:30;not null" json:"condition_kind"`
	ConditionKey  string    `gorm:"size:100;not null" json:"condition_key"`
	Threshold     float64   `gorm:"default:0" json:"threshold"`
	Operand       string    `gorm:"size:255;default:''" json:"operand"`
	DurationSec   int       `gorm:"default:0" json:"duration_seconds"`
	Channels      string    `gorm:"size:1000;default:'[]'" json:"-"`
	CooldownSec   int       `gorm:"not null;default:300" json:"cooldown_seconds"`
	EscalationSec int       `gorm:"not null;default:1800" json:"escalation_seconds"`
	DedupKey      string    `gorm:"size:255;default:''" json:"dedup_key"`
	Tags          string    `gorm:"size:1000;default:'[]'" json:"-"`
	Enabled       bool      `gorm:"not null;index" json:"enabled"`
	BuiltIn       bool      `gorm:"not null;default:false" json:"built_in"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (AlertRule) TableName() string {
	return "alert_rules"
}

// FromRule converts a live rule into its persisted form.
func FromRule(r *alerting.AlertRule, builtIn bool) *AlertRule {
	return &AlertRule{
		Name:          r.Name,
		Description:   r.Description,
		Type:          string(r.Type),
		Severity:      string(r.Severity),
		ConditionKind: string(r.Condition.Kind),
		ConditionKey:  r.Condition.Key,
		Threshold:     r.Condition.Threshold,
		Operand:       r.Condition.Operand,
		DurationSec:   r.DurationSec,
		Channels:      marshalStrings(r.Channels),
		CooldownSec:   r.CooldownSec,
		EscalationSec: r.EscalationSec,
		DedupKey:      r.DedupKey,
		Tags:          marshalStrings(r.Tags),
		Enabled:       r.Enabled,
		BuiltIn:       builtIn,
	}
}

// ToRule converts the persisted form back into a live rule.
func (e *AlertRule) ToRule() alerting.AlertRule {
	return alerting.AlertRule{
		Name:        e.Name,
		Description: e.Description,
		Type:        alerting.AlertType(e.Type),
		Severity:    alerting.Severity(e.Severity),
		Condition: alerting.Condition{
			Kind:      alerting.ComparatorKind(e.ConditionKind),
			Key:       e.ConditionKey,
			Threshold: e.Threshold,
			Operand:   e.Operand,
		},
		DurationSec:   e.DurationSec,
		Channels:      unmarshalStrings(e.Channels),
		CooldownSec:   e.CooldownSec,
		EscalationSec: e.EscalationSec,
		DedupKey:      e.DedupKey,
		Tags:          unmarshalStrings(e.Tags),
		Enabled:       e.Enabled,
	}
}

func marshalStrings(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
