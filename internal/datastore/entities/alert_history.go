package entities

import (
	"encoding/json"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// AlertHistory is one persisted alert occurrence. Status updates land on
// the same row as the alert moves through its lifecycle.
type AlertHistory struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AlertID     string     `gorm:"size:255;not null;uniqueIndex" json:"alert_id"`
	RuleName    string     `gorm:"size:255;not null;index" json:"rule_name"`
	Type        string     `gorm:"size:50;not null" json:"type"`
	Severity    string     `gorm:"size:20;not null" json:"severity"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	Title       string     `gorm:"size:500;not null" json:"title"`
	Description string     `gorm:"size:2000;default:''" json:"description"`
	Snapshot    string     `gorm:"type:text;default:'{}'" json:"-"`
	Tags        string     `gorm:"size:1000;default:'[]'" json:"-"`
	FiredAt     time.Time  `gorm:"not null;index" json:"fired_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	EscalatedAt *time.Time `json:"escalated_at,omitempty"`
}

// TableName returns the table name for GORM.
func (AlertHistory) TableName() string {
	return "alert_history"
}

// FromAlert converts a live alert into a history row.
func FromAlert(a *alerting.Alert) *AlertHistory {
	snap := "{}"
	if b, err := json.Marshal(a.Snapshot); err == nil {
		snap = string(b)
	}
	return &AlertHistory{
		AlertID:     a.ID,
		RuleName:    a.RuleName,
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		Status:      string(a.Status),
		Title:       a.Title,
		Description: a.Description,
		Snapshot:    snap,
		Tags:        marshalStrings(a.Tags),
		FiredAt:     a.CreatedAt,
	}
}
