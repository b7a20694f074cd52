// Package repository provides persistence access for alert rules and
// history.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
)

// ErrRuleNotFound is returned when a rule lookup matches nothing.
var ErrRuleNotFound = errors.New("alert rule not found")

// RuleFilter narrows ListRules results. Zero-value fields are ignored.
type RuleFilter struct {
	Type    string
	Enabled *bool
	BuiltIn *bool
}

// HistoryFilter narrows ListHistory results.
type HistoryFilter struct {
	RuleName string
	Status   string
	Limit    int
}

// Repository persists alert rules and the alert history trail.
type Repository interface {
	ListRules(ctx context.Context, filter RuleFilter) ([]entities.AlertRule, error)
	GetRuleByName(ctx context.Context, name string) (*entities.AlertRule, error)
	SaveRule(ctx context.Context, rule *entities.AlertRule) error
	DeleteRuleByName(ctx context.Context, name string) (bool, error)
	SetRuleEnabled(ctx context.Context, name string, enabled bool) (bool, error)

	AppendHistory(ctx context.Context, row *entities.AlertHistory) error
	UpdateHistoryStatus(ctx context.Context, alertID string, status alerting.Status, at time.Time) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]entities.AlertHistory, error)
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
