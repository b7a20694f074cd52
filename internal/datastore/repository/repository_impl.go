package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
)

const defaultHistoryLimit = 200

type gormRepository struct {
	db *gorm.DB
}

// New creates a Repository over the given database handle.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ListRules returns rules matching the filter, ordered by name.
func (r *gormRepository) ListRules(ctx context.Context, filter RuleFilter) ([]entities.AlertRule, error) {
	var rules []entities.AlertRule
	query := r.db.WithContext(ctx)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	if filter.BuiltIn != nil {
		query = query.Where("built_in = ?", *filter.BuiltIn)
	}
	if err := query.Order("name ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert rules: %w", err)
	}
	return rules, nil
}

// GetRuleByName returns a rule, or ErrRuleNotFound.
func (r *gormRepository) GetRuleByName(ctx context.Context, name string) (*entities.AlertRule, error) {
	var rule entities.AlertRule
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get alert rule %q: %w", name, err)
	}
	return &rule, nil
}

// SaveRule inserts or replaces the rule by name.
func (r *gormRepository) SaveRule(ctx context.Context, rule *entities.AlertRule) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "type", "severity", "condition_kind", "condition_key",
			"threshold", "operand", "duration_sec", "channels", "cooldown_sec",
			"escalation_sec", "dedup_key", "tags", "enabled", "built_in", "updated_at",
		}),
	}).Create(rule).Error
	if err != nil {
		return fmt.Errorf("failed to save alert rule %q: %w", rule.Name, err)
	}
	return nil
}

// DeleteRuleByName removes the rule; false when nothing matched.
func (r *gormRepository) DeleteRuleByName(ctx context.Context, name string) (bool, error) {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&entities.AlertRule{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete alert rule %q: %w", name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetRuleEnabled toggles the enabled flag; false when nothing matched.
func (r *gormRepository) SetRuleEnabled(ctx context.Context, name string, enabled bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.AlertRule{}).
		Where("name = ?", name).Update("enabled", enabled)
	if result.Error != nil {
		return false, fmt.Errorf("failed to toggle alert rule %q: %w", name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AppendHistory inserts one fired-alert row.
func (r *gormRepository) AppendHistory(ctx context.Context, row *entities.AlertHistory) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to append alert history: %w", err)
	}
	return nil
}

// UpdateHistoryStatus records a lifecycle transition on the alert's row.
// A missing row is not an error; persistence is best-effort and the
// in-memory store remains authoritative.
func (r *gormRepository) UpdateHistoryStatus(ctx context.Context, alertID string, status alerting.Status, at time.Time) error {
	updates := map[string]any{"status": string(status)}
	switch status {
	case alerting.StatusResolved:
		updates["resolved_at"] = at
	case alerting.StatusEscalated:
		updates["escalated_at"] = at
	}
	err := r.db.WithContext(ctx).Model(&entities.AlertHistory{}).
		Where("alert_id = ?", alertID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update alert history %q: %w", alertID, err)
	}
	return nil
}

// ListHistory returns history rows matching the filter, newest first.
func (r *gormRepository) ListHistory(ctx context.Context, filter HistoryFilter) ([]entities.AlertHistory, error) {
	limit := filter.Limit
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	query := r.db.WithContext(ctx)
	if filter.RuleName != "" {
		query = query.Where("rule_name = ?", filter.RuleName)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []entities.AlertHistory
	if err := query.Order("fired_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert history: %w", err)
	}
	return rows, nil
}

// DeleteHistoryBefore purges rows fired before cutoff, returning the count.
func (r *gormRepository) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("fired_at < ?", cutoff).Delete(&entities.AlertHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old alert history: %w", result.Error)
	}
	return result.RowsAffected, nil
}
