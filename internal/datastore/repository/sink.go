package repository

import (
	"context"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
)

// historySink adapts the repository to the engine's HistorySink contract.
type historySink struct {
	repo Repository
}

// NewHistorySink returns an alerting.HistorySink persisting through repo.
func NewHistorySink(repo Repository) alerting.HistorySink {
	return &historySink{repo: repo}
}

func (s *historySink) AlertFired(ctx context.Context, alert *alerting.Alert) error {
	return s.repo.AppendHistory(ctx, entities.FromAlert(alert))
}

func (s *historySink) AlertStatusChanged(ctx context.Context, alertID string, status alerting.Status, at time.Time) error {
	return s.repo.UpdateHistoryStatus(ctx, alertID, status, at)
}
