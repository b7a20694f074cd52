package datastore

import (
	"context"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/datastore/repository"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

const (
	cleanupInterval = 1 * time.Hour
	cleanupTimeout  = 5 * time.Second
)

// StartRetentionCleanup launches a goroutine that periodically deletes
// history rows older than retentionDays. A value <= 0 disables cleanup.
// The goroutine exits when ctx is cancelled.
func StartRetentionCleanup(ctx context.Context, repo repository.Repository, retentionDays int, log logger.Logger) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retentionDays)
				cleanupCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
				deleted, err := repo.DeleteHistoryBefore(cleanupCtx, cutoff)
				cancel()
				if err != nil {
					log.Error("alert history cleanup failed", logger.Error(err))
				} else if deleted > 0 {
					log.Info("alert history cleanup completed",
						logger.Int64("deleted", deleted),
						logger.Int("retention_days", retentionDays))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
