// Package datastore opens the SQLite database backing rule, channel, and
// alert-history persistence.
package datastore

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
)

// Open opens (or creates) the SQLite database at path and migrates the
// alerting tables. Use ":memory:" for an ephemeral store.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&entities.AlertRule{},
		&entities.AlertHistory{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate alerting tables: %w", err)
	}
	return db, nil
}
