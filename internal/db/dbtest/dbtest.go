// Package dbtest opens migrated in-memory stores for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/db"
)

// Config returns a sqlite config pointing at a private shared-cache
// in-memory database, so goroutines of one test see the same data.
func Config() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
}

// New returns a migrated *gorm.DB closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	orm, err := db.InitORM(Config())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Migrate(context.Background(), orm); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return orm
}

// NewWithSQLX returns the ORM handle plus an sqlx handle on the same connection.
func NewWithSQLX(t testing.TB) (*gorm.DB, *sqlx.DB) {
	t.Helper()

	orm := New(t)
	sx, err := db.InitSQLX(config.DatabaseConfig{Driver: "sqlite"}, orm)
	if err != nil {
		t.Fatalf("open sqlx handle: %v", err)
	}
	return orm, sx
}
