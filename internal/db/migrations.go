package db

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/logging"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// Migration is one schema step. Steps run once, in Version order, each in
// its own transaction, and are recorded in schema_migrations.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_core_tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&gormModels.User{}, &gormModels.Shift{}, &gormModels.VolunteerCommitment{})
		},
	},
	{
		// Legacy databases predate the credits reward column.
		Version: 2,
		Name:    "users_credits_column",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasColumn(&gormModels.User{}, "Credits") {
				return nil
			}
			return tx.Migrator().AddColumn(&gormModels.User{}, "Credits")
		},
	},
	{
		Version: 3,
		Name:    "shifts_location_column",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasColumn(&gormModels.Shift{}, "Location") {
				return nil
			}
			return tx.Migrator().AddColumn(&gormModels.Shift{}, "Location")
		},
	},
	{
		// capacity = remaining spots + currently approved commitments
		Version: 4,
		Name:    "shifts_capacity_backfill",
		Up: func(tx *gorm.DB) error {
			return tx.Exec(`
				UPDATE shifts SET capacity = spots + (
					SELECT COUNT(*) FROM volunteer_commitments vc
					WHERE vc.shift_id = shifts.id AND vc.status = 'approved'
				) WHERE capacity = 0`).Error
		},
	},
	{
		Version: 5,
		Name:    "active_commitment_unique_index",
		Up: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE UNIQUE INDEX IF NOT EXISTS idx_commitments_active_pair
				ON volunteer_commitments (username, shift_id)
				WHERE status IN ('pending', 'approved')`).Error
		},
	},
}

// Migrations returns the registered steps in Version order.
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// Migrate applies every pending migration and returns how many ran.
func Migrate(ctx context.Context, db *gorm.DB) (int, error) {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&gormModels.SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var applied []gormModels.SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return 0, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	ran := 0
	for _, m := range Migrations() {
		if done[m.Version] {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&gormModels.SchemaMigration{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		logging.Info("Applied migration", "version", m.Version, "name", m.Name)
		ran++
	}

	return ran, nil
}
