package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/config"
)

// InitSQLX returns the handle used for hand-written read queries. Postgres
// gets its own lib/pq pool; sqlite shares the ORM's single connection.
func InitSQLX(cfg config.DatabaseConfig, orm *gorm.DB) (*sqlx.DB, error) {
	if cfg.Driver == "postgres" {
		var (
			db  *sqlx.DB
			err error
		)
		for i := 0; i < 10; i++ {
			db, err = sqlx.Connect("postgres", cfg.DSN)
			if err == nil {
				return db, nil
			}
			time.Sleep(500 * time.Millisecond)
		}
		return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
