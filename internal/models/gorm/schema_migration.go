package gorm

import "time"

type SchemaMigration struct {
	Version   int       `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
