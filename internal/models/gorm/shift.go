package gorm

import (
	"time"

	"helping-hands/shiftdesk/internal/constants"
)

// Shift dates and times are stored as "2006-01-02" and "15:04" strings so that
// ordering by (date, start_time) is plain lexical ordering on every dialect.
type Shift struct {
	ID        int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string                `gorm:"column:title;not null" json:"title"`
	Date      string                `gorm:"column:date;not null;index" json:"date"`
	StartTime string                `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   string                `gorm:"column:end_time;not null" json:"end_time"`
	Spots     int                   `gorm:"column:spots;not null;check:chk_shifts_spots,spots >= 0" json:"spots"`
	Capacity  int                   `gorm:"column:capacity;not null;default:0" json:"capacity"`
	Location  string                `gorm:"column:location;default:'Default Location'" json:"location"`
	Status    constants.ShiftStatus `gorm:"column:status;type:varchar(16);not null;default:'draft';index" json:"status"`
	CreatedBy string                `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Shift) TableName() string {
	return "shifts"
}
