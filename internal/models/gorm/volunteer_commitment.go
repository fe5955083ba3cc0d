package gorm

import (
	"time"

	"helping-hands/shiftdesk/internal/constants"
)

// VolunteerCommitment is never deleted; its status is the history.
// ShiftID carries no foreign key so removing a shift keeps the record.
type VolunteerCommitment struct {
	ID             int64                      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username       string                     `gorm:"column:username;not null;index" json:"username"`
	ShiftID        int64                      `gorm:"column:shift_id;not null;index" json:"shift_id"`
	VolunteeredAt  time.Time                  `gorm:"column:volunteered_at;not null" json:"volunteered_at"`
	Status         constants.CommitmentStatus `gorm:"column:status;type:varchar(16);not null;default:'pending';index" json:"status"`
	ApprovedAt     *time.Time                 `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ApprovedBy     *string                    `gorm:"column:approved_by" json:"approved_by,omitempty"`
	CanCancelUntil *time.Time                 `gorm:"column:can_cancel_until" json:"can_cancel_until,omitempty"`
}

// TableName specifies the table name for GORM
func (VolunteerCommitment) TableName() string {
	return "volunteer_commitments"
}
