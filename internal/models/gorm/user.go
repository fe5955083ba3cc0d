package gorm

import (
	"time"

	"helping-hands/shiftdesk/internal/constants"
)

// User rows are owned by the identity subsystem. Only Role and Credits are
// touched by the shift lifecycle; the remaining columns belong to login,
// lockout and OTP handling.
type User struct {
	Username    string         `gorm:"column:username;primaryKey"`
	Password    string         `gorm:"column:password;not null"`
	Role        constants.Role `gorm:"column:role;type:varchar(16);not null;check:chk_users_role,role IN ('admin','manager','volunteer')"`
	Attempts    int            `gorm:"column:attempts;default:0"`
	LockedUntil *time.Time     `gorm:"column:locked_until"`
	OTP         *string        `gorm:"column:otp"`
	OTPExpires  *time.Time     `gorm:"column:otp_expires"`
	Credits     int            `gorm:"column:credits;not null;default:0"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
