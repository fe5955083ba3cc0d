package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// SeedUser is a sample account with its plain-text password.
type SeedUser struct {
	Username string
	Password string
	Role     constants.Role
}

// SeedUsers are the development accounts created by Seed.
var SeedUsers = []SeedUser{
	{"admin", "admin123", constants.RoleAdmin},
	{"manager", "manager123", constants.RoleManager},
	{"volunteer", "volunteer123", constants.RoleVolunteer},
	{"testuser", "testpass123", constants.RoleVolunteer},
}

var seedShifts = []gormModels.Shift{
	{Title: "Morning Shift", Date: "2025-11-07", StartTime: "09:00", EndTime: "13:00", Spots: 5, Status: constants.ShiftDraft},
	{Title: "Afternoon Shift", Date: "2025-11-07", StartTime: "14:00", EndTime: "18:00", Spots: 3, Status: constants.ShiftValidated},
	{Title: "Evening Shift", Date: "2025-11-07", StartTime: "19:00", EndTime: "23:00", Spots: 4, Status: constants.ShiftPublished},
}

// SeedResult counts the rows Seed created.
type SeedResult struct {
	Users  int
	Shifts int
}

// HashPassword is the sha-256 hex digest stored in users.password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Seed inserts the sample users and shifts that are not already present.
func Seed(ctx context.Context, orm *gorm.DB) (SeedResult, error) {
	var res SeedResult

	err := orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, su := range SeedUsers {
			u := gormModels.User{Username: su.Username, Password: HashPassword(su.Password), Role: su.Role}
			q := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&u)
			if q.Error != nil {
				return fmt.Errorf("seed user %s: %w", su.Username, q.Error)
			}
			res.Users += int(q.RowsAffected)
		}

		for _, s := range seedShifts {
			shift := s
			shift.Capacity = shift.Spots
			shift.Location = constants.DefaultLocation
			shift.CreatedBy = "manager"
			var existing int64
			if err := tx.Model(&gormModels.Shift{}).
				Where("title = ? AND date = ?", shift.Title, shift.Date).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("seed shift %s: %w", shift.Title, err)
			}
			if existing > 0 {
				continue
			}
			if err := tx.Create(&shift).Error; err != nil {
				return fmt.Errorf("seed shift %s: %w", shift.Title, err)
			}
			res.Shifts++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logging.Info("Seed complete", "users_created", res.Users, "shifts_created", res.Shifts)
	return res, nil
}
