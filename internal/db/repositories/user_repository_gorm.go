package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"helping-hands/shiftdesk/internal/constants"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *UserRepositoryGORM) WithTx(tx *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: tx}
}

// GetByUsername retrieves a user row, or ErrNotFound.
func (r *UserRepositoryGORM) GetByUsername(ctx context.Context, username string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// StaffUsernames lists every manager and admin, the recipients of new-shift notices.
func (r *UserRepositoryGORM) StaffUsernames(ctx context.Context) ([]string, error) {
	var names []string

	err := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("role IN ?", []constants.Role{constants.RoleManager, constants.RoleAdmin}).
		Order("username").
		Pluck("username", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	return names, nil
}

// AddCredits increments a user's credit balance and fails when the user is gone.
func (r *UserRepositoryGORM) AddCredits(ctx context.Context, username string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("username = ?", username).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to add credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureUser inserts the user when the username is free and reports whether it did.
func (r *UserRepositoryGORM) EnsureUser(ctx context.Context, user *gormModels.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("failed to ensure user %s: %w", user.Username, res.Error)
	}
	return res.RowsAffected > 0, nil
}
