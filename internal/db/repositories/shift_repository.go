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

type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *ShiftRepository) WithTx(tx *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: tx}
}

func (r *ShiftRepository) Create(ctx context.Context, shift *gormModels.Shift) error {
	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		return fmt.Errorf("failed to create shift: %w", err)
	}
	return nil
}

// CreateBatch inserts every shift in one statement; IDs are filled in place.
func (r *ShiftRepository) CreateBatch(ctx context.Context, shifts []gormModels.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&shifts).Error; err != nil {
		return fmt.Errorf("failed to create shift batch: %w", err)
	}
	return nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id int64) (*gormModels.Shift, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
// sqlite ignores the locking clause and relies on its single writer.
func (r *ShiftRepository) GetByIDForUpdate(ctx context.Context, id int64) (*gormModels.Shift, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// GetPublishedForUpdate is GetByIDForUpdate restricted to published shifts.
func (r *ShiftRepository) GetPublishedForUpdate(ctx context.Context, id int64) (*gormModels.Shift, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status = ?", id, constants.ShiftPublished))
}

func (r *ShiftRepository) first(ctx context.Context, q *gorm.DB) (*gormModels.Shift, error) {
	var shift gormModels.Shift
	if err := q.First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	return &shift, nil
}

// SetStatus updates the status and returns the number of rows touched.
func (r *ShiftRepository) SetStatus(ctx context.Context, id int64, status constants.ShiftStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Shift{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to set shift status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete hard-deletes the shift. Commitments referencing it stay as history.
func (r *ShiftRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.Shift{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete shift: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// TakeSpot decrements spots only while one is left. False means full.
func (r *ShiftRepository) TakeSpot(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Shift{}).
		Where("id = ? AND spots > 0", id).
		UpdateColumn("spots", gorm.Expr("spots - 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to take spot: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSpot gives a spot back. A removed shift has nothing to release.
func (r *ShiftRepository) ReleaseSpot(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Shift{}).
		Where("id = ?", id).
		UpdateColumn("spots", gorm.Expr("spots + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}
	return nil
}

// List returns shifts ordered by (date, start_time); an empty status means all.
func (r *ShiftRepository) List(ctx context.Context, status constants.ShiftStatus) ([]gormModels.Shift, error) {
	q := r.db.WithContext(ctx).Model(&gormModels.Shift{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var shifts []gormModels.Shift
	if err := q.Order("date, start_time, id").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// ListAlternatives finds other published shifts with room on the same date.
func (r *ShiftRepository) ListAlternatives(ctx context.Context, date string, excludeID int64) ([]gormModels.Shift, error) {
	var shifts []gormModels.Shift
	err := r.db.WithContext(ctx).
		Where("date = ? AND id <> ? AND status = ? AND spots > 0", date, excludeID, constants.ShiftPublished).
		Order("start_time, id").
		Find(&shifts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alternative shifts: %w", err)
	}
	return shifts, nil
}

// ActiveForVolunteer returns the shifts the volunteer holds a pending or
// approved commitment on, optionally limited to one date.
func (r *ShiftRepository) ActiveForVolunteer(ctx context.Context, username, date string) ([]gormModels.Shift, error) {
	q := r.db.WithContext(ctx).
		Table("shifts AS s").
		Select("s.*").
		Joins("JOIN volunteer_commitments vc ON vc.shift_id = s.id").
		Where("vc.username = ? AND vc.status IN ?", username, constants.ActiveCommitmentStatuses)
	if date != "" {
		q = q.Where("s.date = ?", date)
	}

	var shifts []gormModels.Shift
	if err := q.Order("s.start_time").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("failed to load active shifts for %s: %w", username, err)
	}
	return shifts, nil
}

// ListPublishedBetween feeds coverage reports. Empty bounds are open.
func (r *ShiftRepository) ListPublishedBetween(ctx context.Context, from, to, location string) ([]gormModels.Shift, error) {
	q := r.db.WithContext(ctx).Where("status = ?", constants.ShiftPublished)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var shifts []gormModels.Shift
	if err := q.Order("date, start_time, id").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("failed to list published shifts: %w", err)
	}
	return shifts, nil
}
