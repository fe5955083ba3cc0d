package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"helping-hands/shiftdesk/internal/constants"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// PendingVolunteer is one entry of a shift's pending queue.
type PendingVolunteer struct {
	ShiftID      int64  `gorm:"column:shift_id" json:"-"`
	Username     string `gorm:"column:username" json:"username"`
	CommitmentID int64  `gorm:"column:id" json:"commitment_id"`
}

// CommitmentWithShift is a commitment joined with its shift's schedule.
// The shift columns are empty when the shift has since been removed.
type CommitmentWithShift struct {
	gormModels.VolunteerCommitment
	Title     string `gorm:"column:title" json:"title"`
	Date      string `gorm:"column:date" json:"date"`
	StartTime string `gorm:"column:start_time" json:"start_time"`
	EndTime   string `gorm:"column:end_time" json:"end_time"`
}

type CommitmentRepository struct {
	db *gorm.DB
}

func NewCommitmentRepository(db *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *CommitmentRepository) WithTx(tx *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{db: tx}
}

// Create inserts a commitment. A second active row for the same pair
// surfaces as gorm.ErrDuplicatedKey from the partial unique index.
func (r *CommitmentRepository) Create(ctx context.Context, c *gormModels.VolunteerCommitment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create commitment: %w", err)
	}
	return nil
}

func (r *CommitmentRepository) GetByID(ctx context.Context, id int64) (*gormModels.VolunteerCommitment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIDForUpdate locks the commitment row for the surrounding transaction.
func (r *CommitmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*gormModels.VolunteerCommitment, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *CommitmentRepository) first(q *gorm.DB) (*gormModels.VolunteerCommitment, error) {
	var c gormModels.VolunteerCommitment
	if err := q.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch commitment: %w", err)
	}
	return &c, nil
}

// StatusesForPair returns the status of every commitment the volunteer has
// ever held on the shift, oldest first.
func (r *CommitmentRepository) StatusesForPair(ctx context.Context, username string, shiftID int64) ([]constants.CommitmentStatus, error) {
	var statuses []constants.CommitmentStatus
	err := r.db.WithContext(ctx).
		Model(&gormModels.VolunteerCommitment{}).
		Where("username = ? AND shift_id = ?", username, shiftID).
		Order("id").
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load commitment history: %w", err)
	}
	return statuses, nil
}

// Approve moves a pending commitment to approved. False means it was no
// longer pending.
func (r *CommitmentRepository) Approve(ctx context.Context, id int64, approver string, at, cancelUntil time.Time) (bool, error) {
	return r.transition(ctx, id, constants.CommitmentPending, map[string]interface{}{
		"status":           constants.CommitmentApproved,
		"approved_by":      approver,
		"approved_at":      at,
		"can_cancel_until": cancelUntil,
	})
}

// Reject moves a pending commitment to rejected.
func (r *CommitmentRepository) Reject(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, constants.CommitmentPending, map[string]interface{}{
		"status": constants.CommitmentRejected,
	})
}

// Cancel moves an approved commitment to cancelled.
func (r *CommitmentRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, constants.CommitmentApproved, map[string]interface{}{
		"status": constants.CommitmentCancelled,
	})
}

func (r *CommitmentRepository) transition(ctx context.Context, id int64, from constants.CommitmentStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.VolunteerCommitment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update commitment %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// PendingByShift groups pending volunteers by shift id.
func (r *CommitmentRepository) PendingByShift(ctx context.Context, shiftIDs []int64) (map[int64][]PendingVolunteer, error) {
	out := make(map[int64][]PendingVolunteer)
	if len(shiftIDs) == 0 {
		return out, nil
	}

	var rows []PendingVolunteer
	err := r.db.WithContext(ctx).
		Model(&gormModels.VolunteerCommitment{}).
		Select("shift_id, username, id").
		Where("shift_id IN ? AND status = ?", shiftIDs, constants.CommitmentPending).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending commitments: %w", err)
	}

	for _, row := range rows {
		out[row.ShiftID] = append(out[row.ShiftID], row)
	}
	return out, nil
}

// ApprovedByShift groups approved usernames by shift id.
func (r *CommitmentRepository) ApprovedByShift(ctx context.Context, shiftIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string)
	if len(shiftIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ShiftID  int64
		Username string
	}
	err := r.db.WithContext(ctx).
		Model(&gormModels.VolunteerCommitment{}).
		Select("shift_id, username").
		Where("shift_id IN ? AND status = ?", shiftIDs, constants.CommitmentApproved).
		Order("username").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load approved commitments: %w", err)
	}

	for _, row := range rows {
		out[row.ShiftID] = append(out[row.ShiftID], row.Username)
	}
	return out, nil
}

// CountApproved counts approved commitments on a shift.
func (r *CommitmentRepository) CountApproved(ctx context.Context, shiftID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.VolunteerCommitment{}).
		Where("shift_id = ? AND status = ?", shiftID, constants.CommitmentApproved).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count approved commitments: %w", err)
	}
	return n, nil
}

// ListForVolunteer returns the volunteer's commitments with shift details,
// ordered by the shift's date and start time.
func (r *CommitmentRepository) ListForVolunteer(ctx context.Context, username string) ([]CommitmentWithShift, error) {
	var rows []CommitmentWithShift
	err := r.db.WithContext(ctx).
		Table("volunteer_commitments AS vc").
		Select("vc.*, COALESCE(s.title, '') AS title, COALESCE(s.date, '') AS date, " +
			"COALESCE(s.start_time, '') AS start_time, COALESCE(s.end_time, '') AS end_time").
		Joins("LEFT JOIN shifts s ON s.id = vc.shift_id").
		Where("vc.username = ?", username).
		Order("s.date, s.start_time, vc.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments for %s: %w", username, err)
	}
	return rows, nil
}
