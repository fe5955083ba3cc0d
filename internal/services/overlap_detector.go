package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// Overlap check results, also used as metric labels.
const (
	OverlapFound    = "overlap"
	OverlapClear    = "clear"
	OverlapDegraded = "degraded"
)

// TimeWindow is a shift's span on one calendar day.
type TimeWindow struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// ParseWindow reads the stored date and HH:MM strings of a shift.
func ParseWindow(date, start, end string) (TimeWindow, error) {
	d, err := time.Parse(constants.DateLayout, date)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("bad date %q: %w", date, err)
	}
	s, err := time.Parse(constants.TimeLayout, start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("bad start time %q: %w", start, err)
	}
	e, err := time.Parse(constants.TimeLayout, end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("bad end time %q: %w", end, err)
	}
	return TimeWindow{Date: d, Start: s, End: e}, nil
}

// Overlaps reports whether two windows on the same date intersect.
// Touching endpoints count as an overlap.
func Overlaps(a, b TimeWindow) bool {
	if !a.Date.Equal(b.Date) {
		return false
	}
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// OverlapDetector checks a candidate shift against the volunteer's active
// commitments. Each check runs in its own transaction, or in a savepoint
// when the detector is bound to an open transaction, so a failed query
// never poisons the caller's transaction.
type OverlapDetector struct {
	db      *gorm.DB
	shifts  *repositories.ShiftRepository
	metrics *metrics.MetricsRegistry
}

func NewOverlapDetector(db *gorm.DB, shifts *repositories.ShiftRepository, m *metrics.MetricsRegistry) *OverlapDetector {
	return &OverlapDetector{db: db, shifts: shifts, metrics: m}
}

// WithTx returns a detector bound to the caller's transaction.
func (d *OverlapDetector) WithTx(tx *gorm.DB) *OverlapDetector {
	return &OverlapDetector{db: tx, shifts: d.shifts.WithTx(tx), metrics: d.metrics}
}

// HasOverlap never fails. When the check itself cannot be completed it
// reports no overlap and counts the result as degraded.
func (d *OverlapDetector) HasOverlap(ctx context.Context, username string, candidateID int64) bool {
	var overlap bool
	err := d.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		var err error
		overlap, err = d.check(ctx, d.shifts.WithTx(sp), username, candidateID)
		return err
	})
	if err != nil {
		logging.Warn("Overlap check degraded, allowing signup",
			"username", username,
			"shift_id", candidateID,
			"error", err,
		)
		d.metrics.OverlapCheck(OverlapDegraded)
		return false
	}

	if overlap {
		d.metrics.OverlapCheck(OverlapFound)
	} else {
		d.metrics.OverlapCheck(OverlapClear)
	}
	return overlap
}

func (d *OverlapDetector) check(ctx context.Context, shifts *repositories.ShiftRepository, username string, candidateID int64) (bool, error) {
	candidate, err := shifts.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, fmt.Errorf("candidate shift %d missing", candidateID)
		}
		return false, err
	}

	window, err := ParseWindow(candidate.Date, candidate.StartTime, candidate.EndTime)
	if err != nil {
		return false, fmt.Errorf("candidate shift %d: %w", candidateID, err)
	}

	held, err := shifts.ActiveForVolunteer(ctx, username, candidate.Date)
	if err != nil {
		return false, err
	}

	return anyOverlap(window, candidateID, held), nil
}

func anyOverlap(window TimeWindow, candidateID int64, held []gormModels.Shift) bool {
	for _, s := range held {
		if s.ID == candidateID {
			continue
		}
		existing, err := ParseWindow(s.Date, s.StartTime, s.EndTime)
		if err != nil {
			logging.Warn("Skipping unparsable shift in overlap check", "shift_id", s.ID, "error", err)
			continue
		}
		if Overlaps(existing, window) {
			return true
		}
	}
	return false
}

// ListAlternatives returns other published shifts with room on the same date.
func (d *OverlapDetector) ListAlternatives(ctx context.Context, shiftID int64) ([]gormModels.Shift, error) {
	var alts []gormModels.Shift
	err := d.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		shifts := d.shifts.WithTx(sp)

		shift, err := shifts.GetByID(ctx, shiftID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				alts = []gormModels.Shift{}
				return nil
			}
			return err
		}

		alts, err = shifts.ListAlternatives(ctx, shift.Date, shift.ID)
		return err
	})
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}
	return alts, nil
}
