package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/models/entities"
)

// ReportRepository serves the read-only reporting view over plain SQL.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db}
}

// ShiftRoster returns shifts (optionally of one status) each carrying the
// usernames of its approved volunteers.
func (r *ReportRepository) ShiftRoster(ctx context.Context, status constants.ShiftStatus) ([]entities.ShiftRoster, error) {
	var rows []entities.ShiftRosterRow

	query := r.db.Rebind(constants.ShiftRosterByStatus)
	if err := r.db.SelectContext(ctx, &rows, query, string(status), string(status)); err != nil {
		return nil, fmt.Errorf("failed to query shift roster: %w", err)
	}

	roster := make([]entities.ShiftRoster, 0, len(rows))
	for _, row := range rows {
		n := len(roster)
		if n == 0 || roster[n-1].ID != row.ID {
			roster = append(roster, entities.ShiftRoster{
				ID:                 row.ID,
				Title:              row.Title,
				Date:               row.Date,
				StartTime:          row.StartTime,
				EndTime:            row.EndTime,
				Spots:              row.Spots,
				Capacity:           row.Capacity,
				Location:           row.Location.String,
				Status:             row.Status,
				CreatedBy:          row.CreatedBy.String,
				ApprovedVolunteers: []string{},
			})
			n++
		}
		if row.Volunteer.Valid {
			roster[n-1].ApprovedVolunteers = append(roster[n-1].ApprovedVolunteers, row.Volunteer.String)
		}
	}

	return roster, nil
}

// Ping checks the sqlx pool.
func (r *ReportRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
