package entities

import (
	"database/sql"

	"helping-hands/shiftdesk/internal/constants"
)

// ShiftRosterRow is one row of the reporting view: a shift paired with one
// approved volunteer, or with a NULL volunteer when nobody is approved.
type ShiftRosterRow struct {
	ID        int64                 `db:"id"`
	Title     string                `db:"title"`
	Date      string                `db:"date"`
	StartTime string                `db:"start_time"`
	EndTime   string                `db:"end_time"`
	Spots     int                   `db:"spots"`
	Capacity  int                   `db:"capacity"`
	Location  sql.NullString        `db:"location"`
	Status    constants.ShiftStatus `db:"status"`
	CreatedBy sql.NullString        `db:"created_by"`
	Volunteer sql.NullString        `db:"volunteer"`
}

// ShiftRoster is the folded form served by the reporting endpoint.
type ShiftRoster struct {
	ID                 int64                 `json:"id"`
	Title              string                `json:"title"`
	Date               string                `json:"date"`
	StartTime          string                `json:"start_time"`
	EndTime            string                `json:"end_time"`
	Spots              int                   `json:"spots"`
	Capacity           int                   `json:"capacity"`
	Location           string                `json:"location"`
	Status             constants.ShiftStatus `json:"status"`
	CreatedBy          string                `json:"created_by"`
	ApprovedVolunteers []string              `json:"approved_volunteers"`
}
