package requests

// CreateShiftRequest is the body of POST /api/shifts.
type CreateShiftRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Spots     int    `json:"spots" validate:"min=0"`
	Location  string `json:"location" validate:"max=200"`
}

// CreateShiftSeriesRequest is the body of POST /api/shifts/series.
// RRule is an RFC 5545 rule such as "FREQ=WEEKLY;BYDAY=SA;COUNT=4"; it
// must bound the series with COUNT or UNTIL.
type CreateShiftSeriesRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	RRule     string `json:"rrule" validate:"required"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Spots     int    `json:"spots" validate:"min=0"`
	Location  string `json:"location" validate:"max=200"`
}

// DecideCommitmentRequest is the body of POST /api/volunteer-commitments/{id}/approve.
type DecideCommitmentRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// CoverageReportRequest filters the coverage report. Empty fields are open.
type CoverageReportRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Location  string `json:"location"`
}
