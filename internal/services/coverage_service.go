package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
)

// CoverageShift is one published shift with its fill status.
type CoverageShift struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Location      string   `json:"location"`
	CreatedBy     string   `json:"created_by"`
	AssignedStaff []string `json:"assigned_staff"`
	RequiredStaff int      `json:"required_staff"`
	AssignedCount int      `json:"assigned_count"`
	Filled        bool     `json:"filled"`
}

// Participation is how many of the reported shifts a volunteer is approved on.
type Participation struct {
	Assigned int     `json:"assigned"`
	Rate     float64 `json:"rate"`
}

type CoverageFilters struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Location  string `json:"location,omitempty"`
}

type CoverageReport struct {
	Shifts        []CoverageShift          `json:"shifts"`
	Participation map[string]Participation `json:"participation"`
	TotalShifts   int                      `json:"total_shifts"`
	Filters       CoverageFilters          `json:"filters"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// CoverageService builds manager coverage reports over published shifts.
type CoverageService struct {
	shifts      *repositories.ShiftRepository
	commitments *repositories.CommitmentRepository
	now         func() time.Time
}

func NewCoverageService(shifts *repositories.ShiftRepository, commitments *repositories.CommitmentRepository) *CoverageService {
	return &CoverageService{shifts: shifts, commitments: commitments, now: time.Now}
}

// Generate filters published shifts by inclusive date range and location.
// required_staff is the shift's capacity, at least 1; a shift is filled once
// approved volunteers reach it.
func (s *CoverageService) Generate(ctx context.Context, req requests.CoverageReportRequest) (*CoverageReport, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return nil, newError(KindInvalidInput, "end_date must not be before start_date")
	}

	shifts, err := s.shifts.ListPublishedBetween(ctx, req.StartDate, req.EndDate, req.Location)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	ids := make([]int64, len(shifts))
	for i, sh := range shifts {
		ids[i] = sh.ID
	}
	approved, err := s.commitments.ApprovedByShift(ctx, ids)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	report := &CoverageReport{
		Shifts:        make([]CoverageShift, 0, len(shifts)),
		Participation: map[string]Participation{},
		TotalShifts:   len(shifts),
		Filters:       CoverageFilters{StartDate: req.StartDate, EndDate: req.EndDate, Location: req.Location},
		GeneratedAt:   s.now().UTC(),
	}

	counts := map[string]int{}
	for _, sh := range shifts {
		staff := approved[sh.ID]
		if staff == nil {
			staff = []string{}
		}
		for _, u := range staff {
			counts[u]++
		}
		required := sh.Capacity
		if required < 1 {
			required = 1
		}
		report.Shifts = append(report.Shifts, CoverageShift{
			ID:            sh.ID,
			Title:         sh.Title,
			Date:          sh.Date,
			StartTime:     sh.StartTime,
			EndTime:       sh.EndTime,
			Location:      sh.Location,
			CreatedBy:     sh.CreatedBy,
			AssignedStaff: staff,
			RequiredStaff: required,
			AssignedCount: len(staff),
			Filled:        len(staff) >= required,
		})
	}

	if len(shifts) > 0 {
		for u, n := range counts {
			report.Participation[u] = Participation{Assigned: n, Rate: float64(n) / float64(len(shifts))}
		}
	}

	return report, nil
}

// ExportCSV renders the report as two CSV sections separated by an empty
// line: shifts, then participation sorted by staff id.
func ExportCSV(report *CoverageReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"id", "date", "location", "required_staff", "assigned_count", "filled"}}
	for _, sh := range report.Shifts {
		rows = append(rows, []string{
			strconv.FormatInt(sh.ID, 10),
			sh.Date,
			sh.Location,
			strconv.Itoa(sh.RequiredStaff),
			strconv.Itoa(sh.AssignedCount),
			strconv.FormatBool(sh.Filled),
		})
	}
	rows = append(rows, []string{})

	staff := make([]string, 0, len(report.Participation))
	for id := range report.Participation {
		staff = append(staff, id)
	}
	sort.Strings(staff)

	rows = append(rows, []string{"staff_id", "assigned", "rate"})
	for _, id := range staff {
		p := report.Participation[id]
		rows = append(rows, []string{id, strconv.Itoa(p.Assigned), fmt.Sprintf("%.4f", p.Rate)})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write coverage csv: %w", err)
	}

	return buf.Bytes(), nil
}
