package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// UserLookup resolves a username to its stored role and credits.
type UserLookup interface {
	LookupUser(ctx context.Context, username string) (*UserRecord, error)
}

// ShiftAnnouncer is told about every shift that becomes published.
type ShiftAnnouncer interface {
	DispatchNewShift(shift gormModels.Shift)
}

// ShiftListing is a shift annotated with its pending queue.
type ShiftListing struct {
	gormModels.Shift
	PendingCount      int                             `json:"pending_count"`
	PendingVolunteers []repositories.PendingVolunteer `json:"pending_volunteers"`
}

type ShiftService struct {
	db               *gorm.DB
	shifts           *repositories.ShiftRepository
	commitments      *repositories.CommitmentRepository
	users            UserLookup
	announcer        ShiftAnnouncer
	metrics          *metrics.MetricsRegistry
	strictValidation bool
}

func NewShiftService(
	db *gorm.DB,
	shifts *repositories.ShiftRepository,
	commitments *repositories.CommitmentRepository,
	users UserLookup,
	announcer ShiftAnnouncer,
	m *metrics.MetricsRegistry,
	strictValidation bool,
) *ShiftService {
	return &ShiftService{
		db:               db,
		shifts:           shifts,
		commitments:      commitments,
		users:            users,
		announcer:        announcer,
		metrics:          m,
		strictValidation: strictValidation,
	}
}

// requireRole loads the actor's stored role and checks it against the
// policy table. Unknown users are forbidden.
func (s *ShiftService) requireRole(ctx context.Context, username string, action auth.Action, msg string) (*UserRecord, error) {
	user, err := s.users.LookupUser(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindForbidden, msg)
		}
		return nil, err
	}
	if !auth.Allowed(user.Role, action) {
		return nil, newError(KindForbidden, msg)
	}
	return user, nil
}

// Create stores a new draft shift whose capacity equals the requested spots.
func (s *ShiftService) Create(ctx context.Context, creator string, req requests.CreateShiftRequest) (*gormModels.Shift, error) {
	if _, err := s.requireRole(ctx, creator, auth.ActionShiftCreate, constants.MsgCreateForbidden); err != nil {
		return nil, err
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	shift := newDraft(req.Title, req.Date, req.StartTime, req.EndTime, req.Spots, req.Location, creator)
	if err := s.shifts.Create(ctx, &shift); err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	s.metrics.ShiftTransition(string(constants.ShiftDraft))
	logging.Info("Shift created", "shift_id", shift.ID, "created_by", creator, "date", shift.Date)
	return &shift, nil
}

// CreateSeries expands an RRULE from StartDate and stores one draft shift
// per occurrence in a single transaction.
func (s *ShiftService) CreateSeries(ctx context.Context, creator string, req requests.CreateShiftSeriesRequest) ([]gormModels.Shift, error) {
	if _, err := s.requireRole(ctx, creator, auth.ActionShiftCreate, constants.MsgCreateForbidden); err != nil {
		return nil, err
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	dates, err := expandSeries(req.RRule, req.StartDate)
	if err != nil {
		return nil, err
	}

	shifts := make([]gormModels.Shift, 0, len(dates))
	for _, date := range dates {
		shifts = append(shifts, newDraft(req.Title, date, req.StartTime, req.EndTime, req.Spots, req.Location, creator))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.shifts.WithTx(tx).CreateBatch(ctx, shifts)
	})
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	for range shifts {
		s.metrics.ShiftTransition(string(constants.ShiftDraft))
	}
	logging.Info("Shift series created", "count", len(shifts), "created_by", creator, "rrule", req.RRule)
	return shifts, nil
}

// Validate marks the shift validated. A missing shift is not an error.
// With strict validation only roles granted shift.validate may call it.
func (s *ShiftService) Validate(ctx context.Context, shiftID int64, validator string) error {
	if s.strictValidation {
		if _, err := s.requireRole(ctx, validator, auth.ActionShiftValidate, constants.MsgValidateForbidden); err != nil {
			return err
		}
	}

	n, err := s.shifts.SetStatus(ctx, shiftID, constants.ShiftValidated)
	if err != nil {
		return storeError(constants.MsgStoreFailure, err)
	}
	if n > 0 {
		s.metrics.ShiftTransition(string(constants.ShiftValidated))
	}
	logging.Info("Shift validated", "shift_id", shiftID, "validated_by", validator, "rows", n)
	return nil
}

// Publish marks the shift published and, when the row exists, announces it.
func (s *ShiftService) Publish(ctx context.Context, shiftID int64, publisher string) error {
	if _, err := s.requireRole(ctx, publisher, auth.ActionShiftPublish, constants.MsgPublishForbidden); err != nil {
		return err
	}

	n, err := s.shifts.SetStatus(ctx, shiftID, constants.ShiftPublished)
	if err != nil {
		return storeError(constants.MsgStoreFailure, err)
	}
	if n == 0 {
		logging.Info("Publish of missing shift ignored", "shift_id", shiftID, "published_by", publisher)
		return nil
	}
	s.metrics.ShiftTransition(string(constants.ShiftPublished))

	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		// Publishing succeeded; only the announcement is lost.
		logging.Warn("Published shift could not be reloaded for notification", "shift_id", shiftID, "error", err)
		return nil
	}
	if s.announcer != nil {
		s.announcer.DispatchNewShift(*shift)
	}

	logging.Info("Shift published", "shift_id", shiftID, "published_by", publisher)
	return nil
}

// Remove hard-deletes the shift. Removing a missing shift succeeds.
func (s *ShiftService) Remove(ctx context.Context, shiftID int64, actorRole constants.Role) error {
	if !auth.Allowed(actorRole, auth.ActionShiftRemove) {
		return newError(KindForbidden, constants.MsgRemoveForbidden)
	}

	n, err := s.shifts.Delete(ctx, shiftID)
	if err != nil {
		return storeError(constants.MsgStoreFailure, err)
	}
	if n > 0 {
		s.metrics.ShiftTransition("removed")
	}
	logging.Info("Shift removed", "shift_id", shiftID, "role", actorRole, "rows", n)
	return nil
}

// List returns shifts visible to role. Roles without shift.list_all see
// published shifts only, whatever the filter says.
func (s *ShiftService) List(ctx context.Context, role constants.Role, statusFilter string) ([]ShiftListing, error) {
	status := constants.ShiftPublished
	if auth.Allowed(role, auth.ActionShiftListAll) {
		status = constants.ShiftStatus(statusFilter)
		if status != "" && !status.Valid() {
			return nil, newError(KindInvalidInput, fmt.Sprintf("unknown status %q", statusFilter))
		}
	}

	shifts, err := s.shifts.List(ctx, status)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	ids := make([]int64, len(shifts))
	for i, sh := range shifts {
		ids[i] = sh.ID
	}
	pending, err := s.commitments.PendingByShift(ctx, ids)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}

	out := make([]ShiftListing, len(shifts))
	for i, sh := range shifts {
		queue := pending[sh.ID]
		if queue == nil {
			queue = []repositories.PendingVolunteer{}
		}
		out[i] = ShiftListing{Shift: sh, PendingCount: len(queue), PendingVolunteers: queue}
	}
	return out, nil
}

func newDraft(title, date, start, end string, spots int, location, creator string) gormModels.Shift {
	if strings.TrimSpace(location) == "" {
		location = constants.DefaultLocation
	}
	return gormModels.Shift{
		Title:     strings.TrimSpace(title),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Spots:     spots,
		Capacity:  spots,
		Location:  location,
		Status:    constants.ShiftDraft,
		CreatedBy: creator,
	}
}

func checkTimeRange(start, end string) error {
	s, err := time.Parse(constants.TimeLayout, start)
	if err != nil {
		return newError(KindInvalidInput, "start_time must be HH:MM")
	}
	e, err := time.Parse(constants.TimeLayout, end)
	if err != nil {
		return newError(KindInvalidInput, "end_time must be HH:MM")
	}
	if !e.After(s) {
		return newError(KindInvalidInput, "end_time must be after start_time")
	}
	return nil
}

// expandSeries returns the occurrence dates of rule anchored at startDate.
func expandSeries(rule, startDate string) ([]string, error) {
	start, err := time.Parse(constants.DateLayout, startDate)
	if err != nil {
		return nil, newError(KindInvalidInput, "start_date must be YYYY-MM-DD")
	}

	r, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "invalid rrule", Err: err}
	}
	if r.OrigOptions.Count == 0 && r.OrigOptions.Until.IsZero() {
		return nil, newError(KindInvalidInput, "rrule must set COUNT or UNTIL")
	}
	if r.OrigOptions.Count > constants.MaxSeriesOccurrences {
		return nil, newError(KindInvalidInput, fmt.Sprintf("rrule may produce at most %d shifts", constants.MaxSeriesOccurrences))
	}
	r.DTStart(start)

	occurrences := r.All()
	if len(occurrences) == 0 {
		return nil, newError(KindInvalidInput, "rrule produces no dates")
	}
	if len(occurrences) > constants.MaxSeriesOccurrences {
		return nil, newError(KindInvalidInput, fmt.Sprintf("rrule may produce at most %d shifts", constants.MaxSeriesOccurrences))
	}

	dates := make([]string, len(occurrences))
	for i, occ := range occurrences {
		dates[i] = occ.Format(constants.DateLayout)
	}
	return dates, nil
}
