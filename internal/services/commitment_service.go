package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// Signup outcomes.
const (
	SignupPending = "pending"
	SignupOverlap = "overlap"
)

// SignupResult is the non-error outcome of a signup request.
type SignupResult struct {
	Status       string             `json:"status"`
	CommitmentID int64              `json:"commitment_id,omitempty"`
	Message      string             `json:"message"`
	Alternatives []gormModels.Shift `json:"alternative_shifts,omitempty"`
}

// DecisionResult is returned by Decide.
type DecisionResult struct {
	Status         constants.CommitmentStatus `json:"status"`
	Message        string                     `json:"message"`
	CanCancelUntil *time.Time                 `json:"can_cancel_until,omitempty"`
}

// CreditInvalidator is told when a user's credits change.
type CreditInvalidator interface {
	Invalidate(username string)
}

type CommitmentService struct {
	db           *gorm.DB
	shifts       *repositories.ShiftRepository
	commitments  *repositories.CommitmentRepository
	users        *repositories.UserRepositoryGORM
	lookup       UserLookup
	invalidator  CreditInvalidator
	detector     *OverlapDetector
	metrics      *metrics.MetricsRegistry
	cancelWindow time.Duration
	now          func() time.Time
}

func NewCommitmentService(
	db *gorm.DB,
	shifts *repositories.ShiftRepository,
	commitments *repositories.CommitmentRepository,
	users *repositories.UserRepositoryGORM,
	lookup UserLookup,
	invalidator CreditInvalidator,
	detector *OverlapDetector,
	m *metrics.MetricsRegistry,
	cancelWindow time.Duration,
) *CommitmentService {
	if cancelWindow <= 0 {
		cancelWindow = constants.CancellationWindow
	}
	return &CommitmentService{
		db:           db,
		shifts:       shifts,
		commitments:  commitments,
		users:        users,
		lookup:       lookup,
		invalidator:  invalidator,
		detector:     detector,
		metrics:      m,
		cancelWindow: cancelWindow,
		now:          time.Now,
	}
}

// SetClock replaces the time source.
func (s *CommitmentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CommitmentService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Request records a pending signup, or reports an overlap with
// alternatives and records nothing.
func (s *CommitmentService) Request(ctx context.Context, volunteer string, shiftID int64) (*SignupResult, error) {
	user, err := s.lookup.LookupUser(ctx, volunteer)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.CommitmentOutcome("request", string(KindInvalidActor))
			return nil, newError(KindInvalidActor, constants.MsgUserNotFound)
		}
		return nil, err
	}
	if !auth.Allowed(user.Role, auth.ActionCommitmentRequest) {
		s.metrics.CommitmentOutcome("request", string(KindInvalidActor))
		return nil, newError(KindInvalidActor, constants.MsgVolunteerOnly)
	}

	var result *SignupResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shifts.WithTx(tx)
		commitments := s.commitments.WithTx(tx)

		shift, err := shifts.GetPublishedForUpdate(ctx, shiftID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(KindNotFound, constants.MsgShiftNotPublished)
			}
			return storeError(constants.MsgStoreFailure, err)
		}
		if shift.Spots <= 0 {
			return newError(KindNoCapacity, constants.MsgNoSpots)
		}

		history, err := commitments.StatusesForPair(ctx, volunteer, shiftID)
		if err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}
		for _, st := range history {
			if st == constants.CommitmentRejected {
				return newError(KindPermanentlyBarred, constants.MsgPreviouslyRejected)
			}
		}
		for _, st := range history {
			if st.Active() {
				return newError(KindAlreadyActive, constants.MsgAlreadySignedUp)
			}
		}

		detector := s.detector.WithTx(tx)
		if detector.HasOverlap(ctx, volunteer, shiftID) {
			alts, err := detector.ListAlternatives(ctx, shiftID)
			if err != nil {
				logging.Warn("Failed to list alternative shifts", "shift_id", shiftID, "error", err)
				alts = nil
			}
			result = &SignupResult{Status: SignupOverlap, Message: constants.MsgSignupOverlap, Alternatives: alts}
			return nil
		}

		c := &gormModels.VolunteerCommitment{
			Username:      volunteer,
			ShiftID:       shiftID,
			VolunteeredAt: s.clock(),
			Status:        constants.CommitmentPending,
		}
		if err := commitments.Create(ctx, c); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindAlreadyActive, constants.MsgAlreadySignedUp)
			}
			return storeError(constants.MsgStoreFailure, err)
		}

		result = &SignupResult{Status: SignupPending, CommitmentID: c.ID, Message: constants.MsgSignupPending}
		return nil
	})
	if err != nil {
		s.metrics.CommitmentOutcome("request", string(KindOf(err)))
		return nil, err
	}

	s.metrics.CommitmentOutcome("request", result.Status)
	logging.Info("Signup processed",
		"username", volunteer,
		"shift_id", shiftID,
		"outcome", result.Status,
		"commitment_id", result.CommitmentID,
	)
	return result, nil
}

// Decide approves or rejects a pending commitment. Approval takes a spot,
// opens the cancellation window and credits the volunteer, all in one
// transaction.
func (s *CommitmentService) Decide(ctx context.Context, commitmentID int64, approver string, approve bool) (*DecisionResult, error) {
	user, err := s.lookup.LookupUser(ctx, approver)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.Allowed(user.Role, auth.ActionCommitmentDecide) {
		s.metrics.CommitmentOutcome("decide", string(KindForbidden))
		return nil, newError(KindForbidden, constants.MsgApproveForbidden)
	}

	var (
		result    *DecisionResult
		volunteer string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shifts.WithTx(tx)
		commitments := s.commitments.WithTx(tx)

		c, err := commitments.GetByIDForUpdate(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(KindNotFound, constants.MsgCommitmentNotFound)
			}
			return storeError(constants.MsgStoreFailure, err)
		}
		shift, err := shifts.GetByIDForUpdate(ctx, c.ShiftID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(KindNotFound, constants.MsgCommitmentNotFound)
			}
			return storeError(constants.MsgStoreFailure, err)
		}
		if c.Status != constants.CommitmentPending {
			return newError(KindAlreadyProcessed, constants.MsgAlreadyProcessed)
		}
		volunteer = c.Username

		if !approve {
			ok, err := commitments.Reject(ctx, c.ID)
			if err != nil {
				return storeError(constants.MsgStoreFailure, err)
			}
			if !ok {
				return newError(KindAlreadyProcessed, constants.MsgAlreadyProcessed)
			}
			result = &DecisionResult{Status: constants.CommitmentRejected, Message: constants.MsgCommitmentRejected}
			return nil
		}

		if shift.Spots <= 0 {
			return newError(KindNoCapacity, constants.MsgNoSpots)
		}
		taken, err := shifts.TakeSpot(ctx, shift.ID)
		if err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}
		if !taken {
			return newError(KindNoCapacity, constants.MsgNoSpots)
		}

		approvedAt := s.clock()
		cancelUntil := approvedAt.Add(s.cancelWindow)
		ok, err := commitments.Approve(ctx, c.ID, approver, approvedAt, cancelUntil)
		if err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}
		if !ok {
			return newError(KindAlreadyProcessed, constants.MsgAlreadyProcessed)
		}

		if err := s.users.WithTx(tx).AddCredits(ctx, c.Username, 1); err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}

		result = &DecisionResult{
			Status:         constants.CommitmentApproved,
			Message:        constants.MsgCommitmentApproved,
			CanCancelUntil: &cancelUntil,
		}
		return nil
	})
	if err != nil {
		s.metrics.CommitmentOutcome("decide", string(KindOf(err)))
		return nil, err
	}

	if result.Status == constants.CommitmentApproved && s.invalidator != nil {
		s.invalidator.Invalidate(volunteer)
	}

	s.metrics.CommitmentOutcome("decide", string(result.Status))
	logging.Info("Commitment decided",
		"commitment_id", commitmentID,
		"decided_by", approver,
		"username", volunteer,
		"outcome", result.Status,
	)
	return result, nil
}

// Cancel lets a volunteer withdraw an approved commitment until its
// can_cancel_until instant (inclusive). The spot is returned; credits are kept.
func (s *CommitmentService) Cancel(ctx context.Context, commitmentID int64, requester string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shifts.WithTx(tx)
		commitments := s.commitments.WithTx(tx)

		c, err := commitments.GetByIDForUpdate(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(KindNotFound, constants.MsgNotCancellable)
			}
			return storeError(constants.MsgStoreFailure, err)
		}
		if c.Username != requester || c.Status != constants.CommitmentApproved {
			return newError(KindNotFound, constants.MsgNotCancellable)
		}
		if c.CanCancelUntil == nil || s.clock().After(*c.CanCancelUntil) {
			return newError(KindWindowExpired, constants.MsgWindowExpired)
		}

		ok, err := commitments.Cancel(ctx, c.ID)
		if err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}
		if !ok {
			return newError(KindNotFound, constants.MsgNotCancellable)
		}

		if err := shifts.ReleaseSpot(ctx, c.ShiftID); err != nil {
			return storeError(constants.MsgStoreFailure, err)
		}
		return nil
	})
	if err != nil {
		s.metrics.CommitmentOutcome("cancel", string(KindOf(err)))
		return err
	}

	s.metrics.CommitmentOutcome("cancel", string(constants.CommitmentCancelled))
	logging.Info("Commitment cancelled", "commitment_id", commitmentID, "username", requester)
	return nil
}

// ListForVolunteer returns the volunteer's commitments ordered by shift date and start.
func (s *CommitmentService) ListForVolunteer(ctx context.Context, username string) ([]repositories.CommitmentWithShift, error) {
	rows, err := s.commitments.ListForVolunteer(ctx, username)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}
	if rows == nil {
		rows = []repositories.CommitmentWithShift{}
	}
	return rows, nil
}
