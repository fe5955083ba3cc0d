package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/dbtest"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/metrics"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

type recordingAnnouncer struct {
	mu     sync.Mutex
	shifts []gormModels.Shift
}

func (a *recordingAnnouncer) DispatchNewShift(shift gormModels.Shift) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shifts = append(a.shifts, shift)
}

func (a *recordingAnnouncer) announced() []gormModels.Shift {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]gormModels.Shift(nil), a.shifts...)
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB

	userRepo       *repositories.UserRepositoryGORM
	shiftRepo      *repositories.ShiftRepository
	commitmentRepo *repositories.CommitmentRepository

	metrics     *metrics.MetricsRegistry
	directory   *UserDirectory
	announcer   *recordingAnnouncer
	shifts      *ShiftService
	commitments *CommitmentService
	coverage    *CoverageService

	now time.Time
}

var fixtureUsers = []gormModels.User{
	{Username: "admin", Role: constants.RoleAdmin},
	{Username: "manager", Role: constants.RoleManager},
	{Username: "volunteer", Role: constants.RoleVolunteer},
	{Username: "testuser", Role: constants.RoleVolunteer},
	{Username: "helper", Role: constants.RoleVolunteer},
}

func newFixture(t *testing.T, strictValidation bool) *fixture {
	t.Helper()

	orm := dbtest.New(t)
	f := &fixture{
		t:              t,
		ctx:            context.Background(),
		db:             orm,
		userRepo:       repositories.NewUserRepositoryGORM(orm),
		shiftRepo:      repositories.NewShiftRepository(orm),
		commitmentRepo: repositories.NewCommitmentRepository(orm),
		metrics:        metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		announcer:      &recordingAnnouncer{},
		now:            time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	for _, u := range fixtureUsers {
		u.Password = "x"
		_, err := f.userRepo.EnsureUser(f.ctx, &u)
		require.NoError(t, err)
	}

	f.directory = NewUserDirectory(f.userRepo, common.NewCacheService(time.Minute, time.Minute), time.Minute, f.metrics)
	f.shifts = NewShiftService(orm, f.shiftRepo, f.commitmentRepo, f.directory, f.announcer, f.metrics, strictValidation)
	f.commitments = NewCommitmentService(
		orm, f.shiftRepo, f.commitmentRepo, f.userRepo, f.directory, f.directory,
		NewOverlapDetector(orm, f.shiftRepo, f.metrics), f.metrics, constants.CancellationWindow,
	)
	f.commitments.SetClock(func() time.Time { return f.now })
	f.coverage = NewCoverageService(f.shiftRepo, f.commitmentRepo)
	return f
}

// published creates, validates and publishes a shift.
func (f *fixture) published(date, start, end string, spots int) int64 {
	f.t.Helper()
	return f.publishedAt(date, start, end, spots, "")
}

func (f *fixture) publishedAt(date, start, end string, spots int, location string) int64 {
	f.t.Helper()

	shift, err := f.shifts.Create(f.ctx, "manager", requests.CreateShiftRequest{
		Title: "Shift " + start, Date: date, StartTime: start, EndTime: end, Spots: spots, Location: location,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.shifts.Validate(f.ctx, shift.ID, "admin"))
	require.NoError(f.t, f.shifts.Publish(f.ctx, shift.ID, "manager"))
	return shift.ID
}

// approved signs volunteer up for shiftID and has the manager approve it.
func (f *fixture) approved(volunteer string, shiftID int64) int64 {
	f.t.Helper()

	res, err := f.commitments.Request(f.ctx, volunteer, shiftID)
	require.NoError(f.t, err)
	require.Equal(f.t, SignupPending, res.Status)

	_, err = f.commitments.Decide(f.ctx, res.CommitmentID, "manager", true)
	require.NoError(f.t, err)
	return res.CommitmentID
}

func (f *fixture) shift(id int64) *gormModels.Shift {
	f.t.Helper()
	s, err := f.shiftRepo.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) commitment(id int64) *gormModels.VolunteerCommitment {
	f.t.Helper()
	c, err := f.commitmentRepo.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) credits(username string) int {
	f.t.Helper()
	u, err := f.userRepo.GetByUsername(f.ctx, username)
	require.NoError(f.t, err)
	return u.Credits
}
