package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db"
	"helping-hands/shiftdesk/internal/db/dbtest"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	orm := dbtest.New(t)

	ran, err := db.Migrate(context.Background(), orm)
	require.NoError(t, err)
	assert.Zero(t, ran, "second run should apply nothing")

	var applied []gormModels.SchemaMigration
	require.NoError(t, orm.Order("version").Find(&applied).Error)
	require.Len(t, applied, len(db.Migrations()))
	for i, m := range db.Migrations() {
		assert.Equal(t, m.Version, applied[i].Version)
		assert.Equal(t, m.Name, applied[i].Name)
	}
}

func TestMigrate_CreatesCoreTables(t *testing.T) {
	orm := dbtest.New(t)

	m := orm.Migrator()
	assert.True(t, m.HasTable(&gormModels.User{}))
	assert.True(t, m.HasTable(&gormModels.Shift{}))
	assert.True(t, m.HasTable(&gormModels.VolunteerCommitment{}))
	assert.True(t, m.HasColumn(&gormModels.User{}, "Credits"))
	assert.True(t, m.HasColumn(&gormModels.Shift{}, "Location"))
}

func TestMigrate_ActivePairIndexRejectsSecondActiveCommitment(t *testing.T) {
	orm := dbtest.New(t)

	first := gormModels.VolunteerCommitment{Username: "vol", ShiftID: 1, Status: constants.CommitmentPending}
	require.NoError(t, orm.Create(&first).Error)

	dup := gormModels.VolunteerCommitment{Username: "vol", ShiftID: 1, Status: constants.CommitmentApproved}
	err := orm.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// terminal rows are history and do not count
	rejected := gormModels.VolunteerCommitment{Username: "vol", ShiftID: 2, Status: constants.CommitmentRejected}
	require.NoError(t, orm.Create(&rejected).Error)
	again := gormModels.VolunteerCommitment{Username: "vol", ShiftID: 2, Status: constants.CommitmentRejected}
	require.NoError(t, orm.Create(&again).Error)
}

func TestMigrate_BackfillsCapacityFromApprovedCommitments(t *testing.T) {
	orm := dbtest.New(t)

	// simulate a legacy row written before capacity existed
	shift := gormModels.Shift{Title: "Legacy", Date: "2025-06-01", StartTime: "09:00", EndTime: "12:00", Spots: 2}
	require.NoError(t, orm.Create(&shift).Error)
	require.NoError(t, orm.Model(&shift).Update("capacity", 0).Error)
	for _, u := range []string{"a", "b"} {
		c := gormModels.VolunteerCommitment{Username: u, ShiftID: shift.ID, Status: constants.CommitmentApproved}
		require.NoError(t, orm.Create(&c).Error)
	}

	backfill := db.Migrations()[3]
	require.Equal(t, "shifts_capacity_backfill", backfill.Name)
	require.NoError(t, backfill.Up(orm))

	var got gormModels.Shift
	require.NoError(t, orm.First(&got, shift.ID).Error)
	assert.Equal(t, 4, got.Capacity)
}
