package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db"
	"helping-hands/shiftdesk/internal/db/dbtest"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

func TestSeed_IsIdempotent(t *testing.T) {
	orm := dbtest.New(t)
	ctx := context.Background()

	first, err := db.Seed(ctx, orm)
	require.NoError(t, err)
	assert.Equal(t, db.SeedResult{Users: 4, Shifts: 3}, first)

	again, err := db.Seed(ctx, orm)
	require.NoError(t, err)
	assert.Equal(t, db.SeedResult{}, again)

	var published []gormModels.Shift
	require.NoError(t, orm.Where("status = ?", constants.ShiftPublished).Find(&published).Error)
	require.Len(t, published, 1)
	assert.Equal(t, "Evening Shift", published[0].Title)
	assert.Equal(t, 4, published[0].Capacity)
}

func TestSeed_HashesPasswords(t *testing.T) {
	orm := dbtest.New(t)
	_, err := db.Seed(context.Background(), orm)
	require.NoError(t, err)

	var admin gormModels.User
	require.NoError(t, orm.First(&admin, "username = ?", "admin").Error)
	assert.Equal(t, "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9", admin.Password)
	assert.Equal(t, db.HashPassword("admin123"), admin.Password)
}
