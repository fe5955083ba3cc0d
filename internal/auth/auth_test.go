package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helping-hands/shiftdesk/internal/constants"
)

func TestAllowed_PolicyTable(t *testing.T) {
	cases := []struct {
		role   constants.Role
		action Action
		want   bool
	}{
		{constants.RoleManager, ActionShiftCreate, true},
		{constants.RoleAdmin, ActionShiftCreate, true},
		{constants.RoleVolunteer, ActionShiftCreate, false},
		{constants.RoleManager, ActionCommitmentDecide, true},
		{constants.RoleAdmin, ActionCommitmentDecide, false},
		{constants.RoleVolunteer, ActionCommitmentRequest, true},
		{constants.RoleManager, ActionCommitmentRequest, false},
		{constants.RoleAdmin, ActionShiftValidate, true},
		{constants.RoleManager, ActionShiftValidate, false},
		{constants.Role("ghost"), ActionShiftListAll, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.role)+"/"+string(tc.action), func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.action))
		})
	}
}

func TestPermissions(t *testing.T) {
	actions, ok := Permissions(constants.RoleVolunteer)
	require.True(t, ok)
	assert.Equal(t, []Action{ActionCommitmentCancel, ActionCommitmentRequest}, actions)

	_, ok = Permissions(constants.Role("ghost"))
	assert.False(t, ok)
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("0123456789abcdef"), time.Hour)

	token, id, err := signer.Issue("volunteer")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sub, gotID, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "volunteer", sub)
	assert.Equal(t, id, gotID)
}

func TestTokenSigner_RejectsExpiredAndForeignTokens(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	signer := NewTokenSigner([]byte("0123456789abcdef"), time.Hour)
	signer.now = func() time.Time { return issuedAt }

	token, _, err := signer.Issue("volunteer")
	require.NoError(t, err)

	signer.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, _, err = signer.Verify(token)
	assert.Error(t, err)

	other := NewTokenSigner([]byte("fedcba9876543210"), time.Hour)
	other.now = func() time.Time { return issuedAt }
	_, _, err = other.Verify(token)
	assert.Error(t, err)
}
