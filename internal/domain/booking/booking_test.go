package booking

import (
	"testing"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, false},
		{StatusApproved, StatusConfirmed, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusRejected, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusApproved, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusRejected.IsActive())
	assert.True(t, StatusApproved.IsActive())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("paid")
	assert.Error(t, err)
}

func TestBooking_Lifecycle(t *testing.T) {
	b := NewBooking(uuid.New(), uuid.New(), mustStay(t, "2026-01-01", "2026-01-04"))
	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, int64(4500), b.TotalAmount(1500))

	err := b.Confirm()
	assert.True(t, domain.HasCode(err, CodeIllegalTransition))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, StatusPending, b.Status())

	require.NoError(t, b.Approve())
	require.NoError(t, b.Confirm())
	require.NoError(t, b.Cancel())
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Error(t, b.Cancel())
}

func TestAuthorize(t *testing.T) {
	providerID := uuid.New()
	student := Actor{ProfileID: uuid.New(), Role: RoleStudent}
	provider := Actor{ProfileID: providerID, Role: RoleProvider}
	otherProvider := Actor{ProfileID: uuid.New(), Role: RoleProvider}
	admin := Actor{ProfileID: uuid.New(), Role: RoleAdmin}
	b := NewBooking(student.ProfileID, uuid.New(), mustStay(t, "2026-01-01", "2026-01-02"))

	tests := []struct {
		name   string
		actor  Actor
		target Status
		ok     bool
	}{
		{"provider approves", provider, StatusApproved, true},
		{"provider rejects", provider, StatusRejected, true},
		{"other provider approves", otherProvider, StatusApproved, false},
		{"student approves", student, StatusApproved, false},
		{"student cancels", student, StatusCancelled, true},
		{"provider cancels", provider, StatusCancelled, false},
		{"admin cancels", admin, StatusCancelled, false},
		{"nobody confirms", provider, StatusConfirmed, false},
		{"admin confirms", admin, StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, b, providerID, tt.target)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}
}

func TestCanView(t *testing.T) {
	providerID := uuid.New()
	student := Actor{ProfileID: uuid.New(), Role: RoleStudent}
	b := NewBooking(student.ProfileID, uuid.New(), mustStay(t, "2026-01-01", "2026-01-02"))

	assert.True(t, CanView(student, b, providerID))
	assert.True(t, CanView(Actor{ProfileID: providerID, Role: RoleProvider}, b, providerID))
	assert.True(t, CanView(Actor{Role: RoleAdmin}, b, providerID))
	assert.False(t, CanView(Actor{ProfileID: uuid.New(), Role: RoleStudent}, b, providerID))
	// A student profile id equal to the provider's does not grant provider rights.
	assert.False(t, CanView(Actor{ProfileID: providerID, Role: RoleStudent}, b, providerID))
}
