package booking

import "github.com/google/uuid"

// Role is the role an actor holds, as asserted by the identity provider.
type Role string

const (
	RoleStudent  Role = "student"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated caller. ProfileID is the caller's student or provider
// profile.
type Actor struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Role      Role
	Email     string
}

func (a Actor) isStudent(studentID uuid.UUID) bool {
	return a.Role == RoleStudent && a.ProfileID == studentID
}

func (a Actor) isProvider(providerID uuid.UUID) bool {
	return a.Role == RoleProvider && a.ProfileID == providerID
}

// Authorize is the single capability check for booking transitions. The owning
// provider decides pending requests, the booking's student cancels, and nobody may
// confirm directly: confirmation belongs to payment reconciliation.
func Authorize(actor Actor, b *Booking, roomProviderID uuid.UUID, target Status) error {
	switch target {
	case StatusApproved, StatusRejected:
		if actor.isProvider(roomProviderID) {
			return nil
		}
		return ErrForbidden("only the room's provider can approve or reject this booking")
	case StatusCancelled:
		if actor.isStudent(b.StudentID()) {
			return nil
		}
		return ErrForbidden("only the student who made this booking can cancel it")
	case StatusConfirmed:
		return ErrForbidden("bookings are confirmed by payment only")
	default:
		return ErrForbidden("transition not permitted")
	}
}

// CanView reports whether actor may read the booking.
func CanView(actor Actor, b *Booking, roomProviderID uuid.UUID) bool {
	return actor.Role == RoleAdmin || actor.isStudent(b.StudentID()) || actor.isProvider(roomProviderID)
}
