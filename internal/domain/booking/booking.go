package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the aggregate root for a student's stay request on a room.
type Booking struct {
	id        uuid.UUID
	studentID uuid.UUID
	roomID    uuid.UUID
	stay      Stay
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a pending booking. The stay must already be validated.
func NewBooking(studentID, roomID uuid.UUID, stay Stay) *Booking {
	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		studentID: studentID,
		roomID:    roomID,
		stay:      stay,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) StudentID() uuid.UUID { return b.studentID }
func (b *Booking) RoomID() uuid.UUID    { return b.roomID }
func (b *Booking) Stay() Stay           { return b.stay }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// TotalAmount is nights × price per night, in minor currency units.
func (b *Booking) TotalAmount(pricePerNightMinor int64) int64 {
	return b.stay.Nights() * pricePerNightMinor
}

// --- Behavior / State Transitions ---

// TransitionTo moves the booking to target if the state machine allows it.
func (b *Booking) TransitionTo(target Status) error {
	if !b.status.CanTransitionTo(target) {
		return ErrIllegalTransition(b.status, target)
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// Approve moves a pending booking to approved.
func (b *Booking) Approve() error { return b.TransitionTo(StatusApproved) }

// Reject moves a pending booking to rejected.
func (b *Booking) Reject() error { return b.TransitionTo(StatusRejected) }

// Confirm moves an approved booking to confirmed after payment.
func (b *Booking) Confirm() error { return b.TransitionTo(StatusConfirmed) }

// Cancel moves an active booking to cancelled.
func (b *Booking) Cancel() error { return b.TransitionTo(StatusCancelled) }

// --- Reconstitution ---

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(id, studentID, roomID uuid.UUID, stay Stay, status Status, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:        id,
		studentID: studentID,
		roomID:    roomID,
		stay:      stay,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}
