package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for bookings and the
// occupancy queries derived from them.
type BookingRepository interface {
	OccupancyReader

	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and holds an exclusive row lock until the
	// enclosing transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByStudent retrieves a student's bookings, newest first.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Booking, error)

	// ListByProviderAndStatus retrieves bookings on a provider's rooms in one status.
	ListByProviderAndStatus(ctx context.Context, providerID uuid.UUID, status Status) ([]*Booking, error)

	// CountByStatusForProvider returns booking counts per status across a provider's rooms.
	CountByStatusForProvider(ctx context.Context, providerID uuid.UUID) (map[Status]int64, error)

	// ListPaidOccupyingStays returns the stays of approved or confirmed bookings on
	// roomID that have a successful payment.
	ListPaidOccupyingStays(ctx context.Context, roomID uuid.UUID) ([]Stay, error)

	// Save persists a new booking. A clash with another active booking for the same
	// student, room and dates fails with DuplicateBooking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists the booking's status.
	UpdateStatus(ctx context.Context, booking *Booking) error
}
