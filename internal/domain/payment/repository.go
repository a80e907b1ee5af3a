package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for Payment aggregates.
type PaymentRepository interface {
	// FindByBookingID retrieves the payment attached to a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)

	// ExistsByTransactionID reports whether a payment with this gateway reference exists.
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)

	// ListAll retrieves all payments with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Payment, int64, error)

	// GetRevenueStats returns successful revenue and counts by status (admin).
	GetRevenueStats(ctx context.Context) (totalRevenueMinor int64, countByStatus map[string]int64, err error)

	// RevenueByRoom sums successful payments of confirmed bookings per room,
	// for the rooms of one provider. Rooms without revenue are absent.
	RevenueByRoom(ctx context.Context, providerID uuid.UUID) (map[uuid.UUID]int64, error)

	// Save persists a new payment.
	Save(ctx context.Context, payment *Payment) error

	// UpdateStatus persists a status change (success -> refunded).
	UpdateStatus(ctx context.Context, payment *Payment) error

	// Delete removes a payment.
	Delete(ctx context.Context, id uuid.UUID) error
}
