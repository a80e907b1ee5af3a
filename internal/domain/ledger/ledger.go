// Package ledger defines the room/occupancy ledger: the rooms, bookings and payments
// that occupancy is derived from, and the transactional boundary around them.
package ledger

import (
	"context"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
)

// Repositories groups the repositories that share one unit of work.
type Repositories interface {
	Rooms() room.RoomRepository
	Bookings() booking.BookingRepository
	Payments() payment.PaymentRepository
}

// Store is the ledger's entry point. WithinTx runs fn in a single transaction:
// every write made through tx commits together or not at all, and row locks taken
// through tx are held until fn returns.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
