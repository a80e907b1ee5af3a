package repository

import (
	"context"

	bookingDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	paymentDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	roomDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"gorm.io/gorm"
)

// Store bundles the GORM repositories over one *gorm.DB handle. Inside WithinTx the
// handle is the transaction, so every repository call joins it.
type Store struct {
	db       *gorm.DB
	rooms    *RoomRepositoryImpl
	bookings *BookingRepositoryImpl
	payments *PaymentRepositoryImpl
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		rooms:    NewRoomRepository(db),
		bookings: NewBookingRepository(db),
		payments: NewPaymentRepository(db),
	}
}

func (s *Store) Rooms() roomDomain.RoomRepository          { return s.rooms }
func (s *Store) Bookings() bookingDomain.BookingRepository { return s.bookings }
func (s *Store) Payments() paymentDomain.PaymentRepository { return s.payments }

// WithinTx runs fn inside a database transaction. A returned error rolls back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}

// AutoMigrate creates or updates the ledger tables in dependency order.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&RoomModel{}, &BookingModel{}, &PaymentModel{})
}

var _ ledger.Store = (*Store)(nil)
