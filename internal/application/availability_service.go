package application

import (
	"context"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService re-derives room availability from paid occupying bookings.
// The result depends only on the stored bookings and payments, so running it any
// number of times gives the same flag.
type AvailabilityService struct {
	store  ledger.Store
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(store ledger.Store, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, logger: logger}
}

// RecomputeRoom recomputes one room in its own transaction.
func (s *AvailabilityService) RecomputeRoom(ctx context.Context, roomID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Repositories) error {
		_, err := s.Recompute(ctx, tx, roomID)
		return err
	})
}

// Recompute locks the room row inside tx and rewrites its availability flag.
func (s *AvailabilityService) Recompute(ctx context.Context, tx ledger.Repositories, roomID uuid.UUID) (*room.Room, error) {
	rm, err := tx.Rooms().FindByIDForUpdate(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, tx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

// apply recomputes a room the caller has already locked.
func (s *AvailabilityService) apply(ctx context.Context, tx ledger.Repositories, rm *room.Room) error {
	stays, err := tx.Bookings().ListPaidOccupyingStays(ctx, rm.ID())
	if err != nil {
		return err
	}

	peak := booking.PeakOccupancy(stays)
	if !rm.ApplyOccupancy(peak) {
		return nil
	}
	if err := tx.Rooms().UpdateAvailability(ctx, rm); err != nil {
		return err
	}

	s.logger.Info("room availability changed",
		zap.String("room_id", rm.ID().String()),
		zap.Int("paid_active_count", peak),
		zap.Int("max_occupancy", rm.MaxOccupancy()),
		zap.Bool("is_available", rm.IsAvailable()),
	)
	return nil
}
