package application

import (
	"context"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderDashboardDTO summarizes a provider's rooms, requests and revenue.
type ProviderDashboardDTO struct {
	TotalRooms        int64            `json:"total_rooms"`
	PendingRequests   int64            `json:"pending_requests"`
	ConfirmedBookings int64            `json:"confirmed_bookings"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	TotalRevenueMinor int64            `json:"total_revenue_minor"`
	Rooms             []RoomRevenueDTO `json:"rooms"`
}

// RoomRevenueDTO is what one room has earned from confirmed bookings.
type RoomRevenueDTO struct {
	RoomID           uuid.UUID `json:"room_id"`
	RoomNumber       string    `json:"room_number"`
	HostelName       string    `json:"hostel_name"`
	TotalEarnedMinor int64     `json:"total_earned_minor"`
}

// DashboardService builds read-only summaries.
type DashboardService struct {
	store  ledger.Store
	logger *zap.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store ledger.Store, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, logger: logger}
}

// ProviderDashboard returns the calling provider's summary.
func (s *DashboardService) ProviderDashboard(ctx context.Context, actor booking.Actor) (*ProviderDashboardDTO, error) {
	if actor.Role != booking.RoleProvider {
		return nil, booking.ErrForbidden("only providers have a dashboard")
	}

	rooms, err := s.store.Rooms().ListByProvider(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Bookings().CountByStatusForProvider(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.store.Payments().RevenueByRoom(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}

	var total int64
	perRoom := make([]RoomRevenueDTO, len(rooms))
	for i, rm := range rooms {
		perRoom[i] = RoomRevenueDTO{
			RoomID:           rm.ID(),
			RoomNumber:       rm.RoomNumber(),
			HostelName:       rm.HostelName(),
			TotalEarnedMinor: revenue[rm.ID()],
		}
		total += revenue[rm.ID()]
	}

	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
	}

	return &ProviderDashboardDTO{
		TotalRooms:        int64(len(rooms)),
		PendingRequests:   counts[booking.StatusPending],
		ConfirmedBookings: counts[booking.StatusConfirmed],
		BookingsByStatus:  byStatus,
		TotalRevenueMinor: total,
		Rooms:             perRoom,
	}, nil
}
