package application

import (
	"context"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRoomRequest is the DTO for listing a new room.
type CreateRoomRequest struct {
	HostelName         string `json:"hostel_name" binding:"required,max=100"`
	RoomNumber         string `json:"room_number" binding:"required,max=50"`
	Location           string `json:"location" binding:"max=255"`
	Description        string `json:"description"`
	PricePerNightMinor int64  `json:"price_per_night_minor" binding:"required,gt=0"`
	MaxOccupancy       int    `json:"max_occupancy" binding:"required,gt=0"`
}

// RoomDTO is the API response DTO for room data.
type RoomDTO struct {
	ID                 uuid.UUID `json:"id"`
	ProviderID         uuid.UUID `json:"provider_id"`
	HostelName         string    `json:"hostel_name"`
	RoomNumber         string    `json:"room_number"`
	Location           string    `json:"location"`
	Description        string    `json:"description"`
	PricePerNightMinor int64     `json:"price_per_night_minor"`
	MaxOccupancy       int       `json:"max_occupancy"`
	IsAvailable        bool      `json:"is_available"`
	CreatedAt          time.Time `json:"created_at"`
}

// RoomService manages provider rooms.
type RoomService struct {
	store  ledger.Store
	logger *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(store ledger.Store, logger *zap.Logger) *RoomService {
	return &RoomService{store: store, logger: logger}
}

// CreateRoom lists a room for the calling provider.
func (s *RoomService) CreateRoom(ctx context.Context, actor booking.Actor, req CreateRoomRequest) (*RoomDTO, error) {
	if actor.Role != booking.RoleProvider {
		return nil, booking.ErrForbidden("only providers can list rooms")
	}

	rm, err := room.NewRoom(actor.ProfileID, req.HostelName, req.RoomNumber, req.Location, req.Description, req.PricePerNightMinor, req.MaxOccupancy)
	if err != nil {
		return nil, err
	}
	if err := s.store.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		zap.String("room_id", rm.ID().String()),
		zap.String("provider_id", actor.ProfileID.String()),
	)
	dto := toRoomDTO(rm)
	return &dto, nil
}

// GetRoom retrieves a room.
func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDTO, error) {
	rm, err := s.store.Rooms().FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(rm)
	return &dto, nil
}

// ListAvailableRooms returns rooms currently open for booking that pass the filter.
func (s *RoomService) ListAvailableRooms(ctx context.Context, filter room.ListFilter, page, limit int) ([]RoomDTO, int64, error) {
	if filter.PriceMinMinor < 0 || filter.PriceMaxMinor < 0 {
		return nil, 0, domain.NewValidationError(domain.CodeValidation, "price filters cannot be negative")
	}
	if filter.PriceMaxMinor > 0 && filter.PriceMinMinor > filter.PriceMaxMinor {
		return nil, 0, domain.NewValidationError(domain.CodeValidation, "price_min cannot exceed price_max")
	}
	rooms, total, err := s.store.Rooms().ListAvailable(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toRoomDTOs(rooms), total, nil
}

// ListMyRooms returns the calling provider's rooms.
func (s *RoomService) ListMyRooms(ctx context.Context, actor booking.Actor) ([]RoomDTO, error) {
	if actor.Role != booking.RoleProvider {
		return nil, booking.ErrForbidden("only providers own rooms")
	}
	rooms, err := s.store.Rooms().ListByProvider(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	return toRoomDTOs(rooms), nil
}

func toRoomDTOs(rooms []*room.Room) []RoomDTO {
	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}
	return dtos
}

func toRoomDTO(rm *room.Room) RoomDTO {
	return RoomDTO{
		ID:                 rm.ID(),
		ProviderID:         rm.ProviderID(),
		HostelName:         rm.HostelName(),
		RoomNumber:         rm.RoomNumber(),
		Location:           rm.Location(),
		Description:        rm.Description(),
		PricePerNightMinor: rm.PricePerNightMinor(),
		MaxOccupancy:       rm.MaxOccupancy(),
		IsAvailable:        rm.IsAvailable(),
		CreatedAt:          rm.CreatedAt(),
	}
}
