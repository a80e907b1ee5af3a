package application

import (
	"context"
	"errors"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest is the DTO for a student's booking request.
type CreateBookingRequest struct {
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	CheckInDate  string    `json:"check_in_date" binding:"required"`
	CheckOutDate string    `json:"check_out_date" binding:"required"`
}

// UpdateBookingStatusRequest is the DTO for a provider's decision on a request.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// BookingDTO is the API response DTO for booking data.
type BookingDTO struct {
	ID               uuid.UUID `json:"id"`
	StudentID        uuid.UUID `json:"student_id"`
	RoomID           uuid.UUID `json:"room_id"`
	CheckInDate      string    `json:"check_in_date"`
	CheckOutDate     string    `json:"check_out_date"`
	Nights           int64     `json:"nights"`
	TotalAmountMinor int64     `json:"total_amount_minor"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BookingService is the application service for the booking lifecycle.
type BookingService struct {
	store        ledger.Store
	availability *AvailabilityService
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	store ledger.Store,
	availability *AvailabilityService,
	publisher events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:        store,
		availability: availability,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateBooking validates a request and persists a pending booking.
func (s *BookingService) CreateBooking(ctx context.Context, actor booking.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	if actor.Role != booking.RoleStudent {
		return nil, booking.ErrForbidden("only students can book rooms")
	}

	stay, err := booking.ParseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, domain.NewValidationError(booking.CodeInvalidDateRange, "dates must use the YYYY-MM-DD format")
	}

	validator := booking.NewValidator(s.store.Rooms(), s.store.Bookings())
	rm, err := validator.Validate(ctx, booking.Request{
		RoomID:    req.RoomID,
		StudentID: actor.ProfileID,
		Stay:      stay,
	})
	if err != nil {
		s.logger.Info("booking request rejected",
			zap.String("room_id", req.RoomID.String()),
			zap.String("student_id", actor.ProfileID.String()),
			zap.String("code", domain.CodeOf(err)),
		)
		return nil, err
	}

	b := booking.NewBooking(actor.ProfileID, rm.ID(), stay)
	if err := s.store.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("room_id", rm.ID().String()),
		zap.String("student_id", actor.ProfileID.String()),
	)
	s.publish(ctx, events.BookingCreated, b)

	dto := toBookingDTO(b, rm.PricePerNightMinor())
	return &dto, nil
}

// UpdateStatus applies a provider's approve or reject decision.
func (s *BookingService) UpdateStatus(ctx context.Context, actor booking.Actor, bookingID uuid.UUID, req UpdateBookingStatusRequest) (*BookingDTO, error) {
	target := booking.Status(req.Status)
	if target != booking.StatusApproved && target != booking.StatusRejected {
		return nil, domain.NewValidationError(domain.CodeValidation, "status must be approved or rejected")
	}
	return s.transition(ctx, actor, bookingID, target)
}

// CancelBooking cancels a student's own booking.
func (s *BookingService) CancelBooking(ctx context.Context, actor booking.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, actor, bookingID, booking.StatusCancelled)
}

// transition locks the booking and its room, checks the capability, writes the new
// status and applies its side effects in one transaction.
func (s *BookingService) transition(ctx context.Context, actor booking.Actor, bookingID uuid.UUID, target booking.Status) (*BookingDTO, error) {
	var (
		b  *booking.Booking
		rm *room.Room
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Repositories) error {
		var err error
		if b, err = tx.Bookings().FindByIDForUpdate(ctx, bookingID); err != nil {
			return err
		}
		if rm, err = tx.Rooms().FindByIDForUpdate(ctx, b.RoomID()); err != nil {
			return err
		}

		if err := booking.Authorize(actor, b, rm.ProviderID(), target); err != nil {
			return err
		}
		if err := b.TransitionTo(target); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, b); err != nil {
			return err
		}

		if target == booking.StatusRejected || target == booking.StatusCancelled {
			if err := deletePayment(ctx, tx, b.ID()); err != nil {
				return err
			}
			return s.availability.apply(ctx, tx, rm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", b.ID().String()),
		zap.String("room_id", rm.ID().String()),
		zap.String("status", string(b.Status())),
	)
	s.publish(ctx, eventTypeFor(target), b)

	dto := toBookingDTO(b, rm.PricePerNightMinor())
	return &dto, nil
}

// GetBooking returns a booking visible to actor.
func (s *BookingService) GetBooking(ctx context.Context, actor booking.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	rm, err := s.store.Rooms().FindByID(ctx, b.RoomID())
	if err != nil {
		return nil, err
	}
	if !booking.CanView(actor, b, rm.ProviderID()) {
		return nil, booking.ErrForbidden("you do not have access to this booking")
	}

	dto := toBookingDTO(b, rm.PricePerNightMinor())
	return &dto, nil
}

// ListMyBookings returns the calling student's bookings.
func (s *BookingService) ListMyBookings(ctx context.Context, actor booking.Actor) ([]BookingDTO, error) {
	if actor.Role != booking.RoleStudent {
		return nil, booking.ErrForbidden("only students have bookings")
	}
	bookings, err := s.store.Bookings().ListByStudent(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	return s.toBookingDTOs(ctx, bookings)
}

// ListPendingRequests returns pending bookings on the calling provider's rooms.
func (s *BookingService) ListPendingRequests(ctx context.Context, actor booking.Actor) ([]BookingDTO, error) {
	if actor.Role != booking.RoleProvider {
		return nil, booking.ErrForbidden("only providers receive booking requests")
	}
	bookings, err := s.store.Bookings().ListByProviderAndStatus(ctx, actor.ProfileID, booking.StatusPending)
	if err != nil {
		return nil, err
	}
	return s.toBookingDTOs(ctx, bookings)
}

func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*booking.Booking) ([]BookingDTO, error) {
	prices := make(map[uuid.UUID]int64)
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		price, ok := prices[b.RoomID()]
		if !ok {
			rm, err := s.store.Rooms().FindByID(ctx, b.RoomID())
			if err != nil {
				return nil, err
			}
			price = rm.PricePerNightMinor()
			prices[b.RoomID()] = price
		}
		dtos[i] = toBookingDTO(b, price)
	}
	return dtos, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *booking.Booking) {
	publishBookingEvent(ctx, s.publisher, s.logger, eventType, b)
}

// publishBookingEvent is best effort: the transaction has already committed and
// consumers recompute from stored state.
func publishBookingEvent(ctx context.Context, publisher events.Publisher, logger *zap.Logger, eventType string, b *booking.Booking) {
	event := events.BookingEvent{
		BookingID:  b.ID(),
		RoomID:     b.RoomID(),
		StudentID:  b.StudentID(),
		Status:     string(b.Status()),
		OccurredAt: time.Now().UTC(),
	}
	if err := publisher.Publish(ctx, eventType, b.ID(), event); err != nil {
		logger.Error("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
	}
}

// deletePayment removes the booking's payment if it has one.
func deletePayment(ctx context.Context, tx ledger.Repositories, bookingID uuid.UUID) error {
	p, err := tx.Payments().FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return tx.Payments().Delete(ctx, p.ID())
}

func eventTypeFor(status booking.Status) string {
	switch status {
	case booking.StatusApproved:
		return events.BookingApproved
	case booking.StatusRejected:
		return events.BookingRejected
	case booking.StatusConfirmed:
		return events.BookingConfirmed
	case booking.StatusCancelled:
		return events.BookingCancelled
	default:
		return events.BookingCreated
	}
}

// toBookingDTO maps a domain Booking to a BookingDTO. The total is always derived
// from the room's current price.
func toBookingDTO(b *booking.Booking, pricePerNightMinor int64) BookingDTO {
	stay := b.Stay()
	return BookingDTO{
		ID:               b.ID(),
		StudentID:        b.StudentID(),
		RoomID:           b.RoomID(),
		CheckInDate:      stay.CheckIn.Format(booking.DateLayout),
		CheckOutDate:     stay.CheckOut.Format(booking.DateLayout),
		Nights:           stay.Nights(),
		TotalAmountMinor: b.TotalAmount(pricePerNightMinor),
		Status:           string(b.Status()),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
}
