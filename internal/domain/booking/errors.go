package booking

import (
	"fmt"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
)

// Rejection codes reported to clients.
const (
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeBookingNotFound   = "BOOKING_NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeRoomUnavailable   = "ROOM_UNAVAILABLE"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeDuplicateBooking  = "DUPLICATE_BOOKING"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
)

func ErrRoomNotFound(roomID uuid.UUID) error {
	return domain.New(domain.ErrNotFound, CodeRoomNotFound, fmt.Sprintf("room %s not found", roomID))
}

func ErrBookingNotFound(bookingID uuid.UUID) error {
	return domain.New(domain.ErrNotFound, CodeBookingNotFound, fmt.Sprintf("booking %s not found", bookingID))
}

func ErrInvalidDateRange() error {
	return domain.NewValidationError(CodeInvalidDateRange, "check-out date must be after check-in date")
}

func ErrRoomUnavailable() error {
	return domain.New(domain.ErrConflict, CodeRoomUnavailable, "this room is not available for booking")
}

func ErrCapacityExceeded() error {
	return domain.New(domain.ErrConflict, CodeCapacityExceeded,
		"this room has reached its maximum occupancy for the selected dates based on fully paid bookings")
}

func ErrDuplicateBooking() error {
	return domain.New(domain.ErrConflict, CodeDuplicateBooking, "you already have a booking for this room within the selected dates")
}

func ErrIllegalTransition(from, to Status) error {
	return domain.New(domain.ErrInvalidState, CodeIllegalTransition, fmt.Sprintf("cannot change booking from %s to %s", from, to))
}

func ErrForbidden(message string) error {
	return domain.New(domain.ErrForbidden, CodeForbidden, message)
}
