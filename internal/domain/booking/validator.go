package booking

import (
	"context"
	"errors"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
)

// RoomFinder looks up rooms.
type RoomFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*room.Room, error)
}

// OccupancyReader answers the occupancy questions the validator asks.
type OccupancyReader interface {
	// CountPaidActiveOverlapping counts active bookings with a successful payment on
	// roomID whose stay overlaps stay. excludeID (uuid.Nil for none) is skipped.
	CountPaidActiveOverlapping(ctx context.Context, roomID uuid.UUID, stay Stay, excludeID uuid.UUID) (int64, error)

	// HasActiveOverlap reports whether the student holds an active booking on roomID
	// overlapping stay, paid or not.
	HasActiveOverlap(ctx context.Context, studentID, roomID uuid.UUID, stay Stay) (bool, error)
}

// Request is a booking request from a student.
type Request struct {
	RoomID    uuid.UUID
	StudentID uuid.UUID
	Stay      Stay
}

// Validator decides whether a booking request may be created. Rules run in a fixed
// order and the first failure is returned.
type Validator struct {
	rooms     RoomFinder
	occupancy OccupancyReader
}

// NewValidator creates a Validator reading from the given ledger views.
func NewValidator(rooms RoomFinder, occupancy OccupancyReader) *Validator {
	return &Validator{rooms: rooms, occupancy: occupancy}
}

// Validate returns the target room when the request is acceptable.
func (v *Validator) Validate(ctx context.Context, req Request) (*room.Room, error) {
	rm, err := v.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRoomNotFound(req.RoomID)
		}
		return nil, err
	}

	if !req.Stay.Valid() {
		return nil, ErrInvalidDateRange()
	}

	if !rm.IsAvailable() {
		return nil, ErrRoomUnavailable()
	}

	if err := v.CheckCapacity(ctx, rm, req.Stay, uuid.Nil); err != nil {
		return nil, err
	}

	dup, err := v.occupancy.HasActiveOverlap(ctx, req.StudentID, rm.ID(), req.Stay)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateBooking()
	}

	return rm, nil
}

// CheckCapacity fails with CapacityExceeded when paid active bookings overlapping
// stay already fill the room. Unpaid bookings never count.
func (v *Validator) CheckCapacity(ctx context.Context, rm *room.Room, stay Stay, excludeID uuid.UUID) error {
	paid, err := v.occupancy.CountPaidActiveOverlapping(ctx, rm.ID(), stay, excludeID)
	if err != nil {
		return err
	}
	if paid >= int64(rm.MaxOccupancy()) {
		return ErrCapacityExceeded()
	}
	return nil
}
