package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
)

// Room is a bookable hostel room owned by one provider. Availability is derived
// from paid bookings and is rewritten by ApplyOccupancy; it is never a source of
// truth on its own.
type Room struct {
	id                 uuid.UUID
	providerID         uuid.UUID
	hostelName         string
	roomNumber         string
	location           string
	description        string
	pricePerNightMinor int64
	maxOccupancy       int
	isAvailable        bool
	createdAt          time.Time
	updatedAt          time.Time
}

// NewRoom validates and creates an available room.
func NewRoom(providerID uuid.UUID, hostelName, roomNumber, location, description string, pricePerNightMinor int64, maxOccupancy int) (*Room, error) {
	hostelName = strings.TrimSpace(hostelName)
	roomNumber = strings.TrimSpace(roomNumber)
	if hostelName == "" || roomNumber == "" {
		return nil, domain.NewValidationError(domain.CodeValidation, "hostel name and room number are required")
	}
	if pricePerNightMinor <= 0 {
		return nil, domain.NewValidationError(domain.CodeValidation, "price per night must be positive")
	}
	if maxOccupancy <= 0 {
		return nil, domain.NewValidationError(domain.CodeValidation, fmt.Sprintf("max occupancy must be positive, got %d", maxOccupancy))
	}

	now := time.Now().UTC()
	return &Room{
		id:                 uuid.New(),
		providerID:         providerID,
		hostelName:         hostelName,
		roomNumber:         roomNumber,
		location:           strings.TrimSpace(location),
		description:        description,
		pricePerNightMinor: pricePerNightMinor,
		maxOccupancy:       maxOccupancy,
		isAvailable:        true,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func (r *Room) ID() uuid.UUID             { return r.id }
func (r *Room) ProviderID() uuid.UUID     { return r.providerID }
func (r *Room) HostelName() string        { return r.hostelName }
func (r *Room) RoomNumber() string        { return r.roomNumber }
func (r *Room) Location() string          { return r.location }
func (r *Room) Description() string       { return r.description }
func (r *Room) PricePerNightMinor() int64 { return r.pricePerNightMinor }
func (r *Room) MaxOccupancy() int         { return r.maxOccupancy }
func (r *Room) IsAvailable() bool         { return r.isAvailable }
func (r *Room) CreatedAt() time.Time      { return r.createdAt }
func (r *Room) UpdatedAt() time.Time      { return r.updatedAt }

// OwnedBy reports whether providerID owns the room.
func (r *Room) OwnedBy(providerID uuid.UUID) bool {
	return r.providerID == providerID
}

// ApplyOccupancy sets availability from the current paid occupancy and reports
// whether the flag changed.
func (r *Room) ApplyOccupancy(paidActiveCount int) bool {
	available := paidActiveCount < r.maxOccupancy
	if available == r.isAvailable {
		return false
	}
	r.isAvailable = available
	r.updatedAt = time.Now().UTC()
	return true
}

// Reconstitute rebuilds a Room from persisted data.
func Reconstitute(
	id, providerID uuid.UUID,
	hostelName, roomNumber, location, description string,
	pricePerNightMinor int64,
	maxOccupancy int,
	isAvailable bool,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:                 id,
		providerID:         providerID,
		hostelName:         hostelName,
		roomNumber:         roomNumber,
		location:           location,
		description:        description,
		pricePerNightMinor: pricePerNightMinor,
		maxOccupancy:       maxOccupancy,
		isAvailable:        isAvailable,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}
