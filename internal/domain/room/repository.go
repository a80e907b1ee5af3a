package room

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ListFilter narrows the public room listing. Zero fields match every room.
type ListFilter struct {
	PriceMinMinor int64
	PriceMaxMinor int64
	// HostelName matches case-insensitively anywhere in the hostel name.
	HostelName string
}

// Matches reports whether r passes every set field of the filter.
func (f ListFilter) Matches(r *Room) bool {
	if f.PriceMinMinor > 0 && r.PricePerNightMinor() < f.PriceMinMinor {
		return false
	}
	if f.PriceMaxMinor > 0 && r.PricePerNightMinor() > f.PriceMaxMinor {
		return false
	}
	if f.HostelName != "" && !strings.Contains(strings.ToLower(r.HostelName()), strings.ToLower(f.HostelName)) {
		return false
	}
	return true
}

// RoomRepository defines the persistence contract for rooms.
type RoomRepository interface {
	// FindByID retrieves a room by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByIDForUpdate retrieves a room and locks its row until the enclosing
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)

	// ListByProvider retrieves the rooms owned by a provider.
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Room, error)

	// ListAvailable retrieves rooms currently flagged as available that pass
	// the filter, paginated.
	ListAvailable(ctx context.Context, filter ListFilter, page, limit int) ([]*Room, int64, error)

	// Save persists a new room.
	Save(ctx context.Context, room *Room) error

	// UpdateAvailability persists the availability flag of a room.
	UpdateAvailability(ctx context.Context, room *Room) error
}
