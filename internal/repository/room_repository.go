package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	roomDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomModel is the GORM persistence model for the rooms table.
type RoomModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	HostelName         string    `gorm:"type:varchar(100);not null"`
	RoomNumber         string    `gorm:"type:varchar(50);not null"`
	Location           string    `gorm:"type:varchar(255)"`
	Description        string    `gorm:"type:text"`
	PricePerNightMinor int64     `gorm:"not null;check:chk_rooms_price_positive,price_per_night_minor > 0"`
	MaxOccupancy       int       `gorm:"not null;check:chk_rooms_occupancy_positive,max_occupancy > 0"`
	IsAvailable        bool      `gorm:"not null;default:true;index"`
	CreatedAt          time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt          time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (RoomModel) TableName() string {
	return "rooms"
}

// RoomRepositoryImpl is the GORM-based implementation of RoomRepository.
type RoomRepositoryImpl struct {
	db *gorm.DB
}

// NewRoomRepository creates a new GORM-based room repository.
func NewRoomRepository(db *gorm.DB) *RoomRepositoryImpl {
	return &RoomRepositoryImpl{db: db}
}

// FindByID retrieves a room by its unique ID.
func (r *RoomRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a room with SELECT ... FOR UPDATE.
func (r *RoomRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *RoomRepositoryImpl) find(db *gorm.DB, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, err
	}
	return roomToDomain(&model), nil
}

// ListByProvider retrieves the rooms owned by a provider.
func (r *RoomRepositoryImpl) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*roomDomain.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("hostel_name, room_number").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return roomsToDomain(models), nil
}

// ListAvailable retrieves available rooms matching the filter with pagination.
func (r *RoomRepositoryImpl) ListAvailable(ctx context.Context, filter roomDomain.ListFilter, page, limit int) ([]*roomDomain.Room, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RoomModel{}).Scopes(availableMatching(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []RoomModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Scopes(availableMatching(filter)).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return roomsToDomain(models), total, nil
}

func availableMatching(filter roomDomain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_available = ?", true)
		if filter.PriceMinMinor > 0 {
			db = db.Where("price_per_night_minor >= ?", filter.PriceMinMinor)
		}
		if filter.PriceMaxMinor > 0 {
			db = db.Where("price_per_night_minor <= ?", filter.PriceMaxMinor)
		}
		if filter.HostelName != "" {
			db = db.Where("hostel_name ILIKE ?", "%"+escapeLike(filter.HostelName)+"%")
		}
		return db
	}
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// Save persists a new room.
func (r *RoomRepositoryImpl) Save(ctx context.Context, room *roomDomain.Room) error {
	return r.db.WithContext(ctx).Create(roomToModel(room)).Error
}

// UpdateAvailability persists the availability flag.
func (r *RoomRepositoryImpl) UpdateAvailability(ctx context.Context, room *roomDomain.Room) error {
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ?", room.ID()).
		Updates(map[string]interface{}{
			"is_available": room.IsAvailable(),
			"updated_at":   room.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Room", room.ID().String())
	}
	return nil
}

func roomsToDomain(models []RoomModel) []*roomDomain.Room {
	rooms := make([]*roomDomain.Room, len(models))
	for i := range models {
		rooms[i] = roomToDomain(&models[i])
	}
	return rooms
}

// roomToDomain maps a RoomModel to the domain Room.
func roomToDomain(m *RoomModel) *roomDomain.Room {
	return roomDomain.Reconstitute(
		m.ID, m.ProviderID,
		m.HostelName, m.RoomNumber, m.Location, m.Description,
		m.PricePerNightMinor,
		m.MaxOccupancy,
		m.IsAvailable,
		m.CreatedAt, m.UpdatedAt,
	)
}

// roomToModel maps a domain Room to a RoomModel.
func roomToModel(r *roomDomain.Room) *RoomModel {
	return &RoomModel{
		ID:                 r.ID(),
		ProviderID:         r.ProviderID(),
		HostelName:         r.HostelName(),
		RoomNumber:         r.RoomNumber(),
		Location:           r.Location(),
		Description:        r.Description(),
		PricePerNightMinor: r.PricePerNightMinor(),
		MaxOccupancy:       r.MaxOccupancy(),
		IsAvailable:        r.IsAvailable(),
		CreatedAt:          r.CreatedAt(),
		UpdatedAt:          r.UpdatedAt(),
	}
}
