package repository

import (
	"context"
	"errors"
	"time"

	bookingDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	paymentDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM persistence model for the bookings table. The partial
// unique index keeps a student from holding two active bookings for the same room
// and dates; the check constraint rejects zero or negative stays.
type BookingModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	StudentID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_bookings_active_student_room_stay,where:status <> 'rejected' AND status <> 'cancelled'"`
	RoomID       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_bookings_active_student_room_stay"`
	Room         *RoomModel     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	CheckInDate  datatypes.Date `gorm:"not null;uniqueIndex:uq_bookings_active_student_room_stay;check:chk_bookings_check_in_before_check_out,check_in_date < check_out_date"`
	CheckOutDate datatypes.Date `gorm:"not null;uniqueIndex:uq_bookings_active_student_room_stay"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt    time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time      `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of BookingRepository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a booking with SELECT ... FOR UPDATE.
func (r *BookingRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *BookingRepositoryImpl) find(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrBookingNotFound(id)
		}
		return nil, err
	}
	return bookingToDomain(&model), nil
}

// ListByStudent retrieves a student's bookings, newest first.
func (r *BookingRepositoryImpl) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// ListByProviderAndStatus retrieves bookings on a provider's rooms in one status.
func (r *BookingRepositoryImpl) ListByProviderAndStatus(ctx context.Context, providerID uuid.UUID, status bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("bookings.*").
		Joins("JOIN rooms ON rooms.id = bookings.room_id").
		Where("rooms.provider_id = ? AND bookings.status = ?", providerID, string(status)).
		Order("bookings.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// CountByStatusForProvider returns booking counts per status across a provider's rooms.
func (r *BookingRepositoryImpl) CountByStatusForProvider(ctx context.Context, providerID uuid.UUID) (map[bookingDomain.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("bookings.status AS status, count(*) AS count").
		Joins("JOIN rooms ON rooms.id = bookings.room_id").
		Where("rooms.provider_id = ?", providerID).
		Group("bookings.status").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[bookingDomain.Status]int64, len(results))
	for _, sc := range results {
		counts[bookingDomain.Status(sc.Status)] = sc.Count
	}
	return counts, nil
}

// CountPaidActiveOverlapping counts active, paid bookings on roomID overlapping stay.
func (r *BookingRepositoryImpl) CountPaidActiveOverlapping(ctx context.Context, roomID uuid.UUID, stay bookingDomain.Stay, excludeID uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Joins("JOIN payments ON payments.booking_id = bookings.id").
		Where("bookings.room_id = ?", roomID).
		Where("bookings.status IN ?", statusStrings(bookingDomain.ActiveStatuses)).
		Where("payments.status = ?", string(paymentDomain.StatusSuccess)).
		Where("bookings.check_in_date < ? AND bookings.check_out_date > ?", stay.CheckOut, stay.CheckIn)
	if excludeID != uuid.Nil {
		q = q.Where("bookings.id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasActiveOverlap reports whether the student holds an active overlapping booking.
func (r *BookingRepositoryImpl) HasActiveOverlap(ctx context.Context, studentID, roomID uuid.UUID, stay bookingDomain.Stay) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("student_id = ? AND room_id = ?", studentID, roomID).
		Where("status IN ?", statusStrings(bookingDomain.ActiveStatuses)).
		Where("check_in_date < ? AND check_out_date > ?", stay.CheckOut, stay.CheckIn).
		Count(&count).Error
	return count > 0, err
}

// ListPaidOccupyingStays returns stays of approved/confirmed paid bookings on roomID.
func (r *BookingRepositoryImpl) ListPaidOccupyingStays(ctx context.Context, roomID uuid.UUID) ([]bookingDomain.Stay, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("bookings.check_in_date, bookings.check_out_date").
		Joins("JOIN payments ON payments.booking_id = bookings.id").
		Where("bookings.room_id = ?", roomID).
		Where("bookings.status IN ?", statusStrings(bookingDomain.OccupyingStatuses)).
		Where("payments.status = ?", string(paymentDomain.StatusSuccess)).
		Find(&models).Error; err != nil {
		return nil, err
	}

	stays := make([]bookingDomain.Stay, len(models))
	for i, m := range models {
		stays[i] = bookingDomain.NewStay(time.Time(m.CheckInDate), time.Time(m.CheckOutDate))
	}
	return stays, nil
}

// Save persists a new booking.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(bookingToModel(b)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bookingDomain.ErrDuplicateBooking()
		}
		if errors.Is(err, gorm.ErrCheckConstraintViolated) {
			return bookingDomain.ErrInvalidDateRange()
		}
		return err
	}
	return nil
}

// UpdateStatus persists the booking's status.
func (r *BookingRepositoryImpl) UpdateStatus(ctx context.Context, b *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", b.ID()).
		Updates(map[string]interface{}{
			"status":     string(b.Status()),
			"updated_at": b.UpdatedAt(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return bookingDomain.ErrDuplicateBooking()
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bookingDomain.ErrBookingNotFound(b.ID())
	}
	return nil
}

func statusStrings(statuses []bookingDomain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func bookingsToDomain(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = bookingToDomain(&models[i])
	}
	return bookings
}

// bookingToDomain maps a BookingModel to the domain Booking aggregate.
func bookingToDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID,
		m.StudentID,
		m.RoomID,
		bookingDomain.NewStay(time.Time(m.CheckInDate), time.Time(m.CheckOutDate)),
		bookingDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// bookingToModel maps a domain Booking aggregate to a BookingModel.
func bookingToModel(b *bookingDomain.Booking) *BookingModel {
	stay := b.Stay()
	return &BookingModel{
		ID:           b.ID(),
		StudentID:    b.StudentID(),
		RoomID:       b.RoomID(),
		CheckInDate:  datatypes.Date(stay.CheckIn),
		CheckOutDate: datatypes.Date(stay.CheckOut),
		Status:       string(b.Status()),
		CreatedAt:    b.CreatedAt(),
		UpdatedAt:    b.UpdatedAt(),
	}
}
