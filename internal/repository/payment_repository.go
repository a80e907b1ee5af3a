package repository

import (
	"context"
	"errors"
	"time"

	bookingDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	paymentDomain "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentModel is the GORM persistence model for the payments table.
type PaymentModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	Booking       *BookingModel  `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	AmountMinor   int64          `gorm:"not null;check:chk_payments_amount_positive,amount_minor > 0"`
	Currency      string         `gorm:"type:varchar(3);not null;default:'GHS'"`
	Method        string         `gorm:"type:varchar(20);not null"`
	TransactionID string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'success';index"`
	GatewayEvent  datatypes.JSON `gorm:"type:jsonb"`
	PaidAt        time.Time      `gorm:"type:timestamptz;not null"`
	RefundedAt    *time.Time     `gorm:"type:timestamptz"`
	CreatedAt     time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time      `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentRepositoryImpl is the GORM-based implementation of PaymentRepository.
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new GORM-based payment repository.
func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

// FindByBookingID retrieves a payment by the associated booking ID.
func (r *PaymentRepositoryImpl) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", bookingID.String())
		}
		return nil, err
	}
	return paymentToDomain(&model), nil
}

// ExistsByTransactionID reports whether a gateway reference has already been recorded.
func (r *PaymentRepositoryImpl) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	return count > 0, err
}

// Save persists a new payment aggregate.
func (r *PaymentRepositoryImpl) Save(ctx context.Context, payment *paymentDomain.Payment) error {
	if err := r.db.WithContext(ctx).Create(paymentToModel(payment)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("payment already recorded for this booking or reference")
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return bookingDomain.ErrBookingNotFound(payment.BookingID())
		}
		return err
	}
	return nil
}

// UpdateStatus persists a payment status change.
func (r *PaymentRepositoryImpl) UpdateStatus(ctx context.Context, payment *paymentDomain.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ?", payment.ID()).
		Updates(map[string]interface{}{
			"status":      string(payment.Status()),
			"refunded_at": payment.RefundedAt(),
			"updated_at":  payment.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Payment", payment.ID().String())
	}
	return nil
}

// Delete removes a payment.
func (r *PaymentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PaymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Payment", id.String())
	}
	return nil
}

// ListAll retrieves all payments with pagination (admin).
func (r *PaymentRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*paymentDomain.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i := range models {
		payments[i] = paymentToDomain(&models[i])
	}
	return payments, total, nil
}

// GetRevenueStats returns payment statistics (admin).
func (r *PaymentRepositoryImpl) GetRevenueStats(ctx context.Context) (int64, map[string]int64, error) {
	var totalRevenue int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Where("status = ?", string(paymentDomain.StatusSuccess)).
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return 0, nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalRevenue, counts, nil
}

// RevenueByRoom sums successful payments on confirmed bookings per room of a provider.
func (r *PaymentRepositoryImpl) RevenueByRoom(ctx context.Context, providerID uuid.UUID) (map[uuid.UUID]int64, error) {
	var results []struct {
		RoomID uuid.UUID
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Joins("JOIN rooms ON rooms.id = bookings.room_id").
		Where("rooms.provider_id = ?", providerID).
		Where("bookings.status = ?", string(bookingDomain.StatusConfirmed)).
		Where("payments.status = ?", string(paymentDomain.StatusSuccess)).
		Select("bookings.room_id AS room_id, SUM(payments.amount_minor) AS total").
		Group("bookings.room_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	revenue := make(map[uuid.UUID]int64, len(results))
	for _, rr := range results {
		revenue[rr.RoomID] = rr.Total
	}
	return revenue, nil
}

// paymentToDomain maps a PaymentModel to the domain Payment aggregate.
func paymentToDomain(model *PaymentModel) *paymentDomain.Payment {
	return paymentDomain.Reconstitute(
		model.ID,
		model.BookingID,
		model.AmountMinor,
		model.Currency,
		paymentDomain.Method(model.Method),
		model.TransactionID,
		paymentDomain.Status(model.Status),
		[]byte(model.GatewayEvent),
		model.PaidAt,
		model.RefundedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// paymentToModel maps a domain Payment aggregate to a PaymentModel for persistence.
func paymentToModel(p *paymentDomain.Payment) *PaymentModel {
	var event datatypes.JSON
	if len(p.GatewayEvent()) > 0 {
		event = datatypes.JSON(p.GatewayEvent())
	}
	return &PaymentModel{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		AmountMinor:   p.AmountMinor(),
		Currency:      p.Currency(),
		Method:        string(p.Method()),
		TransactionID: p.TransactionID(),
		Status:        string(p.Status()),
		GatewayEvent:  event,
		PaidAt:        p.PaidAt(),
		RefundedAt:    p.RefundedAt(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
