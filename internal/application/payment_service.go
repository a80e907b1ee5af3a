package application

import (
	"context"
	"strings"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/saga"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InitializePaymentRequest is the DTO for opening a checkout session.
type InitializePaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
}

// CheckoutDTO is returned after a checkout session is opened.
type CheckoutDTO struct {
	BookingID        uuid.UUID `json:"booking_id"`
	AmountMinor      int64     `json:"amount_minor"`
	Currency         string    `json:"currency"`
	AuthorizationURL string    `json:"authorization_url"`
	AccessCode       string    `json:"access_code"`
	Reference        string    `json:"reference"`
}

// PaymentDTO is the API response DTO for payment data.
type PaymentDTO struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	AmountMinor   int64      `json:"amount_minor"`
	Currency      string     `json:"currency"`
	Method        string     `json:"method"`
	TransactionID string     `json:"transaction_id"`
	Status        string     `json:"status"`
	PaidAt        time.Time  `json:"paid_at"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PaymentService is the application service that orchestrates payment use cases.
type PaymentService struct {
	store        ledger.Store
	sagaSvc      *saga.PaymentSagaService
	availability *AvailabilityService
	publisher    events.Publisher
	currency     string
	logger       *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	store ledger.Store,
	sagaSvc *saga.PaymentSagaService,
	availability *AvailabilityService,
	publisher events.Publisher,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		store:        store,
		sagaSvc:      sagaSvc,
		availability: availability,
		publisher:    publisher,
		currency:     currency,
		logger:       logger,
	}
}

// InitializePayment opens a gateway checkout for an approved booking. The amount
// is computed here from the room price; clients never supply it.
func (s *PaymentService) InitializePayment(ctx context.Context, actor booking.Actor, req InitializePaymentRequest) (*CheckoutDTO, error) {
	b, err := s.store.Bookings().FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != booking.RoleStudent || actor.ProfileID != b.StudentID() {
		return nil, booking.ErrForbidden("you are not authorized to pay for this booking")
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), actor.Email) {
		return nil, domain.NewValidationError(domain.CodeValidation, "email does not match the student's email")
	}
	if b.Status() != booking.StatusApproved {
		return nil, domain.New(domain.ErrInvalidState, booking.CodeIllegalTransition, "only approved bookings can be paid for")
	}

	rm, err := s.store.Rooms().FindByID(ctx, b.RoomID())
	if err != nil {
		return nil, err
	}
	amount := b.TotalAmount(rm.PricePerNightMinor())

	s.logger.Info("initializing payment",
		zap.String("booking_id", b.ID().String()),
		zap.String("room_id", rm.ID().String()),
		zap.Int64("amount_minor", amount),
	)

	checkout, err := s.sagaSvc.InitializeCheckoutSaga(ctx, b, rm, amount, actor.Email)
	if err != nil {
		s.logger.Error("failed to initialize payment", zap.String("booking_id", b.ID().String()), zap.Error(err))
		return nil, err
	}

	return &CheckoutDTO{
		BookingID:        b.ID(),
		AmountMinor:      amount,
		Currency:         s.currency,
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
		Reference:        checkout.Reference,
	}, nil
}

// GetPaymentByBooking retrieves the payment of a booking visible to actor.
func (s *PaymentService) GetPaymentByBooking(ctx context.Context, actor booking.Actor, bookingID uuid.UUID) (*PaymentDTO, error) {
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

	p, err := s.store.Payments().FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toPaymentDTO(p)
	return &dto, nil
}

// RefundPayment marks a booking's payment refunded and recomputes its room (admin).
// The booking keeps its status; a fresh charge may be reconciled afterwards.
func (s *PaymentService) RefundPayment(ctx context.Context, bookingID uuid.UUID) (*PaymentDTO, error) {
	var (
		p  *payment.Payment
		b  *booking.Booking
		rm uuid.UUID
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Repositories) error {
		var err error
		if b, err = tx.Bookings().FindByIDForUpdate(ctx, bookingID); err != nil {
			return err
		}
		locked, err := tx.Rooms().FindByIDForUpdate(ctx, b.RoomID())
		if err != nil {
			return err
		}
		rm = locked.ID()

		if p, err = tx.Payments().FindByBookingID(ctx, bookingID); err != nil {
			return err
		}
		if err := p.MarkRefunded(); err != nil {
			return err
		}
		if err := tx.Payments().UpdateStatus(ctx, p); err != nil {
			return err
		}
		return s.availability.apply(ctx, tx, locked)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment refunded",
		zap.String("payment_id", p.ID().String()),
		zap.String("booking_id", bookingID.String()),
	)
	if err := s.publisher.Publish(ctx, events.PaymentRefunded, bookingID, events.PaymentRefundedEvent{
		PaymentID:   p.ID(),
		BookingID:   bookingID,
		RoomID:      rm,
		AmountMinor: p.AmountMinor(),
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Error("failed to publish payment refunded event", zap.Error(err))
	}

	dto := toPaymentDTO(p)
	return &dto, nil
}

// --- Admin methods ---

// PaymentStatsDTO holds payment statistics for the admin dashboard.
type PaymentStatsDTO struct {
	TotalRevenueMinor int64            `json:"total_revenue_minor"`
	TotalPayments     int64            `json:"total_payments"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ListAllPayments returns a paginated list of all payments (admin).
func (s *PaymentService) ListAllPayments(ctx context.Context, page, limit int) ([]PaymentDTO, int64, error) {
	payments, total, err := s.store.Payments().ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, total, nil
}

// GetPaymentStats returns aggregate payment statistics (admin).
func (s *PaymentService) GetPaymentStats(ctx context.Context) (*PaymentStatsDTO, error) {
	revenue, counts, err := s.store.Payments().GetRevenueStats(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &PaymentStatsDTO{
		TotalRevenueMinor: revenue,
		TotalPayments:     total,
		ByStatus:          counts,
	}, nil
}

// toPaymentDTO maps a domain Payment to a PaymentDTO.
func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		AmountMinor:   p.AmountMinor(),
		Currency:      p.Currency(),
		Method:        string(p.Method()),
		TransactionID: p.TransactionID(),
		Status:        string(p.Status()),
		PaidAt:        p.PaidAt(),
		RefundedAt:    p.RefundedAt(),
		CreatedAt:     p.CreatedAt(),
	}
}
