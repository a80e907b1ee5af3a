package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
)

// Status represents the state of a settled payment.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Method is how the payer settled.
type Method string

const (
	MethodCard        Method = "card"
	MethodMobileMoney Method = "mobile_money"
	MethodOther       Method = "other"
)

// MethodFromChannel maps a gateway channel name to a Method.
func MethodFromChannel(channel string) Method {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "card":
		return MethodCard
	case "mobile_money", "momo":
		return MethodMobileMoney
	default:
		return MethodOther
	}
}

// Payment is the aggregate root for a booking's settled payment. There is at most
// one per booking and it is only created from a verified gateway notification.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	amountMinor   int64
	currency      string
	method        Method
	transactionID string
	status        Status
	gatewayEvent  []byte
	paidAt        time.Time
	refundedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewSuccessfulPayment records a payment the gateway reported as succeeded.
func NewSuccessfulPayment(bookingID uuid.UUID, amountMinor int64, currency string, method Method, transactionID string, gatewayEvent []byte) (*Payment, error) {
	if amountMinor <= 0 {
		return nil, domain.NewValidationError(domain.CodeValidation, fmt.Sprintf("payment amount must be positive, got %d", amountMinor))
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, domain.NewValidationError(domain.CodeValidation, "transaction reference is required")
	}

	now := time.Now().UTC()
	return &Payment{
		id:            uuid.New(),
		bookingID:     bookingID,
		amountMinor:   amountMinor,
		currency:      currency,
		method:        method,
		transactionID: transactionID,
		status:        StatusSuccess,
		gatewayEvent:  gatewayEvent,
		paidAt:        now,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID          { return p.id }
func (p *Payment) BookingID() uuid.UUID   { return p.bookingID }
func (p *Payment) AmountMinor() int64     { return p.amountMinor }
func (p *Payment) Currency() string       { return p.currency }
func (p *Payment) Method() Method         { return p.method }
func (p *Payment) TransactionID() string  { return p.transactionID }
func (p *Payment) Status() Status         { return p.status }
func (p *Payment) GatewayEvent() []byte   { return p.gatewayEvent }
func (p *Payment) PaidAt() time.Time      { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time { return p.refundedAt }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time   { return p.updatedAt }

// IsRefunded reports whether the payment was refunded.
func (p *Payment) IsRefunded() bool { return p.status == StatusRefunded }

// --- Behavior / State Transitions ---

// MarkRefunded transitions a successful payment to refunded. It is the only
// in-place mutation a payment allows.
func (p *Payment) MarkRefunded() error {
	if p.status != StatusSuccess {
		return domain.NewInvalidStateError(string(p.status), string(StatusRefunded))
	}
	now := time.Now().UTC()
	p.status = StatusRefunded
	p.refundedAt = &now
	p.updatedAt = now
	return nil
}

// AmountMatches reports whether amountMinor equals the payment's expected total
// within tolerance minor units.
func AmountMatches(amountMinor, expectedMinor, tolerance int64) bool {
	diff := amountMinor - expectedMinor
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// --- Reconstitution (used by repository to rebuild from persistence) ---

// Reconstitute rebuilds a Payment from persisted data.
func Reconstitute(
	id, bookingID uuid.UUID,
	amountMinor int64,
	currency string,
	method Method,
	transactionID string,
	status Status,
	gatewayEvent []byte,
	paidAt time.Time,
	refundedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		amountMinor:   amountMinor,
		currency:      currency,
		method:        method,
		transactionID: transactionID,
		status:        status,
		gatewayEvent:  gatewayEvent,
		paidAt:        paidAt,
		refundedAt:    refundedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}
