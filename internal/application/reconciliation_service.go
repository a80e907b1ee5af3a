package application

import (
	"context"
	"errors"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventChargeSuccess is the only gateway event that changes state.
const EventChargeSuccess = "charge.success"

// Codes logged for charges that were acknowledged but not applied. Both need a
// manual refund.
const (
	CodeAmountMismatch   = "AMOUNT_MISMATCH"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
)

// ChargeNotification is a verified gateway notification.
type ChargeNotification struct {
	Event       string
	Reference   string
	AmountMinor int64
	Currency    string
	Channel     string
	BookingID   uuid.UUID
	Raw         []byte
}

// Outcome is what reconciliation did with a notification. Every outcome is
// acknowledged to the gateway.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeIgnoredEvent
	OutcomeIgnoredStale
	OutcomeIgnoredDuplicate
	OutcomeAmountMismatch
	OutcomeCapacityExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnoredEvent:
		return "ignored_event"
	case OutcomeIgnoredStale:
		return "ignored_stale"
	case OutcomeIgnoredDuplicate:
		return "ignored_duplicate"
	case OutcomeAmountMismatch:
		return "amount_mismatch"
	case OutcomeCapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}

// ReconciliationService applies verified payment notifications to bookings.
type ReconciliationService struct {
	store           ledger.Store
	availability    *AvailabilityService
	publisher       events.Publisher
	tolerance       int64
	defaultCurrency string
	logger          *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService. tolerance is the
// accepted difference between the charged amount and the booking total, in minor
// units.
func NewReconciliationService(
	store ledger.Store,
	availability *AvailabilityService,
	publisher events.Publisher,
	tolerance int64,
	defaultCurrency string,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		store:           store,
		availability:    availability,
		publisher:       publisher,
		tolerance:       tolerance,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Reconcile applies n. The booking row and then the room row stay locked until the
// transaction ends, so concurrent deliveries for one booking are applied one at a
// time and only the first can confirm it.
func (s *ReconciliationService) Reconcile(ctx context.Context, n ChargeNotification) (Outcome, error) {
	log := s.logger.With(
		zap.String("booking_id", n.BookingID.String()),
		zap.String("reference", n.Reference),
		zap.String("event", n.Event),
	)

	if n.Event != EventChargeSuccess {
		log.Info("gateway event acknowledged without action")
		return OutcomeIgnoredEvent, nil
	}

	var (
		outcome Outcome
		b       *booking.Booking
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Repositories) error {
		var (
			rm  *room.Room
			err error
		)
		if b, err = tx.Bookings().FindByIDForUpdate(ctx, n.BookingID); err != nil {
			return err
		}
		if rm, err = tx.Rooms().FindByIDForUpdate(ctx, b.RoomID()); err != nil {
			return err
		}

		if b.Status() != booking.StatusApproved {
			outcome = OutcomeIgnoredStale
			return nil
		}

		existing, err := tx.Payments().FindByBookingID(ctx, b.ID())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil && !existing.IsRefunded() {
			outcome = OutcomeIgnoredDuplicate
			return nil
		}
		seen, err := tx.Payments().ExistsByTransactionID(ctx, n.Reference)
		if err != nil {
			return err
		}
		if seen {
			outcome = OutcomeIgnoredDuplicate
			return nil
		}

		total := b.TotalAmount(rm.PricePerNightMinor())
		if !payment.AmountMatches(n.AmountMinor, total, s.tolerance) {
			log.Warn("payment amount does not match booking total",
				zap.String("code", CodeAmountMismatch),
				zap.Int64("amount_minor", n.AmountMinor),
				zap.Int64("total_amount_minor", total),
			)
			outcome = OutcomeAmountMismatch
			return nil
		}

		// The room row is locked, so paid bookings counted here cannot change
		// before this one commits.
		paid, err := tx.Bookings().CountPaidActiveOverlapping(ctx, rm.ID(), b.Stay(), b.ID())
		if err != nil {
			return err
		}
		if paid >= int64(rm.MaxOccupancy()) {
			log.Warn("room filled before payment arrived, charge needs a refund",
				zap.String("code", CodeCapacityExceeded),
				zap.String("room_id", rm.ID().String()),
				zap.Int64("paid_active_count", paid),
				zap.Int("max_occupancy", rm.MaxOccupancy()),
				zap.Int64("amount_minor", n.AmountMinor),
			)
			outcome = OutcomeCapacityExceeded
			return nil
		}

		if existing != nil {
			if err := tx.Payments().Delete(ctx, existing.ID()); err != nil {
				return err
			}
			log.Info("replaced refunded payment", zap.String("payment_id", existing.ID().String()))
		}

		currency := n.Currency
		if currency == "" {
			currency = s.defaultCurrency
		}
		p, err := payment.NewSuccessfulPayment(b.ID(), n.AmountMinor, currency, payment.MethodFromChannel(n.Channel), n.Reference, n.Raw)
		if err != nil {
			return err
		}
		if err := tx.Payments().Save(ctx, p); err != nil {
			return err
		}

		if err := b.Confirm(); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, b); err != nil {
			return err
		}

		outcome = OutcomeApplied
		return s.availability.apply(ctx, tx, rm)
	})
	if err != nil {
		log.Error("payment reconciliation failed", zap.Error(err))
		return 0, err
	}

	log.Info("payment notification reconciled", zap.String("outcome", outcome.String()))
	if outcome == OutcomeApplied {
		publishBookingEvent(ctx, s.publisher, s.logger, events.BookingConfirmed, b)
	}
	return outcome, nil
}
