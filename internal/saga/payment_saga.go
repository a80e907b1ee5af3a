package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/adapter"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"go.uber.org/zap"
)

// SagaStep represents a single step in a saga with execute and compensate actions.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs steps in order and compensates the completed ones in reverse when a
// later step fails.
type Saga struct {
	name   string
	steps  []SagaStep
	logger *zap.Logger
}

// NewSaga creates a new saga orchestrator.
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

// AddStep appends a step to the saga.
func (s *Saga) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
}

// Execute runs all saga steps in order.
func (s *Saga) Execute(ctx context.Context) error {
	done := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		s.logger.Debug("executing saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)

		if err := step.Execute(ctx); err != nil {
			s.logger.Warn("saga step failed, compensating",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx, done)
			return fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}
		done = append(done, step)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []SagaStep) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
}

// PaymentSagaService orchestrates opening a checkout session for a booking.
type PaymentSagaService struct {
	validator *booking.Validator
	gateway   adapter.PaymentGateway
	publisher events.Publisher
	logger    *zap.Logger
}

// NewPaymentSagaService creates a new PaymentSagaService.
func NewPaymentSagaService(
	validator *booking.Validator,
	gateway adapter.PaymentGateway,
	publisher events.Publisher,
	logger *zap.Logger,
) *PaymentSagaService {
	return &PaymentSagaService{
		validator: validator,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

// InitializeCheckoutSaga re-checks capacity without counting b itself, opens a
// gateway session for amountMinor and announces it. A session whose announcement
// fails is abandoned; the gateway expires it.
func (s *PaymentSagaService) InitializeCheckoutSaga(
	ctx context.Context,
	b *booking.Booking,
	rm *room.Room,
	amountMinor int64,
	email string,
) (*adapter.Checkout, error) {
	var checkout *adapter.Checkout

	saga := NewSaga("initialize_checkout", s.logger)

	saga.AddStep(SagaStep{
		Name: "check_capacity",
		Execute: func(ctx context.Context) error {
			return s.validator.CheckCapacity(ctx, rm, b.Stay(), b.ID())
		},
	})

	saga.AddStep(SagaStep{
		Name: "initialize_gateway_session",
		Execute: func(ctx context.Context) error {
			var err error
			checkout, err = s.gateway.Initialize(ctx, amountMinor, email, b.ID())
			return err
		},
		Compensate: func(ctx context.Context) error {
			s.logger.Warn("abandoning checkout session",
				zap.String("booking_id", b.ID().String()),
				zap.String("reference", checkout.Reference),
			)
			return nil
		},
	})

	saga.AddStep(SagaStep{
		Name: "publish_payment_initiated",
		Execute: func(ctx context.Context) error {
			return s.publisher.Publish(ctx, events.PaymentInitiated, b.ID(), events.PaymentInitiatedEvent{
				BookingID:   b.ID(),
				RoomID:      rm.ID(),
				Reference:   checkout.Reference,
				AmountMinor: amountMinor,
				OccurredAt:  time.Now().UTC(),
			})
		},
	})

	if err := saga.Execute(ctx); err != nil {
		return nil, err
	}
	return checkout, nil
}
