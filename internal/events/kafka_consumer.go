package events

import (
	"context"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RoomRecomputer re-derives a room's availability from its bookings and payments.
type RoomRecomputer interface {
	RecomputeRoom(ctx context.Context, roomID uuid.UUID) error
}

// AvailabilityConsumer listens to booking events and re-runs availability
// recomputation for the affected room. Recomputation is idempotent, so redelivered
// or out-of-order events are harmless.
type AvailabilityConsumer struct {
	consumer   *kafka.Consumer
	recomputer RoomRecomputer
	logger     *zap.Logger
}

// NewAvailabilityConsumer creates a new consumer for booking events.
func NewAvailabilityConsumer(
	brokers []string,
	groupID string,
	recomputer RoomRecomputer,
	logger *zap.Logger,
) *AvailabilityConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &AvailabilityConsumer{
		consumer:   consumer,
		recomputer: recomputer,
		logger:     logger,
	}
}

// Start begins consuming booking events. It blocks until the context is cancelled.
func (c *AvailabilityConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *AvailabilityConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("skipping unparseable booking event",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil
	}

	c.logger.Debug("received booking event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch cloudEvent.Type {
	case BookingConfirmed, BookingCancelled, BookingRejected:
		var event BookingEvent
		if err := cloudEvent.ParseData(&event); err != nil {
			c.logger.Error("failed to parse BookingEvent data", zap.Error(err))
			return nil
		}
		return c.recompute(ctx, event.RoomID, cloudEvent.Type)

	case PaymentRefunded:
		var event PaymentRefundedEvent
		if err := cloudEvent.ParseData(&event); err != nil {
			c.logger.Error("failed to parse PaymentRefundedEvent data", zap.Error(err))
			return nil
		}
		return c.recompute(ctx, event.RoomID, cloudEvent.Type)

	default:
		return nil
	}
}

func (c *AvailabilityConsumer) recompute(ctx context.Context, roomID uuid.UUID, eventType string) error {
	if roomID == uuid.Nil {
		return nil
	}
	if err := c.recomputer.RecomputeRoom(ctx, roomID); err != nil {
		c.logger.Error("availability recomputation failed",
			zap.String("room_id", roomID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close closes the underlying Kafka consumer.
func (c *AvailabilityConsumer) Close() error {
	return c.consumer.Close()
}
