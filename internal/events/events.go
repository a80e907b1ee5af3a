// Package events defines the booking events this service emits and the Kafka
// plumbing that carries them.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source is the CloudEvent source of every event published here.
const Source = "hostel-booking"

// TopicBookingEvents carries booking lifecycle and payment events, keyed by booking id.
const TopicBookingEvents = "booking.events"

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
	BookingConfirmed = "booking.confirmed"
	PaymentInitiated = "payment.initiated"
	PaymentRefunded  = "payment.refunded"
)

// BookingEvent is the payload of every booking.* event.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RoomID     uuid.UUID `json:"room_id"`
	StudentID  uuid.UUID `json:"student_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentInitiatedEvent is published once a gateway checkout session exists.
type PaymentInitiatedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RoomID      uuid.UUID `json:"room_id"`
	Reference   string    `json:"reference"`
	AmountMinor int64     `json:"amount_minor"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentRefundedEvent is published when an admin refunds a payment.
type PaymentRefundedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	RoomID      uuid.UUID `json:"room_id"`
	AmountMinor int64     `json:"amount_minor"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher publishes domain events. subject is the booking the event is about.
type Publisher interface {
	Publish(ctx context.Context, eventType string, subject uuid.UUID, data interface{}) error
}

// KafkaPublisher publishes events as CloudEvents on TopicBookingEvents.
type KafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher wraps a producer.
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish wraps data in a CloudEvent and writes it to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, subject uuid.UUID, data interface{}) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return fmt.Errorf("failed to create cloud event: %w", err)
	}
	ce.Subject = subject.String()
	return p.producer.PublishEvent(ctx, TopicBookingEvents, ce)
}

// LogPublisher only logs events. It is used when Kafka is disabled.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event type and subject.
func (p *LogPublisher) Publish(_ context.Context, eventType string, subject uuid.UUID, _ interface{}) error {
	p.logger.Debug("event not published, kafka disabled",
		zap.String("type", eventType),
		zap.String("subject", subject.String()),
	)
	return nil
}
