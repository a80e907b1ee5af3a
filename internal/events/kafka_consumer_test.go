package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRecomputer struct {
	rooms []uuid.UUID
	err   error
}

func (r *recordingRecomputer) RecomputeRoom(_ context.Context, roomID uuid.UUID) error {
	r.rooms = append(r.rooms, roomID)
	return r.err
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: value}
}

func newTestConsumer(rec RoomRecomputer) *AvailabilityConsumer {
	return &AvailabilityConsumer{recomputer: rec, logger: zap.NewNop()}
}

func TestAvailabilityConsumer_RecomputesOnOccupancyEvents(t *testing.T) {
	roomID := uuid.New()
	rec := &recordingRecomputer{}
	c := newTestConsumer(rec)

	for _, eventType := range []string{BookingConfirmed, BookingCancelled, BookingRejected} {
		err := c.handleMessage(context.Background(), message(t, eventType, BookingEvent{BookingID: uuid.New(), RoomID: roomID}))
		require.NoError(t, err)
	}
	err := c.handleMessage(context.Background(), message(t, PaymentRefunded, PaymentRefundedEvent{RoomID: roomID}))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{roomID, roomID, roomID, roomID}, rec.rooms)
}

func TestAvailabilityConsumer_IgnoresOtherEvents(t *testing.T) {
	rec := &recordingRecomputer{}
	c := newTestConsumer(rec)

	require.NoError(t, c.handleMessage(context.Background(), message(t, BookingCreated, BookingEvent{RoomID: uuid.New()})))
	require.NoError(t, c.handleMessage(context.Background(), message(t, PaymentInitiated, PaymentInitiatedEvent{RoomID: uuid.New()})))
	require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))

	assert.Empty(t, rec.rooms)
}

func TestAvailabilityConsumer_ReturnsRecomputeError(t *testing.T) {
	rec := &recordingRecomputer{err: errors.New("db down")}
	c := newTestConsumer(rec)

	err := c.handleMessage(context.Background(), message(t, BookingCancelled, BookingEvent{RoomID: uuid.New()}))
	assert.Error(t, err)
}
