//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/adapter"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	bookingEvents "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/repository"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/saga"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/database"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container, applies the SQL migrations and
// returns a connected GORM DB.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_hostel",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_hostel",
		SSLMode:  "disable",
	}
	logger := zap.NewNop()

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", logger))
	return db
}

// setupKafka starts a Kafka container with the booking topic created.
func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, bookingEvents.TopicBookingEvents)
	return brokers
}

// bookingStack holds wired-up services over a Postgres store.
type bookingStack struct {
	store        *repository.Store
	availability *application.AvailabilityService
	bookings     *application.BookingService
	payments     *application.PaymentService
	recon        *application.ReconciliationService
	rooms        *application.RoomService
	provider     booking.Actor
}

func setupBookingStack(t *testing.T, db *gorm.DB, publisher bookingEvents.Publisher) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	store := repository.NewStore(db)
	availability := application.NewAvailabilityService(store, logger)
	validator := booking.NewValidator(store.Rooms(), store.Bookings())
	sagaSvc := saga.NewPaymentSagaService(validator, adapter.NewMockGateway(logger), publisher, logger)

	return &bookingStack{
		store:        store,
		availability: availability,
		bookings:     application.NewBookingService(store, availability, publisher, logger),
		payments:     application.NewPaymentService(store, sagaSvc, availability, publisher, "GHS", logger),
		recon:        application.NewReconciliationService(store, availability, publisher, 1, "GHS", logger),
		rooms:        application.NewRoomService(store, logger),
		provider:     booking.Actor{UserID: uuid.New(), ProfileID: uuid.New(), Role: booking.RoleProvider, Email: "provider@example.com"},
	}
}

func student(email string) booking.Actor {
	return booking.Actor{UserID: uuid.New(), ProfileID: uuid.New(), Role: booking.RoleStudent, Email: email}
}

func (s *bookingStack) createRoom(t *testing.T, maxOccupancy int, price int64) uuid.UUID {
	t.Helper()
	rm, err := s.rooms.CreateRoom(context.Background(), s.provider, application.CreateRoomRequest{
		HostelName: "Volta Hall", RoomNumber: uuid.NewString()[:6], PricePerNightMinor: price, MaxOccupancy: maxOccupancy,
	})
	require.NoError(t, err)
	return rm.ID
}

func (s *bookingStack) approvedBooking(t *testing.T, who booking.Actor, roomID uuid.UUID, in, out string) *application.BookingDTO {
	t.Helper()
	ctx := context.Background()
	b, err := s.bookings.CreateBooking(ctx, who, application.CreateBookingRequest{RoomID: roomID, CheckInDate: in, CheckOutDate: out})
	require.NoError(t, err)
	_, err = s.bookings.UpdateStatus(ctx, s.provider, b.ID, application.UpdateBookingStatusRequest{Status: "approved"})
	require.NoError(t, err)
	return b
}

func charge(bookingID uuid.UUID, amount int64, reference string) application.ChargeNotification {
	return application.ChargeNotification{
		Event:       application.EventChargeSuccess,
		Reference:   reference,
		AmountMinor: amount,
		Currency:    "GHS",
		Channel:     "mobile_money",
		BookingID:   bookingID,
		Raw:         []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q}}`, reference)),
	}
}

func (s *bookingStack) roomAvailable(t *testing.T, roomID uuid.UUID) bool {
	t.Helper()
	rm, err := s.store.Rooms().FindByID(context.Background(), roomID)
	require.NoError(t, err)
	return rm.IsAvailable()
}

func countPayments(t *testing.T, db *gorm.DB, bookingID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&repository.PaymentModel{}).Where("booking_id = ?", bookingID).Count(&n).Error)
	return n
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected
// type about subject.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, subject uuid.UUID, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType && ce.Subject == subject.String() {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
