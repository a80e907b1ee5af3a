package application

import (
	"context"
	"sync"
	"testing"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/adapter"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger/ledgertest"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/saga"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	day1 = "2026-01-01"
	day3 = "2026-01-03"
	day5 = "2026-01-05"
)

type publishedEvent struct {
	Type    string
	Subject uuid.UUID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, subject uuid.UUID, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Subject: subject})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store        *ledgertest.Store
	publisher    *recordingPublisher
	availability *AvailabilityService
	bookings     *BookingService
	recon        *ReconciliationService
	payments     *PaymentService
	rooms        *RoomService
	dashboard    *DashboardService
	provider     booking.Actor
	admin        booking.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := ledgertest.NewStore()
	pub := &recordingPublisher{}

	availability := NewAvailabilityService(store, logger)
	validator := booking.NewValidator(store.Rooms(), store.Bookings())
	sagaSvc := saga.NewPaymentSagaService(validator, adapter.NewMockGateway(logger), pub, logger)

	return &fixture{
		store:        store,
		publisher:    pub,
		availability: availability,
		bookings:     NewBookingService(store, availability, pub, logger),
		recon:        NewReconciliationService(store, availability, pub, 1, "GHS", logger),
		payments:     NewPaymentService(store, sagaSvc, availability, pub, "GHS", logger),
		rooms:        NewRoomService(store, logger),
		dashboard:    NewDashboardService(store, logger),
		provider:     booking.Actor{UserID: uuid.New(), ProfileID: uuid.New(), Role: booking.RoleProvider, Email: "provider@example.com"},
		admin:        booking.Actor{UserID: uuid.New(), ProfileID: uuid.New(), Role: booking.RoleAdmin, Email: "admin@example.com"},
	}
}

func newStudent(email string) booking.Actor {
	return booking.Actor{UserID: uuid.New(), ProfileID: uuid.New(), Role: booking.RoleStudent, Email: email}
}

func (f *fixture) createRoom(t *testing.T, maxOccupancy int, pricePerNight int64) uuid.UUID {
	t.Helper()
	rm, err := f.rooms.CreateRoom(context.Background(), f.provider, CreateRoomRequest{
		HostelName:         "Unity Hall",
		RoomNumber:         uuid.NewString()[:6],
		PricePerNightMinor: pricePerNight,
		MaxOccupancy:       maxOccupancy,
	})
	require.NoError(t, err)
	return rm.ID
}

func (f *fixture) book(t *testing.T, student booking.Actor, roomID uuid.UUID, in, out string) *BookingDTO {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), student, CreateBookingRequest{
		RoomID: roomID, CheckInDate: in, CheckOutDate: out,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) approve(t *testing.T, bookingID uuid.UUID) {
	t.Helper()
	_, err := f.bookings.UpdateStatus(context.Background(), f.provider, bookingID, UpdateBookingStatusRequest{Status: "approved"})
	require.NoError(t, err)
}

func (f *fixture) charge(bookingID uuid.UUID, amount int64, reference string) ChargeNotification {
	return ChargeNotification{
		Event:       EventChargeSuccess,
		Reference:   reference,
		AmountMinor: amount,
		Currency:    "GHS",
		Channel:     "card",
		BookingID:   bookingID,
		Raw:         []byte(`{"event":"charge.success"}`),
	}
}

// bookAndPay creates, approves and pays a booking.
func (f *fixture) bookAndPay(t *testing.T, student booking.Actor, roomID uuid.UUID, in, out string) *BookingDTO {
	t.Helper()
	b := f.book(t, student, roomID, in, out)
	f.approve(t, b.ID)
	outcome, err := f.recon.Reconcile(context.Background(), f.charge(b.ID, b.TotalAmountMinor, "ref_"+b.ID.String()))
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)
	return b
}

func (f *fixture) roomAvailable(t *testing.T, roomID uuid.UUID) bool {
	t.Helper()
	rm, err := f.rooms.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	return rm.IsAvailable
}

func (f *fixture) bookingStatus(t *testing.T, bookingID uuid.UUID) booking.Status {
	t.Helper()
	b, err := f.store.Bookings().FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	return b.Status()
}

func (f *fixture) paymentCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.store.Payments().ListAll(context.Background(), 1, 100)
	require.NoError(t, err)
	return total
}
