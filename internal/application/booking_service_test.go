package application

import (
	"context"
	"testing"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking_ComputesTotalFromRoomPrice(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 2, 10000)

	b := f.book(t, newStudent("s1@example.com"), roomID, day1, day3)

	assert.Equal(t, string(booking.StatusPending), b.Status)
	assert.Equal(t, int64(2), b.Nights)
	assert.Equal(t, int64(20000), b.TotalAmountMinor)
	assert.Equal(t, []string{events.BookingCreated}, f.publisher.types())
}

func TestCreateBooking_RejectsEmptyStayRegardlessOfRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID := f.createRoom(t, 1, 100)

	_, err := f.bookings.CreateBooking(ctx, newStudent("s@example.com"), CreateBookingRequest{RoomID: roomID, CheckInDate: day3, CheckOutDate: day3})
	assert.True(t, domain.HasCode(err, booking.CodeInvalidDateRange))

	_, err = f.bookings.CreateBooking(ctx, newStudent("s@example.com"), CreateBookingRequest{RoomID: roomID, CheckInDate: day3, CheckOutDate: day1})
	assert.True(t, domain.HasCode(err, booking.CodeInvalidDateRange))

	// Still rejected once the room is full.
	f.bookAndPay(t, newStudent("a@example.com"), roomID, day1, day3)
	_, err = f.bookings.CreateBooking(ctx, newStudent("s@example.com"), CreateBookingRequest{RoomID: roomID, CheckInDate: day5, CheckOutDate: day5})
	assert.True(t, domain.HasCode(err, booking.CodeInvalidDateRange))

	_, err = f.bookings.CreateBooking(ctx, newStudent("s@example.com"), CreateBookingRequest{RoomID: roomID, CheckInDate: "01/02/2026", CheckOutDate: day5})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateBooking_UnknownRoom(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.CreateBooking(context.Background(), newStudent("s@example.com"), CreateBookingRequest{
		RoomID: uuid.New(), CheckInDate: day1, CheckOutDate: day3,
	})
	assert.True(t, domain.HasCode(err, booking.CodeRoomNotFound))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBooking_OnlyStudents(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	_, err := f.bookings.CreateBooking(context.Background(), f.provider, CreateBookingRequest{RoomID: roomID, CheckInDate: day1, CheckOutDate: day3})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateBooking_DuplicateIsRejectedOnRetry(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 3, 100)
	student := newStudent("s@example.com")

	f.book(t, student, roomID, day1, day3)

	for i := 0; i < 2; i++ {
		_, err := f.bookings.CreateBooking(context.Background(), student, CreateBookingRequest{RoomID: roomID, CheckInDate: day1, CheckOutDate: day3})
		assert.True(t, domain.HasCode(err, booking.CodeDuplicateBooking))
	}

	// Any overlap counts, not only identical dates.
	_, err := f.bookings.CreateBooking(context.Background(), student, CreateBookingRequest{RoomID: roomID, CheckInDate: "2026-01-02", CheckOutDate: day5})
	assert.True(t, domain.HasCode(err, booking.CodeDuplicateBooking))

	mine, err := f.bookings.ListMyBookings(context.Background(), student)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreateBooking_AfterCancelTheStudentMayRebook(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	student := newStudent("s@example.com")

	b := f.book(t, student, roomID, day1, day3)
	_, err := f.bookings.CancelBooking(context.Background(), student, b.ID)
	require.NoError(t, err)

	f.book(t, student, roomID, day1, day3)
}

func TestAdjacentStaysDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	studentA := newStudent("a@example.com")
	studentB := newStudent("b@example.com")

	a := f.book(t, studentA, roomID, day1, day3)
	b := f.book(t, studentB, roomID, day3, day5)

	f.approve(t, a.ID)
	f.approve(t, b.ID)

	outcome, err := f.recon.Reconcile(context.Background(), f.charge(a.ID, a.TotalAmountMinor, "ref_a"))
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)

	_, err = f.payments.InitializePayment(context.Background(), studentB, InitializePaymentRequest{BookingID: b.ID, Email: "b@example.com"})
	require.NoError(t, err)

	outcome, err = f.recon.Reconcile(context.Background(), f.charge(b.ID, b.TotalAmountMinor, "ref_b"))
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)

	assert.Equal(t, booking.StatusConfirmed, f.bookingStatus(t, a.ID))
	assert.Equal(t, booking.StatusConfirmed, f.bookingStatus(t, b.ID))
}

func TestUpdateStatus_OnlyOwningProvider(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	student := newStudent("s@example.com")
	b := f.book(t, student, roomID, day1, day3)

	otherProvider := booking.Actor{ProfileID: uuid.New(), Role: booking.RoleProvider}
	_, err := f.bookings.UpdateStatus(context.Background(), otherProvider, b.ID, UpdateBookingStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.bookings.UpdateStatus(context.Background(), student, b.ID, UpdateBookingStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, booking.StatusPending, f.bookingStatus(t, b.ID))
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	b := f.book(t, newStudent("s@example.com"), roomID, day1, day3)

	_, err := f.bookings.UpdateStatus(context.Background(), f.provider, b.ID, UpdateBookingStatusRequest{Status: "rejected"})
	require.NoError(t, err)

	_, err = f.bookings.UpdateStatus(context.Background(), f.provider, b.ID, UpdateBookingStatusRequest{Status: "approved"})
	assert.True(t, domain.HasCode(err, booking.CodeIllegalTransition))
	assert.Equal(t, booking.StatusRejected, f.bookingStatus(t, b.ID))

	_, err = f.bookings.UpdateStatus(context.Background(), f.provider, b.ID, UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCancel_OnlyTheBookingsStudent(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	b := f.book(t, newStudent("s@example.com"), roomID, day1, day3)

	_, err := f.bookings.CancelBooking(context.Background(), newStudent("x@example.com"), b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.bookings.CancelBooking(context.Background(), f.provider, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancelConfirmedBooking_DeletesPaymentAndFreesRoom(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	student := newStudent("s@example.com")

	b := f.bookAndPay(t, student, roomID, day1, day3)
	require.False(t, f.roomAvailable(t, roomID))
	require.Equal(t, int64(1), f.paymentCount(t))

	dto, err := f.bookings.CancelBooking(context.Background(), student, b.ID)
	require.NoError(t, err)

	assert.Equal(t, string(booking.StatusCancelled), dto.Status)
	assert.Equal(t, int64(0), f.paymentCount(t))
	assert.True(t, f.roomAvailable(t, roomID))
	assert.Contains(t, f.publisher.types(), events.BookingCancelled)
}

func TestCancel_RoomStaysUnavailableWhileStillFull(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	a := newStudent("a@example.com")
	b := newStudent("b@example.com")

	first := f.book(t, a, roomID, day1, day3)
	second := f.book(t, b, roomID, day3, day5)
	third := f.book(t, newStudent("c@example.com"), roomID, day3, day5)
	for _, dto := range []*BookingDTO{first, second, third} {
		f.approve(t, dto.ID)
	}
	for _, dto := range []*BookingDTO{first, second, third} {
		outcome, err := f.recon.Reconcile(context.Background(), f.charge(dto.ID, dto.TotalAmountMinor, "ref_"+dto.ID.String()))
		require.NoError(t, err)
		require.Equal(t, OutcomeApplied, outcome)
	}
	require.False(t, f.roomAvailable(t, roomID))

	// [day3, day5) still holds two paid stays against one bed.
	_, err := f.bookings.CancelBooking(context.Background(), a, first.ID)
	require.NoError(t, err)
	assert.False(t, f.roomAvailable(t, roomID))

	_, err = f.bookings.CancelBooking(context.Background(), b, second.ID)
	require.NoError(t, err)
	assert.False(t, f.roomAvailable(t, roomID))
}

func TestGetBooking_Visibility(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 1, 100)
	student := newStudent("s@example.com")
	b := f.book(t, student, roomID, day1, day3)
	ctx := context.Background()

	_, err := f.bookings.GetBooking(ctx, student, b.ID)
	assert.NoError(t, err)
	_, err = f.bookings.GetBooking(ctx, f.provider, b.ID)
	assert.NoError(t, err)
	_, err = f.bookings.GetBooking(ctx, f.admin, b.ID)
	assert.NoError(t, err)
	_, err = f.bookings.GetBooking(ctx, newStudent("x@example.com"), b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.bookings.GetBooking(ctx, student, uuid.New())
	assert.True(t, domain.HasCode(err, booking.CodeBookingNotFound))
}

func TestListPendingRequests(t *testing.T) {
	f := newFixture(t)
	roomID := f.createRoom(t, 3, 100)
	b1 := f.book(t, newStudent("a@example.com"), roomID, day1, day3)
	b2 := f.book(t, newStudent("b@example.com"), roomID, day1, day3)
	f.approve(t, b2.ID)

	requests, err := f.bookings.ListPendingRequests(context.Background(), f.provider)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, b1.ID, requests[0].ID)

	other := booking.Actor{ProfileID: uuid.New(), Role: booking.RoleProvider}
	requests, err = f.bookings.ListPendingRequests(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, requests)
}
