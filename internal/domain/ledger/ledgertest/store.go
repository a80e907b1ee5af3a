// Package ledgertest provides an in-memory ledger.Store for tests.
//
// Transactions are serialized by one mutex and roll back by restoring a snapshot,
// which gives the same all-or-nothing and one-writer-per-row guarantees the
// Postgres store gets from transactions and row locks.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/ledger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/payment"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
)

type data struct {
	rooms    map[uuid.UUID]*room.Room
	bookings map[uuid.UUID]*booking.Booking
	payments map[uuid.UUID]*payment.Payment
}

func (d data) clone() data {
	out := data{
		rooms:    make(map[uuid.UUID]*room.Room, len(d.rooms)),
		bookings: make(map[uuid.UUID]*booking.Booking, len(d.bookings)),
		payments: make(map[uuid.UUID]*payment.Payment, len(d.payments)),
	}
	for k, v := range d.rooms {
		out.rooms[k] = v
	}
	for k, v := range d.bookings {
		out.bookings[k] = v
	}
	for k, v := range d.payments {
		out.payments[k] = v
	}
	return out
}

// Store is an in-memory ledger.Store. Stored aggregates are copies, so callers
// only change state through repository writes.
type Store struct {
	mu              sync.Mutex
	data            data
	failPaymentSave error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: data{
		rooms:    map[uuid.UUID]*room.Room{},
		bookings: map[uuid.UUID]*booking.Booking{},
		payments: map[uuid.UUID]*payment.Payment{},
	}}
}

// FailPaymentSaves makes every later payment insert fail with err. nil restores
// normal behavior.
func (s *Store) FailPaymentSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaymentSave = err
}

func (s *Store) Rooms() room.RoomRepository          { return rooms{view{s: s}} }
func (s *Store) Bookings() booking.BookingRepository { return bookings{view{s: s}} }
func (s *Store) Payments() payment.PaymentRepository { return payments{view{s: s}} }

// WithinTx runs fn holding the store lock and restores the previous state if fn
// fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, view{s: s, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// view is a set of repositories that either takes the store lock per call or runs
// under a transaction that already holds it.
type view struct {
	s    *Store
	inTx bool
}

func (v view) Rooms() room.RoomRepository          { return rooms{v} }
func (v view) Bookings() booking.BookingRepository { return bookings{v} }
func (v view) Payments() payment.PaymentRepository { return payments{v} }

func (v view) do(fn func(d *data) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(&v.s.data)
}

// --- rooms ---

type rooms struct{ v view }

func (r rooms) FindByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	var out *room.Room
	err := r.v.do(func(d *data) error {
		rm, ok := d.rooms[id]
		if !ok {
			return domain.NewNotFoundError("Room", id.String())
		}
		out = cloneRoom(rm)
		return nil
	})
	return out, err
}

func (r rooms) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return r.FindByID(ctx, id)
}

func (r rooms) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*room.Room, error) {
	var out []*room.Room
	err := r.v.do(func(d *data) error {
		for _, rm := range d.rooms {
			if rm.ProviderID() == providerID {
				out = append(out, cloneRoom(rm))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].HostelName() != out[j].HostelName() {
			return out[i].HostelName() < out[j].HostelName()
		}
		return out[i].RoomNumber() < out[j].RoomNumber()
	})
	return out, err
}

func (r rooms) ListAvailable(_ context.Context, filter room.ListFilter, page, limit int) ([]*room.Room, int64, error) {
	var all []*room.Room
	err := r.v.do(func(d *data) error {
		for _, rm := range d.rooms {
			if rm.IsAvailable() && filter.Matches(rm) {
				all = append(all, cloneRoom(rm))
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r rooms) Save(_ context.Context, rm *room.Room) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.rooms[rm.ID()]; ok {
			return domain.NewConflictError("room already exists")
		}
		d.rooms[rm.ID()] = cloneRoom(rm)
		return nil
	})
}

func (r rooms) UpdateAvailability(_ context.Context, rm *room.Room) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.rooms[rm.ID()]; !ok {
			return domain.NewNotFoundError("Room", rm.ID().String())
		}
		d.rooms[rm.ID()] = cloneRoom(rm)
		return nil
	})
}

// --- bookings ---

type bookings struct{ v view }

func (r bookings) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	var out *booking.Booking
	err := r.v.do(func(d *data) error {
		b, ok := d.bookings[id]
		if !ok {
			return booking.ErrBookingNotFound(id)
		}
		out = cloneBooking(b)
		return nil
	})
	return out, err
}

func (r bookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r bookings) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*booking.Booking, error) {
	var out []*booking.Booking
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			if b.StudentID() == studentID {
				out = append(out, cloneBooking(b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, err
}

func (r bookings) ListByProviderAndStatus(_ context.Context, providerID uuid.UUID, status booking.Status) ([]*booking.Booking, error) {
	var out []*booking.Booking
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			rm, ok := d.rooms[b.RoomID()]
			if ok && rm.ProviderID() == providerID && b.Status() == status {
				out = append(out, cloneBooking(b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, err
}

func (r bookings) CountByStatusForProvider(_ context.Context, providerID uuid.UUID) (map[booking.Status]int64, error) {
	counts := map[booking.Status]int64{}
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			if rm, ok := d.rooms[b.RoomID()]; ok && rm.ProviderID() == providerID {
				counts[b.Status()]++
			}
		}
		return nil
	})
	return counts, err
}

func (r bookings) CountPaidActiveOverlapping(_ context.Context, roomID uuid.UUID, stay booking.Stay, excludeID uuid.UUID) (int64, error) {
	var n int64
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			if b.RoomID() != roomID || b.ID() == excludeID || !b.Status().IsActive() {
				continue
			}
			if b.Stay().Overlaps(stay) && d.paid(b.ID()) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r bookings) HasActiveOverlap(_ context.Context, studentID, roomID uuid.UUID, stay booking.Stay) (bool, error) {
	found := false
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			if b.StudentID() == studentID && b.RoomID() == roomID && b.Status().IsActive() && b.Stay().Overlaps(stay) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r bookings) ListPaidOccupyingStays(_ context.Context, roomID uuid.UUID) ([]booking.Stay, error) {
	var stays []booking.Stay
	err := r.v.do(func(d *data) error {
		for _, b := range d.bookings {
			if b.RoomID() != roomID || !occupying(b.Status()) {
				continue
			}
			if d.paid(b.ID()) {
				stays = append(stays, b.Stay())
			}
		}
		return nil
	})
	return stays, err
}

func (r bookings) Save(_ context.Context, b *booking.Booking) error {
	return r.v.do(func(d *data) error {
		if !b.Stay().Valid() {
			return booking.ErrInvalidDateRange()
		}
		if _, ok := d.rooms[b.RoomID()]; !ok {
			return booking.ErrRoomNotFound(b.RoomID())
		}
		if d.activeDuplicate(b) {
			return booking.ErrDuplicateBooking()
		}
		d.bookings[b.ID()] = cloneBooking(b)
		return nil
	})
}

func (r bookings) UpdateStatus(_ context.Context, b *booking.Booking) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.bookings[b.ID()]; !ok {
			return booking.ErrBookingNotFound(b.ID())
		}
		if b.Status().IsActive() && d.activeDuplicate(b) {
			return booking.ErrDuplicateBooking()
		}
		d.bookings[b.ID()] = cloneBooking(b)
		return nil
	})
}

// activeDuplicate mirrors the partial unique index on active bookings.
func (d *data) activeDuplicate(b *booking.Booking) bool {
	for _, other := range d.bookings {
		if other.ID() == b.ID() || !other.Status().IsActive() {
			continue
		}
		if other.StudentID() == b.StudentID() && other.RoomID() == b.RoomID() &&
			other.Stay().CheckIn.Equal(b.Stay().CheckIn) && other.Stay().CheckOut.Equal(b.Stay().CheckOut) {
			return true
		}
	}
	return false
}

func (d *data) paid(bookingID uuid.UUID) bool {
	for _, p := range d.payments {
		if p.BookingID() == bookingID && p.Status() == payment.StatusSuccess {
			return true
		}
	}
	return false
}

func occupying(s booking.Status) bool {
	for _, o := range booking.OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// --- payments ---

type payments struct{ v view }

func (r payments) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	var out *payment.Payment
	err := r.v.do(func(d *data) error {
		for _, p := range d.payments {
			if p.BookingID() == bookingID {
				out = clonePayment(p)
				return nil
			}
		}
		return domain.NewNotFoundError("Payment", bookingID.String())
	})
	return out, err
}

func (r payments) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	found := false
	err := r.v.do(func(d *data) error {
		for _, p := range d.payments {
			if p.TransactionID() == transactionID {
				found = true
			}
		}
		return nil
	})
	return found, err
}

func (r payments) ListAll(_ context.Context, page, limit int) ([]*payment.Payment, int64, error) {
	var all []*payment.Payment
	err := r.v.do(func(d *data) error {
		for _, p := range d.payments {
			all = append(all, clonePayment(p))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r payments) GetRevenueStats(_ context.Context) (int64, map[string]int64, error) {
	var revenue int64
	counts := map[string]int64{}
	err := r.v.do(func(d *data) error {
		for _, p := range d.payments {
			counts[string(p.Status())]++
			if p.Status() == payment.StatusSuccess {
				revenue += p.AmountMinor()
			}
		}
		return nil
	})
	return revenue, counts, err
}

func (r payments) RevenueByRoom(_ context.Context, providerID uuid.UUID) (map[uuid.UUID]int64, error) {
	revenue := make(map[uuid.UUID]int64)
	err := r.v.do(func(d *data) error {
		for _, p := range d.payments {
			if p.Status() != payment.StatusSuccess {
				continue
			}
			b, ok := d.bookings[p.BookingID()]
			if !ok || b.Status() != booking.StatusConfirmed {
				continue
			}
			if rm, ok := d.rooms[b.RoomID()]; ok && rm.ProviderID() == providerID {
				revenue[rm.ID()] += p.AmountMinor()
			}
		}
		return nil
	})
	return revenue, err
}

func (r payments) Save(_ context.Context, p *payment.Payment) error {
	return r.v.do(func(d *data) error {
		if r.v.s.failPaymentSave != nil {
			return r.v.s.failPaymentSave
		}
		if _, ok := d.bookings[p.BookingID()]; !ok {
			return booking.ErrBookingNotFound(p.BookingID())
		}
		for _, other := range d.payments {
			if other.BookingID() == p.BookingID() || other.TransactionID() == p.TransactionID() {
				return domain.NewConflictError("payment already recorded for this booking or reference")
			}
		}
		d.payments[p.ID()] = clonePayment(p)
		return nil
	})
}

func (r payments) UpdateStatus(_ context.Context, p *payment.Payment) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.payments[p.ID()]; !ok {
			return domain.NewNotFoundError("Payment", p.ID().String())
		}
		d.payments[p.ID()] = clonePayment(p)
		return nil
	})
}

func (r payments) Delete(_ context.Context, id uuid.UUID) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.payments[id]; !ok {
			return domain.NewNotFoundError("Payment", id.String())
		}
		delete(d.payments, id)
		return nil
	})
}

// --- helpers ---

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if limit <= 0 || start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneRoom(r *room.Room) *room.Room {
	return room.Reconstitute(
		r.ID(), r.ProviderID(),
		r.HostelName(), r.RoomNumber(), r.Location(), r.Description(),
		r.PricePerNightMinor(), r.MaxOccupancy(), r.IsAvailable(),
		r.CreatedAt(), r.UpdatedAt(),
	)
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstitute(b.ID(), b.StudentID(), b.RoomID(), b.Stay(), b.Status(), b.CreatedAt(), b.UpdatedAt())
}

func clonePayment(p *payment.Payment) *payment.Payment {
	var refundedAt *time.Time
	if p.RefundedAt() != nil {
		t := *p.RefundedAt()
		refundedAt = &t
	}
	return payment.Reconstitute(
		p.ID(), p.BookingID(),
		p.AmountMinor(), p.Currency(), p.Method(), p.TransactionID(), p.Status(),
		append([]byte(nil), p.GatewayEvent()...),
		p.PaidAt(), refundedAt,
		p.CreatedAt(), p.UpdatedAt(),
	)
}

var _ ledger.Store = (*Store)(nil)
