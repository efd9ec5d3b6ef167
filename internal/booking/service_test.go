package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/lock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
)

// fakeWorld is an in-memory catalog plus durable store sharing one
// mutex, so the uniqueness constraint and the inventory counter
// behave atomically exactly like the MySQL transaction does.
type fakeWorld struct {
	mu            sync.Mutex
	events        map[uint64]model.Event
	committed     map[uint64]map[string]uint64 // event id -> label -> booking id
	nextBookingID uint64

	precheckCalls int32
	commitCalls   int32

	catalogErr  error // forced failure of GetByID
	precheckErr error // forced failure of CommittedSeats
	commitErr   error // forced failure of CreateBooking
}

func newFakeWorld(events ...model.Event) *fakeWorld {
	w := &fakeWorld{
		events:    make(map[uint64]model.Event),
		committed: make(map[uint64]map[string]uint64),
	}
	for _, e := range events {
		w.events[e.ID] = e
		w.committed[e.ID] = make(map[string]uint64)
	}
	return w
}

func (w *fakeWorld) GetByID(_ context.Context, id uint64) (model.Event, error) {
	if w.catalogErr != nil {
		return model.Event{}, w.catalogErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.events[id]
	if !ok {
		return model.Event{}, model.ErrEventNotFound
	}
	return e, nil
}

func (w *fakeWorld) CommittedSeats(_ context.Context, eventID uint64, labels []string) ([]string, error) {
	atomic.AddInt32(&w.precheckCalls, 1)
	if w.precheckErr != nil {
		return nil, w.precheckErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var taken []string
	for _, l := range labels {
		if _, ok := w.committed[eventID][l]; ok {
			taken = append(taken, l)
		}
	}
	sort.Strings(taken)
	return taken, nil
}

func (w *fakeWorld) CreateBooking(_ context.Context, b *model.Booking, labels []string) error {
	atomic.AddInt32(&w.commitCalls, 1)
	if w.commitErr != nil {
		return w.commitErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var conflicts []string
	for _, l := range labels {
		if _, ok := w.committed[b.EventID][l]; ok {
			conflicts = append(conflicts, l)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &model.SeatsUnavailableError{Labels: conflicts}
	}
	e := w.events[b.EventID]
	if e.AvailableSeats < len(labels) {
		return model.ErrNotEnoughCapacity
	}
	w.nextBookingID++
	b.ID = w.nextBookingID
	for _, l := range labels {
		w.committed[b.EventID][l] = b.ID
	}
	e.AvailableSeats -= len(labels)
	w.events[b.EventID] = e
	return nil
}

func (w *fakeWorld) available(eventID uint64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.events[eventID].AvailableSeats
}

func (w *fakeWorld) committedCount(eventID uint64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.committed[eventID])
}

// countingLocks wraps a Manager and counts operations.
type countingLocks struct {
	lock.Manager
	acquires int32
	releases int32
}

func (c *countingLocks) Acquire(ctx context.Context, eventID uint64, label, owner string, ttl time.Duration) (lock.Acquisition, error) {
	atomic.AddInt32(&c.acquires, 1)
	return c.Manager.Acquire(ctx, eventID, label, owner, ttl)
}

func (c *countingLocks) Release(ctx context.Context, eventID uint64, label string) error {
	atomic.AddInt32(&c.releases, 1)
	return c.Manager.Release(ctx, eventID, label)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *fakePublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *fakeNotifier) Create(_ context.Context, _ uint64, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return nil
}

// smallEvent is the 2x2 grid (A1,A2,B1,B2) at price 100 used across
// the scenarios.
func smallEvent() model.Event {
	return model.Event{
		ID:             1,
		Title:          "Evening Show",
		Category:       "movie",
		Venue:          "Main Hall",
		PriceCents:     100,
		Rows:           2,
		SeatsPerRow:    2,
		TotalSeats:     4,
		AvailableSeats: 4,
		EventDate:      time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	world     *fakeWorld
	locks     *countingLocks
	publisher *fakePublisher
	notifier  *fakeNotifier
	svc       *Service
}

func newFixture(events ...model.Event) *fixture {
	world := newFakeWorld(events...)
	locks := &countingLocks{Manager: lock.NewMemoryManager()}
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	svc := NewService(world, world, locks, publisher, notifier, 5*time.Minute)
	return &fixture{world: world, locks: locks, publisher: publisher, notifier: notifier, svc: svc}
}

func (f *fixture) holder(t *testing.T, eventID uint64, label string) string {
	t.Helper()
	h, err := f.locks.Holder(context.Background(), eventID, label)
	require.NoError(t, err)
	return h
}

func TestReserveSuccess(t *testing.T) {
	f := newFixture(smallEvent())

	res, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, UserEmail: "alice@example.com", EventID: 1, Seats: []string{"a1", "A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "A1,A2", res.Booking.Seats)
	assert.Equal(t, 2, res.Booking.NumSeats)
	assert.Equal(t, uint32(200), res.Booking.TotalPriceCents)
	assert.Equal(t, model.StatusConfirmed, res.Booking.Status)
	assert.NotEmpty(t, res.Booking.Reference)
	assert.Equal(t, 2, res.Event.AvailableSeats)
	assert.Equal(t, 2, f.world.available(1))

	// Success releases every lock; the uniqueness constraint protects
	// the seats from here on.
	assert.Empty(t, f.holder(t, 1, "A1"))
	assert.Empty(t, f.holder(t, 1, "A2"))

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, []string{"A1", "A2"}, ev.SeatLabels)
	assert.Equal(t, "alice@example.com", ev.UserEmail)
	assert.Equal(t, uint32(200), ev.TotalPriceCents)
	assert.Equal(t, 1, f.notifier.count)
}

func TestReserveDuplicateLabelsDeduped(t *testing.T) {
	f := newFixture(smallEvent())

	res, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, EventID: 1, Seats: []string{"A1", "a1", " A1 ", "A01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Booking.NumSeats)
	assert.Equal(t, uint32(100), res.Booking.TotalPriceCents)
}

// "A01" and "A1" address the same physical seat; a second booking
// under the zero-padded spelling must collide with the committed row,
// not create a second one.
func TestReserveLeadingZeroAliasConflicts(t *testing.T) {
	f := newFixture(smallEvent())
	ctx := context.Background()

	_, err := f.svc.Reserve(ctx, Request{UserID: 7, EventID: 1, Seats: []string{"A1"}})
	require.NoError(t, err)

	_, err = f.svc.Reserve(ctx, Request{UserID: 8, EventID: 1, Seats: []string{"a01"}})
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.Labels)
	assert.Equal(t, 1, f.world.committedCount(1))
	assert.Equal(t, 3, f.world.available(1))
}

func TestReserveInvalidSeatNoSideEffects(t *testing.T) {
	f := newFixture(smallEvent())

	_, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, EventID: 1, Seats: []string{"A1", "C5"},
	})
	var invalid *model.InvalidSeatError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "C5", invalid.Label)

	// No lock taken for A1, no store access at all.
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.locks.acquires))
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.world.precheckCalls))
}

func TestReserveNotEnoughCapacityBeforeLocking(t *testing.T) {
	e := smallEvent()
	e.AvailableSeats = 2
	f := newFixture(e)

	_, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, EventID: 1, Seats: []string{"A1", "A2", "B1"},
	})
	require.ErrorIs(t, err, model.ErrNotEnoughCapacity)
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.locks.acquires))
}

func TestReserveEventNotFound(t *testing.T) {
	f := newFixture(smallEvent())

	_, err := f.svc.Reserve(context.Background(), Request{UserID: 7, EventID: 99, Seats: []string{"A1"}})
	require.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestReservePreCheckHit(t *testing.T) {
	f := newFixture(smallEvent())
	f.world.committed[1]["A1"] = 55

	_, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, EventID: 1, Seats: []string{"A1", "A2"},
	})
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.Labels)
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.locks.acquires), "pre-check hit aborts before lock churn")
}

func TestReserveSeatLockedReleasesPartialSet(t *testing.T) {
	f := newFixture(smallEvent())
	ctx := context.Background()

	// Another in-flight attempt holds B1.
	_, err := f.locks.Manager.Acquire(ctx, 1, "B1", "999", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Reserve(ctx, Request{UserID: 7, EventID: 1, Seats: []string{"A1", "B1"}})
	var locked *model.SeatLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "B1", locked.Label)

	// A1 was acquired first and must be released on this failure path.
	assert.Empty(t, f.holder(t, 1, "A1"))
	assert.Equal(t, "999", f.holder(t, 1, "B1"), "foreign lock untouched")
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.world.commitCalls))
}

func TestReserveIdempotentReclaimOwnLock(t *testing.T) {
	f := newFixture(smallEvent())
	ctx := context.Background()

	// The same user already holds A1 from an abandoned attempt.
	_, err := f.locks.Manager.Acquire(ctx, 1, "A1", "7", time.Minute)
	require.NoError(t, err)

	res, err := f.svc.Reserve(ctx, Request{UserID: 7, EventID: 1, Seats: []string{"A1"}})
	require.NoError(t, err)
	assert.Equal(t, "A1", res.Booking.Seats)
}

func TestReserveCommitConflictRolledBack(t *testing.T) {
	f := newFixture(smallEvent())
	f.world.commitErr = &model.SeatsUnavailableError{Labels: []string{"A2"}}

	_, err := f.svc.Reserve(context.Background(), Request{
		UserID: 7, EventID: 1, Seats: []string{"A1", "A2"},
	})
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.Labels)

	// RolledBack releases all locks and publishes nothing.
	assert.Empty(t, f.holder(t, 1, "A1"))
	assert.Empty(t, f.holder(t, 1, "A2"))
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, 0, f.notifier.count)
}

func TestReserveStoreUnavailable(t *testing.T) {
	f := newFixture(smallEvent())
	f.world.precheckErr = errors.New("dial tcp: connection refused")

	_, err := f.svc.Reserve(context.Background(), Request{UserID: 7, EventID: 1, Seats: []string{"A1"}})
	require.ErrorIs(t, err, model.ErrStoreUnavailable)
}

type failingLocks struct {
	lock.Manager
	failAfter int // error on the Nth acquire (1-based)
	calls     int32
	releases  int32
}

func (fl *failingLocks) Acquire(ctx context.Context, eventID uint64, label, owner string, ttl time.Duration) (lock.Acquisition, error) {
	n := atomic.AddInt32(&fl.calls, 1)
	if int(n) >= fl.failAfter {
		return lock.Acquisition{}, errors.New("redis: connection pool timeout")
	}
	return fl.Manager.Acquire(ctx, eventID, label, owner, ttl)
}

func (fl *failingLocks) Release(ctx context.Context, eventID uint64, label string) error {
	atomic.AddInt32(&fl.releases, 1)
	return fl.Manager.Release(ctx, eventID, label)
}

func TestReserveLockManagerUnavailable(t *testing.T) {
	world := newFakeWorld(smallEvent())
	fl := &failingLocks{Manager: lock.NewMemoryManager(), failAfter: 2}
	svc := NewService(world, world, fl, nil, nil, 5*time.Minute)

	_, err := svc.Reserve(context.Background(), Request{UserID: 7, EventID: 1, Seats: []string{"A1", "A2"}})
	require.ErrorIs(t, err, model.ErrLockManagerUnavailable)
	// The lock acquired before the fault is still released.
	assert.EqualValues(t, 1, atomic.LoadInt32(&fl.releases))
}

// cancelAwarePublisher fails when the context it is handed has been
// cancelled, so it can tell a request-scoped dispatch from a detached
// one.
type cancelAwarePublisher struct {
	published int32
	ctxErr    error
}

func (p *cancelAwarePublisher) PublishBookingConfirmed(ctx context.Context, _ queue.BookingConfirmedEvent) error {
	if err := ctx.Err(); err != nil {
		p.ctxErr = err
		return err
	}
	atomic.AddInt32(&p.published, 1)
	return nil
}

// A client that disconnects right after the commit must not cancel
// the post-commit notification and queue hand-off.
func TestReserveConfirmationOutlivesCallerContext(t *testing.T) {
	world := newFakeWorld(smallEvent())
	pub := &cancelAwarePublisher{}
	notifier := &fakeNotifier{}
	svc := NewService(world, world, lock.NewMemoryManager(), pub, notifier, 5*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Reserve(ctx, Request{UserID: 7, EventID: 1, Seats: []string{"A1"}})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NoError(t, pub.ctxErr, "publish runs on a detached context")
	assert.EqualValues(t, 1, atomic.LoadInt32(&pub.published))
	assert.Equal(t, 1, notifier.count)
}

// Two concurrent callers race for seat A1 on the 2x2 grid: exactly
// one gets a committed booking at price 100, the other a typed
// conflict, and no seat is ever double booked.
func TestReserveConcurrentSameSeat(t *testing.T) {
	f := newFixture(smallEvent())

	type outcome struct {
		res *Result
		err error
	}
	results := make(chan outcome, 2)
	var start sync.WaitGroup
	start.Add(1)
	for _, userID := range []uint64{7, 8} {
		go func(uid uint64) {
			start.Wait()
			res, err := f.svc.Reserve(context.Background(), Request{
				UserID: uid, EventID: 1, Seats: []string{"A1"},
			})
			results <- outcome{res, err}
		}(userID)
	}
	start.Done()

	var wins, losses int
	for i := 0; i < 2; i++ {
		o := <-results
		if o.err == nil {
			wins++
			assert.Equal(t, uint32(100), o.res.Booking.TotalPriceCents)
			assert.Equal(t, "A1", o.res.Booking.Seats)
			continue
		}
		losses++
		var unavailable *model.SeatsUnavailableError
		var locked *model.SeatLockedError
		if !errors.As(o.err, &unavailable) && !errors.As(o.err, &locked) {
			t.Fatalf("loser got unexpected error: %v", o.err)
		}
		if unavailable != nil {
			assert.Equal(t, []string{"A1"}, unavailable.Labels)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, 1, f.world.committedCount(1))
	assert.Equal(t, 3, f.world.available(1))
}

// Concurrent attempts on disjoint seat sets all succeed, and the
// available counter equals total minus all committed seats.
func TestReserveConcurrentDisjointSets(t *testing.T) {
	e := model.Event{
		ID: 1, Title: "Big Show", PriceCents: 250,
		Rows: 4, SeatsPerRow: 4, TotalSeats: 16, AvailableSeats: 16,
		EventDate: time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
	}
	f := newFixture(e)

	sets := [][]string{
		{"A1", "A2"},
		{"B1", "B2", "B3"},
		{"C1"},
		{"D1", "D2"},
	}
	var wg sync.WaitGroup
	errs := make([]error, len(sets))
	for i, seats := range sets {
		wg.Add(1)
		go func(i int, seats []string) {
			defer wg.Done()
			_, errs[i] = f.svc.Reserve(context.Background(), Request{
				UserID: uint64(100 + i), EventID: 1, Seats: seats,
			})
		}(i, seats)
	}
	wg.Wait()

	committed := 0
	for i, err := range errs {
		require.NoError(t, err, "set %d", i)
		committed += len(sets[i])
	}
	assert.Equal(t, committed, f.world.committedCount(1))
	assert.Equal(t, 16-committed, f.world.available(1), "available == total - committed seats")
	// Every lock is released after the attempts finish.
	for _, seats := range sets {
		for _, label := range seats {
			assert.Empty(t, f.holder(t, 1, label))
		}
	}
}
