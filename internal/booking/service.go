// Package booking implements the reservation transaction: validate
// requested seats, pre-check the durable store, take advisory locks,
// commit atomically, then hand confirmation delivery to the async
// worker.  The orchestrator owns the guarantee that every lock taken
// by an attempt is released before the attempt returns, whichever
// exit path is taken.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticket-booking/internal/lock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
	"github.com/iliyamo/event-ticket-booking/internal/seat"
)

// Catalog is the read-only view of the event catalog the orchestrator
// needs.  Implemented by repository.EventRepo.
type Catalog interface {
	GetByID(ctx context.Context, id uint64) (model.Event, error)
}

// Store is the durable reservation store.  CommittedSeats is the
// pre-check; CreateBooking is the atomic commit that returns a
// *model.SeatsUnavailableError when a concurrent committer wins.
// Implemented by repository.BookingRepo.
type Store interface {
	CommittedSeats(ctx context.Context, eventID uint64, labels []string) ([]string, error)
	CreateBooking(ctx context.Context, b *model.Booking, labels []string) error
}

// Publisher enqueues the post-commit confirmation event.  Implemented
// by queue.Publisher.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Notifier persists the in-app confirmation notification.
// Implemented by repository.NotificationRepo.
type Notifier interface {
	Create(ctx context.Context, userID uint64, title, message string) error
}

// Service coordinates one reservation attempt per call.  Many calls
// run concurrently against shared inventory; correctness rests on the
// lock manager's atomic claim and the store's uniqueness constraint,
// not on any in-process mutual exclusion.
type Service struct {
	catalog   Catalog
	store     Store
	locks     lock.Manager
	publisher Publisher
	notifier  Notifier
	lockTTL   time.Duration
}

// NewService wires the orchestrator.  publisher and notifier may be
// nil, in which case the corresponding post-commit step is skipped;
// everything else must be non-nil.
func NewService(catalog Catalog, store Store, locks lock.Manager, publisher Publisher, notifier Notifier, lockTTL time.Duration) *Service {
	if catalog == nil || store == nil || locks == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		catalog:   catalog,
		store:     store,
		locks:     locks,
		publisher: publisher,
		notifier:  notifier,
		lockTTL:   lockTTL,
	}
}

// Request is one reservation attempt.
type Request struct {
	UserID    uint64
	UserEmail string
	EventID   uint64
	Seats     []string
}

// Result carries the committed booking and the event it belongs to.
type Result struct {
	Booking model.Booking
	Event   model.Event
}

// Reserve runs the full attempt.  Typed failures:
//
//	*model.InvalidSeatError        – malformed/out-of-range label, no side effects
//	model.ErrEventNotFound         – unknown event
//	model.ErrNotEnoughCapacity     – optimistic counter check failed, no side effects
//	*model.SeatsUnavailableError   – seat(s) already committed, locks released
//	*model.SeatLockedError         – contended with an in-flight attempt, locks released
//	model.ErrStoreUnavailable      – infrastructure fault, retryable
//	model.ErrLockManagerUnavailable – infrastructure fault, retryable
func (s *Service) Reserve(ctx context.Context, req Request) (*Result, error) {
	// Validating: decode every label before touching locks or store.
	event, err := s.catalog.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	labels, err := canonicalLabels(req.Seats, event.Rows, event.SeatsPerRow)
	if err != nil {
		return nil, err
	}
	if len(labels) > event.AvailableSeats {
		// Cheap optimistic check; the commit transaction re-verifies
		// under its own guard.
		return nil, model.ErrNotEnoughCapacity
	}

	// PreChecking: committed seats abort before any lock churn.
	taken, err := s.store.CommittedSeats(ctx, event.ID, labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if len(taken) > 0 {
		return nil, &model.SeatsUnavailableError{Labels: taken}
	}

	// Locking: claim every seat; the first foreign conflict aborts the
	// attempt and releases whatever was acquired so far.
	owner := strconv.FormatUint(req.UserID, 10)
	acquired := make([]string, 0, len(labels))
	for _, label := range labels {
		got, err := s.locks.Acquire(ctx, event.ID, label, owner, s.lockTTL)
		if err != nil {
			s.releaseAll(event.ID, acquired)
			return nil, fmt.Errorf("%w: %v", model.ErrLockManagerUnavailable, err)
		}
		if !got.OK {
			s.releaseAll(event.ID, acquired)
			return nil, &model.SeatLockedError{Label: label}
		}
		acquired = append(acquired, label)
	}

	// Committing: the store's uniqueness constraint is the final
	// arbiter; locks only reduced the odds of reaching a conflict here.
	b := model.Booking{
		Reference:       uuid.NewString(),
		UserID:          req.UserID,
		EventID:         event.ID,
		Seats:           strings.Join(labels, ","),
		NumSeats:        len(labels),
		TotalPriceCents: uint32(len(labels)) * event.PriceCents,
		Status:          model.StatusConfirmed,
	}
	if err := s.store.CreateBooking(ctx, &b, labels); err != nil {
		s.releaseAll(event.ID, acquired)
		var unavailable *model.SeatsUnavailableError
		if errors.As(err, &unavailable) || errors.Is(err, model.ErrNotEnoughCapacity) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	// Committed: durable state now protects the seats, the locks have
	// done their job.
	s.releaseAll(event.ID, acquired)
	event.AvailableSeats -= b.NumSeats

	s.dispatchConfirmation(b, event, req.UserEmail)

	return &Result{Booking: b, Event: event}, nil
}

// canonicalLabels validates, canonicalizes and de-duplicates the
// requested labels, preserving request order.
func canonicalLabels(raw []string, rows, seatsPerRow int) ([]string, error) {
	if len(raw) == 0 {
		return nil, &model.InvalidSeatError{Label: "", Reason: "no seats requested"}
	}
	labels := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		s, err := seat.Parse(r, rows, seatsPerRow)
		if err != nil {
			return nil, err
		}
		// Re-render from the coordinate so aliases like "A01" collapse
		// onto "A1": one lock key and one store row per physical seat.
		canon := s.Label()
		if _, ok := seen[canon]; ok {
			continue
		}
		seen[canon] = struct{}{}
		labels = append(labels, canon)
	}
	return labels, nil
}

// releaseAll releases every lock the attempt acquired, in order.
// Best-effort: each release is attempted even when an earlier one
// fails, and failures are only logged – a leaked lock self-heals via
// its TTL.
func (s *Service) releaseAll(eventID uint64, labels []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, label := range labels {
		if err := s.locks.Release(ctx, eventID, label); err != nil {
			log.Printf("booking: release lock %d/%s failed: %v", eventID, label, err)
		}
	}
}

// dispatchConfirmation runs the post-commit side effects: the in-app
// notification row and the queue hand-off for email delivery.  Both
// run on a detached context, like releaseAll, so a client that
// disconnects right after commit cannot cancel them.  Both are
// best-effort; failures are logged and never affect the committed
// booking.
func (s *Service) dispatchConfirmation(b model.Booking, event model.Event, userEmail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.notifier != nil {
		msg := fmt.Sprintf("Your booking for '%s' (Seats: %s) has been confirmed! Total: %.2f",
			event.Title, b.Seats, float64(b.TotalPriceCents)/100)
		if err := s.notifier.Create(ctx, b.UserID, "Booking Confirmed", msg); err != nil {
			log.Printf("booking: create notification for booking %d failed: %v", b.ID, err)
		}
	}
	if s.publisher != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:       b.ID,
			Reference:       b.Reference,
			UserID:          b.UserID,
			UserEmail:       userEmail,
			EventID:         event.ID,
			EventTitle:      event.Title,
			Category:        event.Category,
			Venue:           event.Venue,
			EventDate:       event.EventDate.Format("02 Jan 2006, 03:04 PM"),
			SeatLabels:      splitSeats(b.Seats),
			NumSeats:        b.NumSeats,
			TotalPriceCents: b.TotalPriceCents,
			ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			log.Printf("booking: enqueue confirmation for booking %d failed: %v", b.ID, err)
		}
	}
}

func splitSeats(joined string) []string {
	return strings.Split(joined, ",")
}
