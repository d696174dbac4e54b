package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reserveease/internal/domain"
	"reserveease/internal/events"
	"reserveease/internal/metrics"
	"reserveease/internal/models"

	"github.com/rs/zerolog"
)

var ErrInvalidDraft = errors.New("invalid booking draft")

type BookingService struct {
	repo     domain.Repository
	notifier domain.Notifier
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	mu       sync.Mutex
	watchers map[int]func(bookings []*models.Booking)
	nextID   int
}

func NewBookingService(repo domain.Repository, notifier domain.Notifier, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		notifier: notifier,
		eventBus: eventBus,
		logger:   logger,
		watchers: make(map[int]func(bookings []*models.Booking)),
	}
}

// ValidateDraft fails loudly on an incomplete draft instead of coercing it.
func (s *BookingService) ValidateDraft(draft *models.Booking) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidDraft)
	}
	if draft.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	if draft.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidDraft)
	}
	if draft.Guests < 1 {
		return fmt.Errorf("%w: guests must be at least 1", ErrInvalidDraft)
	}
	if draft.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDraft)
	}
	if !models.IsValidTimeSlot(draft.Time) {
		return fmt.Errorf("%w: time %q is not an offered slot", ErrInvalidDraft, draft.Time)
	}
	if draft.ConfirmationMethod == models.ConfirmEmail && draft.Email == "" {
		return fmt.Errorf("%w: email is required for email confirmation", ErrInvalidDraft)
	}
	return nil
}

// Create persists a new booking. Status is forced to Pending regardless of
// what the caller supplied. The initial notification is fire-and-forget.
func (s *BookingService) Create(ctx context.Context, draft *models.Booking) (*models.Booking, error) {
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	booking := *draft
	booking.Status = models.StatusPending

	if err := s.repo.CreateBooking(ctx, &booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.notifyBestEffort(ctx, &booking, "create notification error")
	s.publishEvent(events.EventBookingCreated, &booking, "customer")
	s.pushFullList(ctx)

	return &booking, nil
}

// Transition moves a booking along a legal status edge and then fires the
// status notification. The persisted update always completes before the
// dispatcher runs; a dispatch failure never surfaces as a transition failure.
func (s *BookingService) Transition(ctx context.Context, id string, newStatus models.Status) error {
	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	next, err := models.Transition(current.Status, newStatus)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateBookingStatus(ctx, id, next); err != nil {
		return err
	}

	metrics.IncStatusTransition(string(next))

	updated, err := s.repo.GetBooking(ctx, id)
	if err == nil {
		s.notifyStatusBestEffort(ctx, updated)
		if eventType := events.EventTypeForStatus(string(updated.Status)); eventType != "" {
			s.publishEvent(eventType, updated, "staff")
		}
	}
	s.pushFullList(ctx)

	return nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) List(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

func (s *BookingService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start, end)
}

// Subscribe registers a watcher that receives the full current booking list
// after every mutation. Returns an unsubscribe func.
func (s *BookingService) Subscribe(fn func(bookings []*models.Booking)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// pushFullList reloads the whole list and hands it to every watcher.
// Local copies are always discarded, never patched incrementally.
func (s *BookingService) pushFullList(ctx context.Context) {
	s.mu.Lock()
	count := len(s.watchers)
	s.mu.Unlock()
	if count == 0 {
		return
	}

	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("reload bookings for watchers")
		return
	}

	s.mu.Lock()
	watchers := make([]func([]*models.Booking), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(bookings)
	}
}

func (s *BookingService) notifyBestEffort(ctx context.Context, booking *models.Booking, msg string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOnCreate(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg(msg)
	}
}

func (s *BookingService) notifyStatusBestEffort(ctx context.Context, booking *models.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOnStatusChange(ctx, booking); err != nil {
		s.logger.Error().Err(err).
			Str("booking_id", booking.ID).
			Str("status", string(booking.Status)).
			Msg("status notification error")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:          booking.ID,
		Name:               booking.Name,
		Guests:             booking.Guests,
		Date:               booking.DateString(),
		Time:               booking.Time,
		Status:             string(booking.Status),
		ConfirmationMethod: string(booking.ConfirmationMethod),
		ChangedBy:          changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
