package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

type EventStore interface {
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error)
}

type Publisher interface {
	PublishEventChanged(ctx context.Context, eventID int64, reason string) error
}

type Service struct {
	events    EventStore
	publisher Publisher
	logger    *slog.Logger
}

func New(events EventStore, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		events:    events,
		publisher: publisher,
		logger:    logger,
	}
}

// ParseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date, which
// is taken as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ValidationError{Field: "date", Reason: "is required"}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	return time.Time{}, ValidationError{Field: "date", Reason: "must be an ISO-8601 date"}
}

func validate(in domain.EventInput) (domain.EventInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ValidationError{Field: "name", Reason: "is required"}
	}

	if in.Date.IsZero() {
		return in, ValidationError{Field: "date", Reason: "is required"}
	}

	if in.TicketsTotal < 0 {
		return in, ValidationError{Field: "tickets_total", Reason: "must be a non-negative integer"}
	}

	// Both schemas store counts as 32-bit integers.
	if in.TicketsTotal > math.MaxInt32 {
		return in, ValidationError{Field: "tickets_total", Reason: "must not exceed 2147483647"}
	}

	in.Date = in.Date.UTC().Truncate(time.Second)

	return in, nil
}

// CreateEvent stores a new event with tickets_sold = 0.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: event name, date and capacity.
//
// Returns:
//   - *domain.Event: the created event.
//   - error: admin.ValidationError (matches admin.ErrInvalidInput) for bad input.
func (s *Service) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	const op = "service.admin.CreateEvent"

	in, err := validate(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e, err := s.events.CreateEvent(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "event created", "event_id", e.ID, "tickets_total", e.TicketsTotal)
	s.notify(ctx, e.ID, "created")

	return e, nil
}

// UpdateEvent replaces the name, date and capacity of an event. Capacity can
// never be lowered below the tickets already sold, even when a purchase
// commits concurrently with the update.
//
// Returns:
//   - error: admin.ValidationError for bad input.
//   - error: admin.ErrEventNotFound if the event does not exist.
//   - error: admin.ErrTotalBelowSold if in.TicketsTotal < tickets_sold.
func (s *Service) UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error) {
	const op = "service.admin.UpdateEvent"

	if id <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ValidationError{Field: "id", Reason: "must be a positive integer"})
	}

	in, err := validate(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e, err := s.events.UpdateEvent(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		case errors.Is(err, repository.ErrTotalBelowSold):
			return nil, fmt.Errorf("%s: %w", op, ErrTotalBelowSold)
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, ErrEventConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "event updated", "event_id", e.ID, "tickets_total", e.TicketsTotal)
	s.notify(ctx, e.ID, "updated")

	return e, nil
}

func (s *Service) notify(ctx context.Context, eventID int64, reason string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishEventChanged(ctx, eventID, reason); err != nil {
		s.logger.WarnContext(ctx, "publish event change failed", "event_id", eventID, "error", err)
	}
}
