package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

type EventStore interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error)
}

type Publisher interface {
	PublishEventChanged(ctx context.Context, eventID int64, reason string) error
}

// EventRef identifies an event either by id or by a free-text name. ID wins
// when both are set.
type EventRef struct {
	ID   int64
	Name string
}

func (r EventRef) String() string {
	if r.ID > 0 {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Name
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

// PurchaseQuantity books qty tickets for the referenced event in one atomic
// step: either all qty are sold or none are.
//
// The event is resolved against freshly read rows and pre-checked for
// availability. The pre-check is only an early rejection; the commit is a
// conditional update that re-checks availability in storage, so a sale that
// raced in between is still refused.
//
// Returns:
//   - *domain.Event: the event as refreshed by the committed sale.
//   - error: booking.ErrInvalidQuantity if qty is not positive.
//   - error: booking.ErrMissingEvent if ref is empty.
//   - error: booking.ErrEventNotFound if nothing matches ref.
//   - error: *booking.InsufficientTicketsError if fewer than qty tickets remain.
func (s *Service) PurchaseQuantity(ctx context.Context, ref EventRef, qty int) (*domain.Event, error) {
	const op = "service.booking.PurchaseQuantity"

	if qty <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	event, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if available := event.Available(); available < qty {
		s.logger.InfoContext(ctx, "booking rejected by pre-check",
			"event_id", event.ID,
			"qty", qty,
			"available", available,
		)
		return nil, fmt.Errorf("%s: %w", op, &InsufficientTicketsError{
			EventID:   event.ID,
			EventName: event.Name,
			Requested: qty,
			Available: available,
		})
	}

	updated, err := s.events.ReserveTickets(ctx, event.ID, qty)
	if err != nil {
		var insufficient *repository.InsufficientTicketsError
		switch {
		case errors.As(err, &insufficient):
			s.logger.InfoContext(ctx, "booking rejected at commit",
				"event_id", event.ID,
				"qty", qty,
				"available", insufficient.Available,
			)
			return nil, fmt.Errorf("%s: %w", op, &InsufficientTicketsError{
				EventID:   event.ID,
				EventName: event.Name,
				Requested: qty,
				Available: insufficient.Available,
			})
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		default:
			s.logger.ErrorContext(ctx, "booking failed", "event_id", event.ID, "qty", qty, "error", err)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.logger.InfoContext(ctx, "booking committed",
		"event_id", updated.ID,
		"qty", qty,
		"tickets_sold", updated.TicketsSold,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishEventChanged(ctx, updated.ID, "booking"); err != nil {
			s.logger.WarnContext(ctx, "publish event change failed", "event_id", updated.ID, "error", err)
		}
	}

	return updated, nil
}

func (s *Service) resolve(ctx context.Context, ref EventRef) (*domain.Event, error) {
	if ref.ID > 0 {
		e, err := s.events.GetEvent(ctx, ref.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return e, err
	}

	if strings.TrimSpace(ref.Name) == "" {
		return nil, ErrMissingEvent
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	e, ok := ResolveByName(events, ref.Name)
	if !ok {
		return nil, ErrEventNotFound
	}

	return &e, nil
}
