package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

type EventStore interface {
	ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error)
}

type Publisher interface {
	PublishEventChanged(ctx context.Context, eventID int64, reason string) error
}

type Service struct {
	events    EventStore
	publisher Publisher
	logger    *slog.Logger
}

// New builds the single-ticket purchase service. publisher may be nil.
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

// Purchase sells exactly one ticket for eventID. The sale is a single
// conditional update, so concurrent callers can never push tickets_sold past
// tickets_total; among N racing buyers for K remaining tickets exactly K win.
// There are no retries.
//
// Returns:
//   - *domain.Event: the event as refreshed by the committed sale.
//   - error: purchase.ErrInvalidEventID if eventID is not positive.
//   - error: purchase.ErrEventNotFound if the event does not exist.
//   - error: purchase.ErrSoldOut if no tickets remain.
func (s *Service) Purchase(ctx context.Context, eventID int64) (*domain.Event, error) {
	const op = "service.purchase.Purchase"

	if eventID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEventID)
	}

	event, err := s.events.ReserveTickets(ctx, eventID, 1)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			err = ErrEventNotFound
		case errors.Is(err, repository.ErrInsufficientTickets):
			err = ErrSoldOut
		default:
			s.logger.ErrorContext(ctx, "purchase failed", "event_id", eventID, "error", err)
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.logger.InfoContext(ctx, "purchase rejected",
			"event_id", eventID,
			"outcome", Outcome(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "purchase committed",
		"event_id", event.ID,
		"tickets_sold", event.TicketsSold,
		"tickets_total", event.TicketsTotal,
	)

	s.notify(ctx, event.ID)

	return event, nil
}

func (s *Service) notify(ctx context.Context, eventID int64) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishEventChanged(ctx, eventID, "purchase"); err != nil {
		s.logger.WarnContext(ctx, "publish event change failed", "event_id", eventID, "error", err)
	}
}
