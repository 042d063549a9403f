package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

type EventStore interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

// Service serves read-only event views. Every call reads storage directly:
// ticket counts are never cached, so a listing can never show a count older
// than the request.
type Service struct {
	events EventStore
}

func New(events EventStore) *Service {
	return &Service{events: events}
}

// ListEvents returns all events ordered by date. It never mutates storage.
func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "service.query.ListEvents"

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - error: query.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.query.GetEvent"

	e, err := s.events.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return e, nil
}
