package service

import (
	"context"
	"log/slog"

	"github.com/tigertix/tigertix/internal/domain"
	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
	"github.com/tigertix/tigertix/internal/service/admin"
	"github.com/tigertix/tigertix/internal/service/assistant"
	"github.com/tigertix/tigertix/internal/service/auth"
	"github.com/tigertix/tigertix/internal/service/booking"
	"github.com/tigertix/tigertix/internal/service/purchase"
	"github.com/tigertix/tigertix/internal/service/query"
)

// EventRepository is implemented by the event repositories of every storage
// backend.
type EventRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error)
	ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error)
}

type Publisher interface {
	PublishEventChanged(ctx context.Context, eventID int64, reason string) error
}

type Services struct {
	Purchase  *purchase.Service
	Booking   *booking.Service
	Query     *query.Service
	Admin     *admin.Service
	Assistant *assistant.Service
	Auth      *auth.Service
}

// Deps are the adapters the services run on. Publisher, Denylist, Completer
// and Cache are optional and must be left as untyped nil when absent.
type Deps struct {
	Events    EventRepository
	Users     auth.UserStore
	Publisher Publisher
	Denylist  auth.Denylist
	Completer assistant.Completer
	Cache     *redisrepo.Cache
}

type Config struct {
	Auth      auth.Config
	Assistant assistant.Config
}

func NewServices(deps Deps, cfg Config, logger *slog.Logger) *Services {
	bookingSvc := booking.New(deps.Events, deps.Publisher, logger)

	return &Services{
		Purchase: purchase.New(deps.Events, deps.Publisher, logger),
		Booking:  bookingSvc,
		Query:    query.New(deps.Events),
		Admin:    admin.New(deps.Events, deps.Publisher, logger),
		Assistant: assistant.New(
			deps.Completer,
			deps.Events,
			bookingSvc,
			deps.Cache,
			cfg.Assistant,
			logger,
		),
		Auth: auth.New(deps.Users, deps.Denylist, cfg.Auth, logger),
	}
}
