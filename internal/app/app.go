package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tigertix/tigertix/internal/config"
	"github.com/tigertix/tigertix/internal/llm"
	"github.com/tigertix/tigertix/internal/postgres"
	"github.com/tigertix/tigertix/internal/redis"
	postgresrepo "github.com/tigertix/tigertix/internal/repository/postgres"
	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
	sqliterepo "github.com/tigertix/tigertix/internal/repository/sqlite"
	"github.com/tigertix/tigertix/internal/service"
	"github.com/tigertix/tigertix/internal/service/assistant"
	"github.com/tigertix/tigertix/internal/service/auth"
	"github.com/tigertix/tigertix/internal/sqlitepool"
	httpgin "github.com/tigertix/tigertix/internal/transport/http/gin"
	"github.com/tigertix/tigertix/migrations"
)

const (
	shutdownTimeout = 5 * time.Second
	idempotencyTTL  = 2 * time.Hour
)

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	servers []*http.Server
	closers []func()

	// stopping is closed when shutdown starts so long-lived streams end
	// before the servers wait for idle connections.
	stopping chan struct{}
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, stopping: make(chan struct{})}

	deps, err := a.initStorage(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := httpgin.Options{
		Logger:       logger,
		CORSOrigins:  cfg.CORS.AllowOrigins,
		RequireAuth:  cfg.Auth.Required,
		CookieSecure: cfg.Auth.CookieSecure,
		Stopping:     a.stopping,
	}

	if cfg.Redis.Enabled() {
		rdb, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		a.wireRedis(rdb, &deps, &opts)
	} else {
		logger.Info("redis disabled: no rate limiting, idempotency, event stream or interpretation cache")
	}

	if cfg.LLM.APIKey != "" {
		deps.Completer = llm.New(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set: /api/llm/parse and /api/llm/chat are unavailable")
	}

	services := service.NewServices(deps, service.Config{
		Auth: auth.Config{
			Secret:   cfg.Auth.JWTSecret,
			TokenTTL: cfg.Auth.TokenTTL,
		},
		Assistant: assistant.Config{},
	}, logger)

	gateway, err := httpgin.NewGatewayRouter([]httpgin.Route{
		{Prefix: "/api/admin", Target: cfg.Upstreams.Admin},
		{Prefix: "/api/client", Target: cfg.Upstreams.Client},
		{Prefix: "/api/llm", Target: cfg.Upstreams.LLM},
		{Prefix: "/api/auth", Target: cfg.Upstreams.Auth},
	}, opts)
	if err != nil {
		a.close()
		return nil, err
	}

	a.servers = []*http.Server{
		a.newServer(cfg.Server.AdminPort, httpgin.NewAdminRouter(services, opts)),
		a.newServer(cfg.Server.ClientPort, httpgin.NewClientRouter(services, opts)),
		a.newServer(cfg.Server.LLMPort, httpgin.NewLLMRouter(services, opts)),
		a.newServer(cfg.Server.AuthPort, httpgin.NewAuthRouter(services, opts)),
		a.newServer(cfg.Server.GatewayPort, gateway),
	}

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (service.Deps, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      a.cfg.Postgres.DSN(),
			MaxConns: a.cfg.Postgres.MaxConns,
		})
		if err != nil {
			return service.Deps{}, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return service.Deps{}, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		a.logger.Info("postgres ready", "migrations_applied", applied)

		store := postgresrepo.NewStore(pool)
		return service.Deps{Events: store.Events(), Users: store.Users()}, nil

	default:
		pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
			Path:     a.cfg.SQLite.Path,
			PoolSize: a.cfg.SQLite.PoolSize,
			Schema:   migrations.SQLiteSchema,
			Logger:   a.logger,
		})
		if err != nil {
			return service.Deps{}, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = pool.Close() })

		a.logger.Info("sqlite ready", "path", a.cfg.SQLite.Path)

		store := sqliterepo.NewStore(pool)
		return service.Deps{Events: store.Events(), Users: store.Users()}, nil
	}
}

// wireRedis plugs the optional Redis-backed adapters in. Every field is
// assigned a non-nil value, so interface fields never hold typed nils.
func (a *App) wireRedis(rdb *goredis.Client, deps *service.Deps, opts *httpgin.Options) {
	pubsub := redisrepo.NewEventsPubSub(rdb)

	deps.Publisher = pubsub
	deps.Denylist = redisrepo.NewTokenDenylist(rdb)
	deps.Cache = redisrepo.New(rdb, a.logger)

	opts.Events = pubsub
	opts.Idempotency = redisrepo.NewIdempotencyStore(rdb, idempotencyTTL)
	opts.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "purchase", a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window)
}

func (a *App) newServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves every listener until ctx is cancelled, SIGINT/SIGTERM arrives or
// one listener fails, then shuts all of them down and releases storage.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	for _, srv := range a.servers {
		g.Go(func() error {
			a.logger.Info("HTTP server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start HTTP server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP servers")
		close(a.stopping)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range a.servers {
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// close releases resources in reverse order of acquisition.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
