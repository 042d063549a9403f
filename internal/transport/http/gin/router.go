package httpgin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
	"github.com/tigertix/tigertix/internal/service"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan redisrepo.EventChange, error)
}

// Options configure every router. Limiter, Idempotency and Events are
// optional and must be left as untyped nil when Redis is disabled.
type Options struct {
	Logger       *slog.Logger
	CORSOrigins  []string
	RequireAuth  bool
	CookieSecure bool
	Limiter      RateLimiter
	Idempotency  IdempotencyStore
	Events       EventSubscriber

	// Stopping, when closed, ends open event streams.
	Stopping <-chan struct{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func newEngine(name string, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		LoggingMiddleware(opts.logger().With("service", name)),
		RequestIDMiddleware(),
		CORS(opts.CORSOrigins),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": name})
	})

	return r
}

// bookingGuards protects the endpoints that sell tickets.
func bookingGuards(svcs *service.Services, opts Options) []gin.HandlerFunc {
	var guards []gin.HandlerFunc
	if opts.RequireAuth {
		guards = append(guards, RequireAuth(svcs.Auth))
	}
	if opts.Limiter != nil {
		guards = append(guards, RateLimitMiddleware(opts.Limiter, opts.logger()))
	}
	return guards
}
