package httpgin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
)

const idempotencyLockTTL = 60 * time.Second

type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, status int, body []byte) error
	GetResult(ctx context.Context, key string) (redisrepo.StoredResponse, bool, error)
	Release(ctx context.Context, key string) error
}

// idempotency replays the first successful response sent under an
// Idempotency-Key header. Failed attempts release the key so the client can
// retry. Without a store or a header every method degrades to a plain write.
type idempotency struct {
	store  IdempotencyStore
	logger *slog.Logger
}

// begin returns the storage key for this request. done reports that a
// response was already written: either a replay or a 409 for a request still
// in flight.
func (i idempotency) begin(c *gin.Context, scope, resource string) (key string, done bool) {
	header := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if i.store == nil || header == "" {
		return "", false
	}

	ctx := c.Request.Context()
	key = redisrepo.KeyIdempotency(scope, callerIdentity(c), resource, header)

	if i.replay(c, key, header) {
		return "", true
	}

	locked, err := i.store.AcquireLock(ctx, key, idempotencyLockTTL)
	if err != nil {
		i.logger.WarnContext(ctx, "idempotency store unavailable", "error", err)
		return "", false
	}

	if !locked {
		if i.replay(c, key, header) {
			return "", true
		}
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
		return "", true
	}

	return key, false
}

// callerIdentity names the authenticated user, or the client IP when the
// route runs without a session.
func callerIdentity(c *gin.Context) string {
	if id := c.GetInt64(ctxUserID); id > 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return "ip:" + c.ClientIP()
}

func (i idempotency) replay(c *gin.Context, key, header string) bool {
	res, ok, err := i.store.GetResult(c.Request.Context(), key)
	if err != nil || !ok {
		return false
	}

	c.Header("Idempotency-Key", header)
	c.Header("Idempotent-Replayed", "true")
	c.Data(res.Status, "application/json; charset=utf-8", res.Body)

	return true
}

func (i idempotency) fail(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := i.store.Release(c.Request.Context(), key); err != nil {
		i.logger.WarnContext(c.Request.Context(), "release idempotency key", "error", err)
	}
}

func (i idempotency) succeed(c *gin.Context, key string, status int, v any) {
	if key == "" {
		c.JSON(status, v)
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		i.fail(c, key)
		respondErr(c, err)
		return
	}

	if err := i.store.SaveResult(c.Request.Context(), key, status, b); err != nil {
		i.logger.WarnContext(c.Request.Context(), "save idempotent response", "error", err)
	}

	c.Header("Idempotency-Key", strings.TrimSpace(c.GetHeader("Idempotency-Key")))
	c.Data(status, "application/json; charset=utf-8", b)
}
