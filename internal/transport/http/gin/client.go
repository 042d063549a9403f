package httpgin

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/service"
)

const streamKeepAlive = 25 * time.Second

func NewClientRouter(svcs *service.Services, opts Options) *gin.Engine {
	r := newEngine("client", opts)
	idem := idempotency{store: opts.Idempotency, logger: opts.logger()}

	g := r.Group("/api/client")
	{
		g.GET("/events", handleListEvents(svcs))
		g.GET("/events/stream", handleEventStream(opts.Events, opts.Stopping))
		g.GET("/events/:id", handleGetEvent(svcs))

		purchase := append(bookingGuards(svcs, opts), handlePurchase(svcs, idem))
		g.POST("/events/:id/purchase", purchase...)
	}

	return r
}

// @Summary  List events
// @Tags     client
// @Success  200 {array} domain.Event
// @Router   /api/client/events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcs.Query.ListEvents(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, events, "no-cache")
	}
}

// @Summary  Get event
// @Tags     client
// @Param    id  path  int  true  "Event ID"
// @Success  200 {object} domain.Event
// @Failure  404 {object} ErrorResponse
// @Router   /api/client/events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		e, err := svcs.Query.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "no-cache")
	}
}

// @Summary  Purchase one ticket
// @Tags     client
// @Param    id  path  int  true  "Event ID"
// @Param    Idempotency-Key header string false "replays the first successful response"
// @Success  200 {object} PurchaseResponse
// @Failure  400 {object} ErrorResponse
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "sold out"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /api/client/events/{id}/purchase [post]
func handlePurchase(svcs *service.Services, idem idempotency) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		key, done := idem.begin(c, "purchase", strconv.FormatInt(id, 10))
		if done {
			return
		}

		e, err := svcs.Purchase.Purchase(c.Request.Context(), id)
		if err != nil {
			idem.fail(c, key)
			respondErr(c, err)
			return
		}

		idem.succeed(c, key, http.StatusOK, PurchaseResponse{
			Message: "Ticket purchased successfully",
			Status:  domain.PurchaseOK,
			Event:   e,
		})
	}
}

// @Summary  Stream event changes
// @Description Server-Sent Events carrying the ids of events whose counts changed. Clients re-read the event to learn its counts.
// @Tags     client
// @Produce  text/event-stream
// @Success  200
// @Failure  503 {object} ErrorResponse
// @Router   /api/client/events/stream [get]
func handleEventStream(events EventSubscriber, stopping <-chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if events == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event stream unavailable"})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		changes, err := events.Subscribe(ctx)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event stream unavailable"})
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case <-stopping:
				return false
			case change, ok := <-changes:
				if !ok {
					return false
				}
				c.SSEvent("event_changed", gin.H{"event_id": change.EventID, "reason": change.Reason})
				return true
			case <-keepAlive.C:
				_, err := io.WriteString(w, ": keep-alive\n\n")
				return err == nil
			}
		})
	}
}
