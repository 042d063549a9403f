package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/service"
	"github.com/tigertix/tigertix/internal/service/admin"
)

func NewAdminRouter(svcs *service.Services, opts Options) *gin.Engine {
	r := newEngine("admin", opts)

	g := r.Group("/api/admin")
	{
		g.POST("/events", handleCreateEvent(svcs))
		g.PUT("/events/:id", handleUpdateEvent(svcs))
	}

	return r
}

// @Summary  Create event
// @Tags     admin
// @Param    req body  EventRequest true "payload"
// @Success  201 {object} domain.Event
// @Failure  400 {object} ErrorResponse
// @Router   /api/admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bindEventInput(c)
		if !ok {
			return
		}

		e, err := svcs.Admin.CreateEvent(c.Request.Context(), in)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  Update event
// @Tags     admin
// @Param    id  path  int  true  "Event ID"
// @Param    req body  EventRequest true "payload"
// @Success  200 {object} domain.Event
// @Failure  400 {object} ErrorResponse "invalid input or tickets_total below tickets_sold"
// @Failure  404 {object} ErrorResponse
// @Router   /api/admin/events/{id} [put]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		in, ok := bindEventInput(c)
		if !ok {
			return
		}

		e, err := svcs.Admin.UpdateEvent(c.Request.Context(), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, e)
	}
}

func bindEventInput(c *gin.Context) (domain.EventInput, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return domain.EventInput{}, false
	}

	date, err := admin.ParseDate(req.Date)
	if err != nil {
		respondErr(c, err)
		return domain.EventInput{}, false
	}

	return domain.EventInput{
		Name:         req.Name,
		Date:         date,
		TicketsTotal: *req.TicketsTotal,
	}, true
}
