package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigertix/tigertix/internal/service"
	"github.com/tigertix/tigertix/internal/service/booking"
)

func NewLLMRouter(svcs *service.Services, opts Options) *gin.Engine {
	r := newEngine("llm", opts)

	g := r.Group("/api/llm")
	{
		g.POST("/parse", handleParse(svcs))
		g.POST("/confirm", append(bookingGuards(svcs, opts), handleConfirm(svcs))...)
		g.POST("/chat", append(bookingGuards(svcs, opts), handleChat(svcs))...)
	}

	return r
}

// @Summary  Interpret a booking request
// @Description Extracts an event name and ticket count from free text. Never sells tickets.
// @Tags     llm
// @Param    req body  ParseRequest true "payload"
// @Success  200 {object} assistant.ParseResult
// @Failure  400 {object} ErrorResponse
// @Failure  502 {object} ErrorResponse
// @Failure  503 {object} ErrorResponse "language model not configured"
// @Router   /api/llm/parse [post]
func handleParse(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Assistant.Parse(c.Request.Context(), req.Text)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Confirm a booking
// @Description Books tickets for an event named (substring match) or identified by id. All tickets are sold or none.
// @Tags     llm
// @Param    req body  ConfirmRequest true "payload"
// @Success  200 {object} assistant.ConfirmResult
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} CapacityErrorResponse
// @Router   /api/llm/confirm [post]
func handleConfirm(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		qty := 1
		if req.Tickets != nil {
			qty = *req.Tickets
		}

		res, err := svcs.Assistant.Confirm(
			c.Request.Context(),
			booking.EventRef{ID: req.EventID, Name: req.Event},
			qty,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Chat with the booking assistant
// @Tags     llm
// @Param    req body  ChatRequest true "payload"
// @Success  200 {object} assistant.ChatReply
// @Failure  400 {object} ErrorResponse
// @Failure  503 {object} ErrorResponse "language model not configured"
// @Router   /api/llm/chat [post]
func handleChat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		reply, err := svcs.Assistant.Chat(c.Request.Context(), req.Message, req.Context)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, reply)
	}
}
