package httpgin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tigertix/tigertix/internal/llm"
	"github.com/tigertix/tigertix/internal/service/admin"
	"github.com/tigertix/tigertix/internal/service/assistant"
	"github.com/tigertix/tigertix/internal/service/auth"
	"github.com/tigertix/tigertix/internal/service/booking"
	"github.com/tigertix/tigertix/internal/service/purchase"
	"github.com/tigertix/tigertix/internal/service/query"
)

const msgEventNotFound = "Event not found"

// parseInt64Param reads a positive integer path parameter, answering 400
// itself when it is not one.
func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		insufficient *booking.InsufficientTicketsError
		validation   admin.ValidationError
		provider     *llm.ProviderError
	)

	switch {
	// not found
	case errors.Is(err, purchase.ErrEventNotFound),
		errors.Is(err, booking.ErrEventNotFound),
		errors.Is(err, query.ErrEventNotFound),
		errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgEventNotFound})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user_not_found"})

	// capacity
	case errors.Is(err, purchase.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Event is sold out"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, CapacityErrorResponse{
			Error:     "Not enough tickets available",
			Available: insufficient.Available,
		})

	// validation
	case errors.Is(err, purchase.ErrInvalidEventID):
		badRequest(c, purchase.ErrInvalidEventID.Error())
	case errors.Is(err, booking.ErrInvalidQuantity):
		badRequest(c, booking.ErrInvalidQuantity.Error())
	case errors.Is(err, booking.ErrMissingEvent):
		badRequest(c, booking.ErrMissingEvent.Error())
	case errors.As(err, &validation):
		badRequest(c, validation.Error())
	case errors.Is(err, admin.ErrTotalBelowSold):
		badRequest(c, admin.ErrTotalBelowSold.Error())
	case errors.Is(err, assistant.ErrMissingText):
		badRequest(c, assistant.ErrMissingText.Error())
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooLong):
		badRequest(c, rootMessage(err,
			auth.ErrMissingCredentials, auth.ErrInvalidEmail, auth.ErrPasswordTooLong))

	// conflicts
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: auth.ErrEmailTaken.Error()})

	// auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidCredentials.Error()})
	case errors.Is(err, auth.ErrNoToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrNoToken.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidToken.Error()})

	// language model
	case errors.Is(err, assistant.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: assistant.ErrUnavailable.Error()})
	case errors.As(err, &provider), errors.Is(err, llm.ErrEmptyCompletion):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to interpret user input"})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}

// rootMessage returns the message of the first candidate err wraps.
func rootMessage(err error, candidates ...error) string {
	for _, target := range candidates {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
