package httpgin

import (
	"github.com/tigertix/tigertix/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CapacityErrorResponse is returned when fewer tickets remain than requested.
type CapacityErrorResponse struct {
	Error     string `json:"error"`
	Available int    `json:"available"`
}

type EventRequest struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	TicketsTotal *int   `json:"tickets_total" binding:"required"`
}

type PurchaseResponse struct {
	Message string                `json:"message"`
	Status  domain.PurchaseStatus `json:"status"`
	Event   *domain.Event         `json:"event"`
}

type ParseRequest struct {
	Text string `json:"text"`
}

type ConfirmRequest struct {
	Event   string `json:"event"`
	EventID int64  `json:"event_id"`
	Tickets *int   `json:"tickets"`
}

type ChatRequest struct {
	Message string              `json:"message"`
	Context *domain.ChatContext `json:"context"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type ProfileResponse struct {
	Message string      `json:"message"`
	User    ProfileUser `json:"user"`
}

type ProfileUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
