package domain

import (
	"time"
)

// PurchaseStatus is the terminal state of a purchase attempt.
type PurchaseStatus string

const (
	PurchaseOK           PurchaseStatus = "OK"
	PurchaseNotFound     PurchaseStatus = "NOT_FOUND"
	PurchaseSoldOut      PurchaseStatus = "SOLD_OUT"
	PurchaseInsufficient PurchaseStatus = "INSUFFICIENT"
)

type Event struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	TicketsTotal int       `json:"tickets_total"`
	TicketsSold  int       `json:"tickets_sold"`
}

// Available is the number of tickets that can still be sold.
func (e Event) Available() int {
	return e.TicketsTotal - e.TicketsSold
}

// EventInput carries the admin-editable fields of an event.
type EventInput struct {
	Name         string
	Date         time.Time
	TicketsTotal int
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Interpretation is what the language model extracted from a booking request.
type Interpretation struct {
	Event   string `json:"event"`
	Tickets int    `json:"tickets"`
}

type ChatAction string

const (
	ChatGreet   ChatAction = "greet"
	ChatList    ChatAction = "list"
	ChatParse   ChatAction = "parse"
	ChatConfirm ChatAction = "confirm"
)

// ChatContext is the state a client echoes back between chat turns.
type ChatContext struct {
	Action  ChatAction `json:"action,omitempty"`
	Event   string     `json:"event,omitempty"`
	Tickets int        `json:"tickets,omitempty"`
}
