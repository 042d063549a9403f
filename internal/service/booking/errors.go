package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity     = errors.New("'tickets' must be a positive integer")
	ErrMissingEvent        = errors.New("missing 'event' field")
	ErrEventNotFound       = errors.New("event not found")
	ErrInsufficientTickets = errors.New("not enough tickets available")
)

// InsufficientTicketsError is returned both when the pre-check sees too few
// tickets and when the commit-time conditional update affects no row. Callers
// cannot and need not tell the two apart.
type InsufficientTicketsError struct {
	EventID   int64
	EventName string
	Requested int
	Available int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("only %d tickets left for %s, requested %d", e.Available, e.EventName, e.Requested)
}

func (e *InsufficientTicketsError) Is(target error) bool {
	return target == ErrInsufficientTickets
}
