package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInsufficientTickets = errors.New("insufficient tickets")
	ErrTotalBelowSold      = errors.New("tickets_total below tickets_sold")
)

// InsufficientTicketsError reports a conditional update that matched no row
// although the event exists. Available is read after the failed update.
type InsufficientTicketsError struct {
	EventID   int64
	Requested int
	Available int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("event %d: requested %d, available %d", e.EventID, e.Requested, e.Available)
}

func (e *InsufficientTicketsError) Is(target error) bool {
	return target == ErrInsufficientTickets
}
