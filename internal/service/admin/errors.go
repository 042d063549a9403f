package admin

import (
	"errors"
)

var (
	ErrInvalidInput   = errors.New("invalid event input")
	ErrEventNotFound  = errors.New("event not found")
	ErrTotalBelowSold = errors.New("tickets_total cannot be less than tickets_sold")
	ErrEventConflict  = errors.New("event violates a storage constraint")
)

// ValidationError describes one rejected field. It matches ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
