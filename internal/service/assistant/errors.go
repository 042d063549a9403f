package assistant

import "errors"

var (
	ErrMissingText = errors.New("missing text input")
	ErrUnavailable = errors.New("language model is not configured")
)
