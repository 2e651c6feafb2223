package leads

import "errors"

var (
	// ErrMissingName is returned when a lead has no name
	ErrMissingName = errors.New("name is required")

	// ErrMissingPhone is returned when a lead has no phone number
	ErrMissingPhone = errors.New("phone is required")
)
