package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrResultNotFound   = errors.New("result not found")

	// Provider errors. RateLimited and ProviderUnavailable are the
	// transient class: the turn is aborted and the user is asked to
	// try again. Anything else wraps ErrProvider.
	ErrRateLimited         = errors.New("provider rate limited")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProvider            = errors.New("provider error")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
