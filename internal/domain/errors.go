package domain

import "errors"

var (
	// ErrValidation marks caller-supplied input that fails validation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPhoneNumber marks a destination that cannot be normalized.
	// Terminal for that destination; no provider is attempted.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrNoProviderAvailable marks a destination country with no configured
	// provider. A configuration-level fault, not retried.
	ErrNoProviderAvailable = errors.New("no sms provider available")

	// ErrAllProvidersFailed marks an exhausted fallback chain. The wrapped
	// message carries the last provider error for diagnostics.
	ErrAllProvidersFailed = errors.New("all sms providers failed")

	// ErrUnknownTemplate marks a template name that is not registered.
	ErrUnknownTemplate = errors.New("unknown notification template")
)
