package usecase

import "errors"

// Sentinel errors returned by use cases. Callers classify with
// errors.Is and map them to transport-level responses.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrPermission             = errors.New("permission denied")
	ErrRateLimited            = errors.New("rate limited")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
	ErrValidationFailed       = errors.New("data quality validation failed")
	ErrCollectionInterrupted  = errors.New("collection interrupted")
	ErrSourceAlreadyCollected = errors.New("source already collected")
)
