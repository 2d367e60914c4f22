package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access forbidden")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrPersistence        = errors.New("persistence failure")

	// Agent-side failures.
	ErrSynthesisFailure       = errors.New("query synthesis failed")
	ErrMalformedToolInput     = errors.New("malformed tool input")
	ErrOrchestrationExhausted = errors.New("could not determine answer")
	ErrReasoning              = errors.New("reasoning step failed")
)
