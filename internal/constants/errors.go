package constants

import "errors"

// Dispatch errors.
var (
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrRateLimited       = errors.New("rate limiter wait failed")
	ErrInvalidRequest    = errors.New("invalid request")
)

// Publishing errors.
var (
	ErrPublisherClosed = errors.New("event publisher is closed")
	ErrNilEvent        = errors.New("event is nil")
)

// CLI configuration errors.
var (
	ErrContextNotFound      = errors.New("context not found")
	ErrContextAlreadyExists = errors.New("context already exists")
	ErrCannotRemoveCurrent  = errors.New("cannot remove the current context")
	ErrInvalidQueryArgument = errors.New("query argument must be NAME=VALUE")
	ErrUnknownOutputFormat  = errors.New("unknown output format")
	ErrValueRequired        = errors.New("VALUE is required unless --no-value is given")
)
