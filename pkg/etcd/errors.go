package etcd

import (
	"encoding/json"
	"errors"
	"fmt"
)

// etcd v2 error codes.
const (
	ErrorCodeKeyNotFound       = 100
	ErrorCodeTestFailed        = 101
	ErrorCodeNotFile           = 102
	ErrorCodeNotDir            = 104
	ErrorCodeNodeExist         = 105
	ErrorCodeRootReadOnly      = 107
	ErrorCodeDirNotEmpty       = 108
	ErrorCodePrevValueRequired = 201
	ErrorCodeTTLNaN            = 202
	ErrorCodeIndexNaN          = 203
	ErrorCodeInvalidField      = 209
	ErrorCodeRaftInternal      = 300
	ErrorCodeLeaderElect       = 301
)

// Common static errors that can be wrapped with context.
var (
	ErrUnknownOption      = errors.New("unknown option before separator")
	ErrOddQueryArguments  = errors.New("query arguments must come in name/value pairs")
	ErrConnectionRequired = errors.New("connection is required")
	ErrInvalidEndpoint    = errors.New("invalid endpoint")
)

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error talking to %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response without a structured error body.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// APIError is a non-2xx response carrying the service's structured error.
type APIError struct {
	Code       int    `json:"errorCode"       yaml:"error_code"`
	Message    string `json:"message"         yaml:"message"`
	Cause      string `json:"cause,omitempty" yaml:"cause,omitempty"`
	Index      uint64 `json:"index,omitempty" yaml:"index,omitempty"`
	StatusCode int    `json:"-"               yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s: %s (code: %d)", e.Message, e.Cause, e.Code)
	}

	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// DirectoryNotReadableError is returned by a non-raw read of a directory.
type DirectoryNotReadableError struct {
	Key string
}

// Error implements the error interface.
func (e *DirectoryNotReadableError) Error() string {
	return fmt.Sprintf("%s is a directory, read it raw or use glob", e.Key)
}

// UnknownContextError is returned when a token does not resolve to a connection.
type UnknownContextError struct {
	Token Token
}

// Error implements the error interface.
func (e *UnknownContextError) Error() string {
	return fmt.Sprintf("unknown connection %q", string(e.Token))
}

// MalformedResponseError is returned when a body had to be parsed and could not be.
type MalformedResponseError struct {
	Body string
	Err  error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ParseAPIError extracts a structured error from a response body. It returns
// nil when the body is not JSON or lacks either errorCode or message.
func ParseAPIError(statusCode int, data []byte) *APIError {
	var raw struct {
		Code    *int    `json:"errorCode"`
		Message *string `json:"message"`
		Cause   string  `json:"cause"`
		Index   uint64  `json:"index"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil || raw.Code == nil || raw.Message == nil {
		return nil
	}

	return &APIError{
		Code:       *raw.Code,
		Message:    *raw.Message,
		Cause:      raw.Cause,
		Index:      raw.Index,
		StatusCode: statusCode,
	}
}

// IsKeyNotFound checks if the error is a key not found error.
func IsKeyNotFound(err error) bool {
	return hasErrorCode(err, ErrorCodeKeyNotFound)
}

// IsCompareFailed checks if the error is a failed compare-and-swap.
func IsCompareFailed(err error) bool {
	return hasErrorCode(err, ErrorCodeTestFailed)
}

// IsNodeExist checks if the error reports an already existing key.
func IsNodeExist(err error) bool {
	return hasErrorCode(err, ErrorCodeNodeExist)
}

// IsTransport checks if the error happened before a response was received.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

func hasErrorCode(err error, code int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}

	return false
}
