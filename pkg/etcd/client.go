package etcd

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// KeysClient provides the key and directory operations.
type KeysClient interface {
	// Read returns the value stored at key. With OptRaw the response body is
	// returned as received.
	Read(ctx context.Context, key string, args ...string) (string, error)
	// Write stores value at key and returns the previous value, if any.
	Write(ctx context.Context, key, value string, args ...string) (string, error)
	// Delete removes key and returns the previous value, if any.
	Delete(ctx context.Context, key string, args ...string) (string, error)
	Mkdir(ctx context.Context, dir string) error
	// Rmdir removes a directory and returns the raw response body.
	Rmdir(ctx context.Context, dir string, recursive bool) (string, error)
	// Glob lists dir as flat entries whose last path segment matches pattern.
	Glob(ctx context.Context, dir string, recursive bool, pattern string) ([]FlatEntry, error)
}

// MachinesClient provides cluster introspection.
type MachinesClient interface {
	Machines(ctx context.Context) (string, error)
	// Leader queries the same endpoint as Machines; the v2 machines endpoint
	// does not single out the leader.
	Leader(ctx context.Context) (string, error)
}

// Client is a keys API client bound to one connection.
type Client interface {
	KeysClient
	MachinesClient

	// Connection returns the connection the client dispatches on.
	Connection() *Connection
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// EventPublisher receives an Event after every successful write or delete.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Config holds client-side behaviour. Endpoint settings live on the
// Connection.
//
// Retries are off unless RetryMax is set: the client never retries on its own.
type Config struct {
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// RetryMax is the maximum number of retries for transient failures.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
	// RateBurst is the limiter bucket size, at least 1.
	RateBurst int

	// Tracer starts a span per request. Defaults to the global tracer provider.
	Tracer trace.Tracer
	// Publisher receives mutation events.
	Publisher EventPublisher
}
