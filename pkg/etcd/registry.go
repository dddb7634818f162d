package etcd

import (
	"fmt"
	"net"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Protocols understood by the dispatcher.
const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Connection defaults.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 4001
	DefaultProtocol = ProtocolHTTP
	// DefaultTimeout disables the request timeout.
	DefaultTimeout = time.Duration(-1)
)

// Token identifies a registered connection. Tokens are unique for the life of
// the process.
type Token string

// ConnectionOptions describes one endpoint. Host is an IP address or a host
// name whose labels may also contain underscores, such as "etcd_1". A
// negative Timeout disables the request timeout.
type ConnectionOptions struct {
	Host      string        `json:"host"       yaml:"host"       validate:"required,etcd_host"`
	Port      int           `json:"port"       yaml:"port"       validate:"min=1,max=65535"`
	Protocol  string        `json:"protocol"   yaml:"protocol"   validate:"oneof=http https"`
	Timeout   time.Duration `json:"timeout"    yaml:"timeout"`
	KeepAlive bool          `json:"keep_alive" yaml:"keep_alive"`
}

// DefaultConnectionOptions returns the options used when none are given.
func DefaultConnectionOptions() ConnectionOptions {
	return ConnectionOptions{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Protocol: DefaultProtocol,
		Timeout:  DefaultTimeout,
	}
}

// ConnectionOption configures ConnectionOptions.
type ConnectionOption func(*ConnectionOptions)

// WithHost sets the host.
func WithHost(host string) ConnectionOption {
	return func(o *ConnectionOptions) { o.Host = host }
}

// WithPort sets the port.
func WithPort(port int) ConnectionOption {
	return func(o *ConnectionOptions) { o.Port = port }
}

// WithProtocol sets the protocol, http or https.
func WithProtocol(protocol string) ConnectionOption {
	return func(o *ConnectionOptions) { o.Protocol = protocol }
}

// WithTimeout sets the request timeout. A negative value disables it.
func WithTimeout(timeout time.Duration) ConnectionOption {
	return func(o *ConnectionOptions) { o.Timeout = timeout }
}

// WithKeepAlive toggles HTTP keep-alive.
func WithKeepAlive(keepAlive bool) ConnectionOption {
	return func(o *ConnectionOptions) { o.KeepAlive = keepAlive }
}

// Connection is a configured endpoint together with the last raw response
// received on it.
type Connection struct {
	token   Token
	options ConnectionOptions

	mu           sync.RWMutex
	lastResponse string
}

// NewConnection validates opts and returns an unregistered connection.
func NewConnection(opts ConnectionOptions) (*Connection, error) {
	err := ValidateConnectionOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Connection{options: opts}, nil
}

// Token returns the registry token, empty for unregistered connections.
func (c *Connection) Token() Token {
	return c.token
}

// Options returns a copy of the connection options.
func (c *Connection) Options() ConnectionOptions {
	return c.options
}

// Addr returns host:port.
func (c *Connection) Addr() string {
	return net.JoinHostPort(c.options.Host, strconv.Itoa(c.options.Port))
}

// BaseURL returns protocol://host:port.
func (c *Connection) BaseURL() string {
	return c.options.Protocol + "://" + c.Addr()
}

// LastResponse returns the raw body of the most recent response, successful
// or not. Concurrent callers sharing a connection see the last writer's body.
func (c *Connection) LastResponse() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastResponse
}

// RecordResponse stores body as the last response. It is meant for the
// request dispatcher only.
func (c *Connection) RecordResponse(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastResponse = body
}

// OptionValue returns the string form of a named option: host, port,
// protocol, timeout (milliseconds) or keepalive.
func (c *Connection) OptionValue(name string) (string, bool) {
	switch name {
	case "host":
		return c.options.Host, true
	case "port":
		return strconv.Itoa(c.options.Port), true
	case "protocol":
		return c.options.Protocol, true
	case "timeout":
		return strconv.FormatInt(c.options.Timeout.Milliseconds(), 10), true
	case "keepalive":
		return strconv.FormatBool(c.options.KeepAlive), true
	default:
		return "", false
	}
}

// Filter selects connections whose named option matches a glob pattern.
type Filter struct {
	Option  string
	Pattern string
}

// Registry maps tokens to connections.
type Registry struct {
	mu          sync.RWMutex
	connections map[Token]*Connection
	order       []Token
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[Token]*Connection),
	}
}

// DefaultRegistry is the process-wide registry used by New and Lookup.
var DefaultRegistry = NewRegistry()

// Create validates opts, registers a connection and returns its token.
func (r *Registry) Create(opts ConnectionOptions) (Token, error) {
	conn, err := NewConnection(opts)
	if err != nil {
		return "", err
	}

	conn.token = Token("etcd-" + uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn.token] = conn
	r.order = append(r.order, conn.token)

	return conn.token, nil
}

// Lookup resolves a token.
func (r *Registry) Lookup(token Token) (*Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[token]
	if !ok {
		return nil, &UnknownContextError{Token: token}
	}

	return conn, nil
}

// Find returns, in creation order, the tokens of connections matching every
// filter. Filters naming an unknown option match nothing.
func (r *Registry) Find(filters ...Filter) []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tokens []Token

	for _, token := range r.order {
		if r.connections[token].matches(filters) {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

// Remove unregisters a token and reports whether it was registered.
func (r *Registry) Remove(token Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[token]; !ok {
		return false
	}

	delete(r.connections, token)

	for idx, registered := range r.order {
		if registered == token {
			r.order = append(r.order[:idx], r.order[idx+1:]...)

			break
		}
	}

	return true
}

// Tokens returns every registered token in creation order.
func (r *Registry) Tokens() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]Token, len(r.order))
	copy(tokens, r.order)

	return tokens
}

func (c *Connection) matches(filters []Filter) bool {
	for _, filter := range filters {
		value, ok := c.OptionValue(filter.Option)
		if !ok {
			return false
		}

		matched, err := path.Match(filter.Pattern, value)
		if err != nil || !matched {
			return false
		}
	}

	return true
}

// New registers a connection in DefaultRegistry, starting from the default
// options.
func New(opts ...ConnectionOption) (Token, error) {
	options := DefaultConnectionOptions()
	for _, opt := range opts {
		opt(&options)
	}

	token, err := DefaultRegistry.Create(options)
	if err != nil {
		return "", fmt.Errorf("creating connection: %w", err)
	}

	return token, nil
}

// Lookup resolves a token in DefaultRegistry.
func Lookup(token Token) (*Connection, error) {
	return DefaultRegistry.Lookup(token)
}
