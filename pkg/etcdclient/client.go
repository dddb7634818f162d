// Package etcdclient provides the main entry point for creating etcd v2 keys API clients
package etcdclient

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/etcdv2-client/internal/client"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// New creates a client dispatching on conn. A nil config uses the defaults.
func New(conn *etcd.Connection, config *etcd.Config) (etcd.Client, error) {
	c, err := client.New(conn, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// Open resolves token in registry and creates a client on that connection.
// A nil registry means etcd.DefaultRegistry.
func Open(registry *etcd.Registry, token etcd.Token, config *etcd.Config) (etcd.Client, error) {
	if registry == nil {
		registry = etcd.DefaultRegistry
	}

	conn, err := registry.Lookup(token)
	if err != nil {
		return nil, err
	}

	return New(conn, config)
}

// NewWithEndpoint creates an unregistered connection from an endpoint such
// as "http://10.0.0.1:4001", "https://etcd.local" or "10.0.0.1:2379" and a
// client on it. The protocol defaults to http and the port to 4001.
func NewWithEndpoint(endpoint string, config *etcd.Config) (etcd.Client, error) {
	opts, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	conn, err := etcd.NewConnection(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", endpoint, err)
	}

	return New(conn, config)
}

// ParseEndpoint turns an endpoint URL into connection options.
func ParseEndpoint(endpoint string) (etcd.ConnectionOptions, error) {
	opts := etcd.DefaultConnectionOptions()

	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return opts, fmt.Errorf("%w: empty", etcd.ErrInvalidEndpoint)
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = etcd.ProtocolHTTP + "://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return opts, fmt.Errorf("%w: %w", etcd.ErrInvalidEndpoint, err)
	}

	if parsed.Path != "" {
		return opts, fmt.Errorf("%w: unexpected path %q", etcd.ErrInvalidEndpoint, parsed.Path)
	}

	opts.Protocol = parsed.Scheme
	opts.Host = parsed.Hostname()

	if portStr := parsed.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return opts, fmt.Errorf("%w: port %q", etcd.ErrInvalidEndpoint, portStr)
		}

		opts.Port = port
	}

	if opts.Host == "" {
		return opts, fmt.Errorf("%w: no host in %q", etcd.ErrInvalidEndpoint, endpoint)
	}

	return opts, nil
}

// Endpoint formats connection options back into an endpoint URL.
func Endpoint(opts etcd.ConnectionOptions) string {
	return opts.Protocol + "://" + net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
}
