package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/internal/http"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// Client implements the etcd.Client interface.
type Client struct {
	httpClient *http.Client
	conn       *etcd.Connection
	logger     etcd.Logger
	publisher  etcd.EventPublisher
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *etcd.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.Tracer != nil {
		httpOpts = append(httpOpts, http.WithTracer(config.Tracer))
	}

	return httpOpts
}

// New creates a client dispatching on conn. A nil config uses the defaults.
func New(conn *etcd.Connection, config *etcd.Config) (*Client, error) {
	if conn == nil {
		return nil, etcd.ErrConnectionRequired
	}

	if config == nil {
		config = &etcd.Config{}
	}

	client := &Client{
		httpClient: http.NewClient(conn, createHTTPClientOptions(config)...),
		conn:       conn,
		logger:     config.Logger,
		publisher:  config.Publisher,
	}

	return client, nil
}

// Connection implements etcd.Client.Connection.
func (c *Client) Connection() *etcd.Connection {
	return c.conn
}

// publish hands a completed mutation to the configured publisher. The
// mutation already happened, so a failed publish is only logged.
func (c *Client) publish(ctx context.Context, action, key, value, prevValue string) {
	if c.publisher == nil {
		return
	}

	event := &etcd.Event{
		Action:    action,
		Key:       key,
		Value:     value,
		PrevValue: prevValue,
		Endpoint:  c.conn.BaseURL(),
		Time:      time.Now().UTC(),
	}

	err := c.publisher.Publish(ctx, event)
	if err != nil && c.logger != nil {
		c.logger.Warn("Publishing event failed", map[string]interface{}{
			"action": action,
			"key":    key,
			"error":  err.Error(),
		})
	}
}

// loggerAdapter adapts etcd.Logger to http.Logger.
type loggerAdapter struct {
	logger etcd.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
