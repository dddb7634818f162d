// Package events publishes completed key mutations to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// Conn is the part of a NATS connection the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Publisher implements etcd.EventPublisher on a NATS connection. Events go
// to "<prefix>.<action>", for example "etcdv2.events.set".
type Publisher struct {
	conn          Conn
	subjectPrefix string
	flushTimeout  time.Duration

	mu     sync.Mutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSubjectPrefix sets the subject prefix.
func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.subjectPrefix = prefix
	}
}

// WithFlushTimeout makes every Publish wait for the server to acknowledge
// the message. Zero publishes without waiting.
func WithFlushTimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		p.flushTimeout = timeout
	}
}

// Connect dials the NATS server at url.
func Connect(url string, opts ...Option) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(constants.DefaultUserAgent),
		nats.Timeout(constants.DefaultPublishTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return NewPublisher(conn, opts...), nil
}

// NewPublisher wraps an established connection.
func NewPublisher(conn Conn, opts ...Option) *Publisher {
	publisher := &Publisher{
		conn:          conn,
		subjectPrefix: constants.DefaultSubjectPrefix,
	}

	for _, opt := range opts {
		opt(publisher)
	}

	return publisher
}

// Subject returns the subject an action is published on.
func (p *Publisher) Subject(action string) string {
	return p.subjectPrefix + "." + action
}

// Publish implements etcd.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event *etcd.Event) error {
	if event == nil {
		return constants.ErrNilEvent
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return constants.ErrPublisherClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = p.conn.Publish(p.Subject(event.Action), data)
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Action, err)
	}

	if p.flushTimeout > 0 {
		err = p.conn.FlushTimeout(p.flushTimeout)
		if err != nil {
			return fmt.Errorf("flushing %s event: %w", event.Action, err)
		}
	}

	return nil
}

// Close closes the underlying connection. Later publishes fail.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	p.conn.Close()
}
