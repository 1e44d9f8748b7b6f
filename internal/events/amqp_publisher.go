package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// amqpChannel is the subset of *amqp.Channel the publisher uses
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialFunc opens a channel on a fresh connection
type dialFunc func(ctx context.Context, url string) (amqpChannel, func() error, error)

const (
	// defaultDialTimeout bounds a dial when the caller's context has no deadline
	defaultDialTimeout = 5 * time.Second
	// dialBackoff is how long publishes fail fast after a failed dial
	dialBackoff = 10 * time.Second
)

// AMQPPublisher publishes lifecycle events to a durable topic exchange.
// The connection is opened lazily and reopened after the broker drops it.
// After a failed dial, publishes fail immediately until the back-off passes.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     dialFunc
	logger   *logrus.Logger
	now      func() time.Time

	mu        sync.Mutex
	ch        amqpChannel
	closeConn func() error
	retryAt   time.Time
	lastErr   error
}

// NewAMQPPublisher creates a publisher for the given broker URL and exchange
func NewAMQPPublisher(url, exchange string, logger *logrus.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		dial:     dialAMQP,
		logger:   logger,
		now:      time.Now,
	}
}

func dialAMQP(ctx context.Context, url string) (amqpChannel, func() error, error) {
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return nil, nil, fmt.Errorf("rabbitmq dial failed: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}
	return ch, conn.Close, nil
}

type dialResult struct {
	ch        amqpChannel
	closeConn func() error
	err       error
}

// dialContext runs the dial but returns as soon as ctx is done. A connection
// that arrives after that is closed.
func (p *AMQPPublisher) dialContext(ctx context.Context) (amqpChannel, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial skipped: %w", err)
	}

	done := make(chan dialResult, 1)
	go func() {
		ch, closeConn, err := p.dial(ctx, p.url)
		done <- dialResult{ch: ch, closeConn: closeConn, err: err}
	}()

	select {
	case r := <-done:
		return r.ch, r.closeConn, r.err
	case <-ctx.Done():
		go func() {
			r := <-done
			if r.err == nil {
				_ = r.ch.Close()
				if r.closeConn != nil {
					_ = r.closeConn()
				}
			}
		}()
		return nil, nil, fmt.Errorf("rabbitmq dial abandoned: %w", ctx.Err())
	}
}

// channel returns an open channel, reconnecting if needed. Caller holds mu.
func (p *AMQPPublisher) channel(ctx context.Context) (amqpChannel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if now := p.now(); now.Before(p.retryAt) {
		return nil, fmt.Errorf("rabbitmq unavailable, next dial in %s: %w", p.retryAt.Sub(now).Round(time.Millisecond), p.lastErr)
	}

	ch, closeConn, err := p.dialContext(ctx)
	if err == nil {
		if derr := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); derr != nil {
			_ = ch.Close()
			if closeConn != nil {
				_ = closeConn()
			}
			err = fmt.Errorf("rabbitmq exchange declare failed: %w", derr)
		}
	}
	if err != nil {
		p.retryAt = p.now().Add(dialBackoff)
		p.lastErr = err
		return nil, err
	}

	p.retryAt = time.Time{}
	p.lastErr = nil
	p.ch = ch
	p.closeConn = closeConn
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.closeConn != nil {
		_ = p.closeConn()
		p.closeConn = nil
	}
}

// Publish sends one event as a persistent JSON message
func (p *AMQPPublisher) Publish(ctx context.Context, event LifecycleEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, msg); err != nil {
		// drop the channel so the next publish reconnects
		p.reset()
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"routing_key": event.RoutingKey(),
	}).Debug("Event published")
	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
