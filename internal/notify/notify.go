// Package notify publishes provenance refresh triggers so consumer-facing
// views can re-fetch a product after its chain of custody changes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/pkg/worker"
)

// RefreshPublisher announces that a product's provenance changed.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, productID string) error
	Close() error
}

// refreshMessage is the payload published on each trigger.
type refreshMessage struct {
	ProductID string    `json:"product_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NATSPublisher publishes refresh triggers to a NATS subject
// <prefix>.<productID>, e.g. "provenance.updated.prod-123".
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSPublisher connects to NATS at url.
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, subjectPrefix: subjectPrefix}, nil
}

// PublishRefresh publishes a refresh trigger for productID. Failures are
// not fatal to the caller's mutation: the write already succeeded,
// consumers just miss one proactive refresh.
func (p *NATSPublisher) PublishRefresh(ctx context.Context, productID string) error {
	msg := refreshMessage{ProductID: productID, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal refresh message: %w", err)
	}
	subject := p.subjectPrefix + "." + productID
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// AsyncPublisher decorates a RefreshPublisher so triggers fire on the
// general worker pool, detached from the request context: a slow broker
// never blocks a mutation that already committed, and in-flight publishes
// still stop on graceful shutdown.
type AsyncPublisher struct {
	inner RefreshPublisher
	pools *worker.Pools
}

// NewAsyncPublisher wraps inner with detached delivery.
func NewAsyncPublisher(inner RefreshPublisher, pools *worker.Pools) *AsyncPublisher {
	return &AsyncPublisher{inner: inner, pools: pools}
}

// PublishRefresh hands the trigger to the general pool and returns
// immediately. Delivery failures are logged, never surfaced.
func (p *AsyncPublisher) PublishRefresh(_ context.Context, productID string) error {
	return p.pools.SubmitDetached("general", func(ctx context.Context) {
		if err := p.inner.PublishRefresh(ctx, productID); err != nil {
			logger.Warn("refresh publish failed",
				zap.String("product_id", productID),
				zap.Error(err),
			)
		}
	})
}

// Close closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	return p.inner.Close()
}

// NoopPublisher is used when messaging is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRefresh(context.Context, string) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
