// Package kafka publishes audit events for comparison, export, and job
// activity.  Publishing is best-effort; a broker outage must never fail the
// user-facing request.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/competiscope/internal/config"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
)

var ErrProducerClosed = errors.Internal("kafka producer is closed")

// AuditEvent is one audit record published to the audit topic.
type AuditEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Audit event types.
const (
	EventComparisonFetched  = "comparison.fetched"
	EventExportRendered     = "export.rendered"
	EventRecomputeRequested = "analytics.recompute_requested"
	EventGraphSyncRequested = "analytics.graph_sync_requested"
)

// NewAuditEvent builds an event with a fresh id and timestamp.
func NewAuditEvent(eventType string, payload map[string]interface{}) AuditEvent {
	return AuditEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Producer is the audit event sink.
type Producer interface {
	Publish(ctx context.Context, event AuditEvent) error
	Close() error
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaProducer struct {
	writer writerInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer creates a kafka-go backed audit producer.
func NewProducer(cfg *config.KafkaConfig, log logging.Logger) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &kafkaProducer{writer: writer, logger: log}
}

func (p *kafkaProducer) Publish(ctx context.Context, event AuditEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal audit event")
	}

	msg := kafka.Message{
		Key:   []byte(event.Type),
		Value: value,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("Failed to publish audit event",
			logging.String("type", event.Type),
			logging.Err(err),
		)
		return errors.Wrap(err, errors.CodeNetworkFailure, "failed to publish audit event")
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

// nopProducer is used when kafka is disabled in configuration.
type nopProducer struct{}

// NewNopProducer returns a producer that discards all events.
func NewNopProducer() Producer { return nopProducer{} }

func (nopProducer) Publish(context.Context, AuditEvent) error { return nil }
func (nopProducer) Close() error                              { return nil }
