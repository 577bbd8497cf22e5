// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lectern/internal/learning"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/validation"
)

// Publisher publishes session progress events through a circuit breaker.
// It does not own the underlying publisher; Transport.Close releases it.
type Publisher struct {
	publisher      message.Publisher
	topic          string
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	serializer     *Serializer
	mu             sync.RWMutex
	closed         bool
	logger         watermill.LoggerAdapter
	now            func() time.Time
}

// NewPublisher creates a Publisher writing to topic.
func NewPublisher(pub message.Publisher, topic string, logger watermill.LoggerAdapter) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{
		publisher:  pub,
		topic:      topic,
		serializer: NewSerializer(),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SetCircuitBreaker sets the circuit breaker for the publisher.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Topic returns the progress topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends a message to topic. The message UUID doubles as the
// Nats-Msg-Id so JetStream drops redelivered publishes.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPublisherClosed
	}
	p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	metrics.RecordEventPublish(err)
	if err != nil {
		p.logger.Error("Publish failed", err, watermill.LogFields{
			"topic":      topic,
			"message_id": msg.UUID,
		})
		return fmt.Errorf("publish %s: %w", msg.UUID, err)
	}
	return nil
}

// PublishProgress validates u, wraps it in an event and publishes it to
// the progress topic. It returns the event id.
//
// Validation runs before queueing so callers can reject bad reports
// synchronously; failures wrap learning.ErrInvalidMetric.
func (p *Publisher) PublishProgress(ctx context.Context, u models.SessionUpdate) (string, error) {
	if verr := validation.ValidateStruct(u); verr != nil {
		metrics.RecordSessionUpdate(metrics.ResultRejected, 0)
		return "", fmt.Errorf("%w: %w", learning.ErrInvalidMetric, verr)
	}

	event := NewSessionProgressEvent(u, p.now().UTC())
	data, err := p.serializer.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(MetadataUserID, strconv.FormatInt(u.UserID, 10))
	msg.Metadata.Set(MetadataDocumentID, strconv.FormatInt(u.DocumentID, 10))
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.RequestIDFromContext(ctx)
	}
	if correlationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, correlationID)
	}

	if err := p.Publish(ctx, p.topic, msg); err != nil {
		return "", err
	}
	return event.EventID, nil
}

// Close marks the publisher closed. Further publishes fail with
// ErrPublisherClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
