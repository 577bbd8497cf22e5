// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Transport is a connected publisher and subscriber pair.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	backend Backend
	server  *EmbeddedServer
	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewTransport connects the configured backend. For NATS it also ensures
// the stream holding the progress and poison topics exists.
func NewTransport(ctx context.Context, cfg *Config, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	switch cfg.Backend {
	case BackendMemory:
		return newMemoryTransport(cfg, logger), nil
	case BackendNATS:
		return newNATSTransport(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
}

func newMemoryTransport(cfg *Config, logger watermill.LoggerAdapter) *Transport {
	gc := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.MemoryBuffer,
	}, logger)
	return &Transport{
		Publisher:  gc,
		Subscriber: gc,
		backend:    BackendMemory,
		closers:    []io.Closer{gc},
	}
}

// natsOptions returns connection options with reconnection logging.
func natsOptions(cfg *NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("lectern"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}

func newNATSTransport(ctx context.Context, cfg *Config, logger watermill.LoggerAdapter) (*Transport, error) {
	opts := natsOptions(&cfg.NATS, logger)
	t := &Transport{backend: BackendNATS}

	url := cfg.NATS.URL
	if cfg.NATS.Embedded != nil {
		srv, err := NewEmbeddedServer(cfg.NATS.Embedded)
		if err != nil {
			return nil, err
		}
		t.server = srv
		url = srv.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
	}

	nc, err := natsgo.Connect(url, opts...)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	t.closers = append(t.closers, closerFunc(func() error {
		nc.Close()
		return nil
	}))

	js, err := jetstream.New(nc)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	if err := ensureStreams(ctx, js, cfg); err != nil {
		_ = t.Close()
		return nil, err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	t.Publisher = pub
	t.closers = append([]io.Closer{pub}, t.closers...)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.NATS.QueueGroup,
		SubscribersCount: cfg.Subscribers,
		AckWaitTimeout:   cfg.NATS.AckWaitTimeout,
		CloseTimeout:     cfg.Router.CloseTimeout,
		NatsOptions:      opts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxAckPending(cfg.NATS.MaxAckPending),
				natsgo.AckWait(cfg.NATS.AckWaitTimeout),
				natsgo.DeliverAll(),
			},
			DurablePrefix:     cfg.NATS.QueueGroup,
			DurableCalculator: durableName,
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	t.Subscriber = sub
	t.closers = append([]io.Closer{sub}, t.closers...)

	return t, nil
}

// ensureStreams creates the progress stream and, when a poison topic is
// set, a separate poison stream. Poisoned messages keep their Nats-Msg-Id,
// so sharing the progress stream would drop them as duplicates.
func ensureStreams(ctx context.Context, js jetstream.JetStream, cfg *Config) error {
	streams := []StreamConfig{{
		Name:            cfg.NATS.StreamName,
		Subjects:        []string{cfg.Topic},
		MaxAge:          cfg.NATS.StreamMaxAge,
		DuplicateWindow: cfg.NATS.DuplicateWindow,
	}}
	if cfg.PoisonTopic != "" {
		streams = append(streams, StreamConfig{
			Name:            PoisonStreamName(cfg.NATS.StreamName),
			Subjects:        []string{cfg.PoisonTopic},
			MaxAge:          cfg.NATS.StreamMaxAge,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
		})
	}
	for i := range streams {
		initializer, err := NewStreamInitializer(js, &streams[i])
		if err != nil {
			return err
		}
		if err := initializer.EnsureStream(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PoisonStreamName returns the stream holding poisoned events.
func PoisonStreamName(stream string) string {
	return stream + "_POISON"
}

var durableReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_")

// durableName gives every topic its own durable consumer; JetStream names
// cannot contain '.'.
func durableName(prefix, topic string) string {
	return prefix + "_" + durableReplacer.Replace(topic)
}

// Backend returns the transport's backend.
func (t *Transport) Backend() Backend {
	return t.backend
}

// ClientURL returns the embedded server's URL, or "" when none runs.
func (t *Transport) ClientURL() string {
	if t.server == nil {
		return ""
	}
	return t.server.ClientURL()
}

// Close closes the subscriber, the publisher, the connection and then the
// embedded server, in that order.
func (t *Transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	if t.server != nil {
		if err := t.server.Close(); err != nil {
			errs = append(errs, err)
		}
		t.server = nil
	}
	return errors.Join(errs...)
}
