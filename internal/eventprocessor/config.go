// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"fmt"
	"strings"
	"time"
)

// Backend selects the message transport.
type Backend string

const (
	// BackendMemory is an in-process Watermill gochannel.
	BackendMemory Backend = "memory"

	// BackendNATS is NATS JetStream via watermill-nats.
	BackendNATS Backend = "nats"
)

// Config holds event processing configuration.
type Config struct {
	Backend Backend

	// Topic carries session progress events.
	Topic string

	// PoisonTopic receives events that failed after all retries.
	PoisonTopic string

	// Subscribers is the number of concurrent consumers.
	//
	// With more than one subscriber, updates for the same reader may be
	// applied out of order. Per-pair writes stay atomic either way.
	Subscribers int

	Router  RouterConfig
	Breaker CircuitBreakerConfig
	NATS    NATSConfig

	// MemoryBuffer is the gochannel output buffer per subscriber.
	MemoryBuffer int64
}

// NATSConfig holds JetStream connection and stream settings.
type NATSConfig struct {
	URL        string
	StreamName string
	QueueGroup string

	// Embedded, when set, starts an in-process server and URL is ignored.
	Embedded *ServerConfig

	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
	AckWaitTimeout  time.Duration
	MaxAckPending   int

	// StreamMaxAge bounds how long unconsumed events are kept.
	StreamMaxAge time.Duration

	// DuplicateWindow is the JetStream Nats-Msg-Id deduplication window.
	DuplicateWindow time.Duration
}

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// Throttle configuration (messages per second, 0 = disabled)
	ThrottlePerSecond int64

	// PoisonQueueTopic is where failed messages go. Empty disables the poison queue.
	PoisonQueueTopic string

	// DedupWindow is how long applied event ids are remembered (0 = disabled).
	DedupWindow   time.Duration
	DedupCapacity int
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		ThrottlePerSecond:    0,
		PoisonQueueTopic:     "reading.progress.poison",
		DedupWindow:          10 * time.Minute,
		DedupCapacity:        100000,
	}
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// DefaultNATSConfig returns production defaults for the NATS backend.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:             "nats://127.0.0.1:4222",
		StreamName:      "LECTERN_PROGRESS",
		QueueGroup:      "lectern-progress",
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
		AckWaitTimeout:  30 * time.Second,
		MaxAckPending:   1000,
		StreamMaxAge:    7 * 24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
	}
}

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int // -1 picks a free port
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns defaults for the embedded server. Only
// in-process clients connect, so it listens on loopback with a free port.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              -1,
		StoreDir:          "/data/nats",
		JetStreamMaxMem:   256 << 20, // 256MB
		JetStreamMaxStore: 4 << 30,   // 4GB
	}
}

// DefaultConfig returns the in-memory configuration.
func DefaultConfig() Config {
	router := DefaultRouterConfig()
	return Config{
		Backend:      BackendMemory,
		Topic:        "reading.progress",
		PoisonTopic:  router.PoisonQueueTopic,
		Subscribers:  4,
		Router:       router,
		Breaker:      DefaultCircuitBreakerConfig("event-publisher"),
		NATS:         DefaultNATSConfig(),
		MemoryBuffer: 256,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendNATS:
		if c.NATS.Embedded == nil && c.NATS.URL == "" {
			return fmt.Errorf("%w: NATS URL is required", ErrInvalidConfig)
		}
		if c.NATS.StreamName == "" || strings.ContainsAny(c.NATS.StreamName, ".*> ") {
			return fmt.Errorf("%w: invalid stream name %q", ErrInvalidConfig, c.NATS.StreamName)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if c.PoisonTopic == c.Topic {
		return fmt.Errorf("%w: poison topic must differ from topic", ErrInvalidConfig)
	}
	if c.Subscribers < 1 {
		return fmt.Errorf("%w: subscribers must be positive, got %d", ErrInvalidConfig, c.Subscribers)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry count must be non-negative, got %d", ErrInvalidConfig, c.Router.RetryMaxRetries)
	}
	return nil
}
