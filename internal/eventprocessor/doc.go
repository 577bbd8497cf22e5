// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package eventprocessor provides asynchronous ingestion of reading progress.

Clients that cannot wait for a synchronous write publish a
SessionProgressEvent. A Watermill router consumes those events and applies
each one through the learning coordinator, exactly as the synchronous HTTP
path does.

# Transports

Two backends share one code path:

  - memory: an in-process Watermill gochannel. Events are lost on restart.
  - nats: NATS JetStream through watermill-nats. The progress topic and the
    poison topic each get a stream, created or updated on start. Publishes
    carry Nats-Msg-Id, so JetStream drops redelivered ids inside the
    duplicate window. With NATSConfig.Embedded set, a JetStream server runs
    in process and the transport connects to it.

# Middleware Stack

Router middleware, outermost first:

 1. Throttle: optional rate limit on consumed messages
 2. PoisonQueue: messages that still fail after retries go to the poison topic
 3. Deduplicate: already-applied event ids are acknowledged without work
 4. Retry: exponential backoff for storage failures
 5. Recoverer: handler panics become errors

# Acknowledgement Rules

The progress handler acknowledges messages that can never succeed:
malformed payloads, updates that fail metric validation and updates for
unknown documents. These are counted as rejected. Any other failure is
returned to the router, retried and finally routed to the poison topic.

# Usage

	components, err := eventprocessor.NewComponents(ctx, cfg, coordinator, logger)
	if err != nil {
	    return err
	}
	if err := components.Start(ctx); err != nil {
	    return err
	}
	defer components.Shutdown(context.Background())

	id, err := components.Publisher.PublishProgress(ctx, update)
*/
package eventprocessor
