// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ConsumerManager is the part of jetstream.JetStream used to bind the
// durable consumer.
type ConsumerManager interface {
	CreateOrUpdateConsumer(
		ctx context.Context,
		stream string,
		cfg jetstream.ConsumerConfig,
	) (jetstream.Consumer, error)
}

// batchConsumer is the part of jetstream.Consumer used for pulling.
type batchConsumer interface {
	Fetch(batch int, opts ...jetstream.FetchOpt) (jetstream.MessageBatch, error)
}

// JetStreamBinder binds a durable pull consumer on a stream.
type JetStreamBinder struct {
	js     ConsumerManager
	stream string
	cfg    jetstream.ConsumerConfig
}

// NewJetStreamBinder returns a Binder for the consumer described by cfg.
func NewJetStreamBinder(
	js ConsumerManager,
	stream string,
	cfg jetstream.ConsumerConfig,
) *JetStreamBinder {
	return &JetStreamBinder{
		js:     js,
		stream: stream,
		cfg:    cfg,
	}
}

// Bind creates the durable consumer if absent, or updates it to cfg.
func (b *JetStreamBinder) Bind(
	ctx context.Context,
) (Fetcher, error) {
	c, err := b.js.CreateOrUpdateConsumer(ctx, b.stream, b.cfg)
	if err != nil {
		return nil, fmt.Errorf(
			"binding consumer %s on stream %s: %w",
			b.cfg.Durable,
			b.stream,
			err,
		)
	}

	return &consumerFetcher{consumer: c}, nil
}

type consumerFetcher struct {
	consumer batchConsumer
}

// Fetch drains one MessageBatch. The pull expires after wait and is
// abandoned as soon as ctx is cancelled; cancellation returns ctx.Err()
// and leaves any delivered messages for redelivery. An error reported after
// some messages arrived is dropped so those messages still get dispatched;
// the next fetch surfaces it again if it persists.
func (f *consumerFetcher) Fetch(
	ctx context.Context,
	batch int,
	wait time.Duration,
) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// FetchContext derives the pull expiry from the deadline, so it
	// replaces FetchMaxWait.
	fetchCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	mb, err := f.consumer.Fetch(batch, jetstream.FetchContext(fetchCtx))
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, batch)
	for msg := range mb.Messages() {
		msgs = append(msgs, msg)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := mb.Error(); err != nil && len(msgs) == 0 && !isFetchTimeout(err) {
		return nil, err
	}

	return msgs, nil
}

func isFetchTimeout(
	err error,
) bool {
	return errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
