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
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// sleepFn waits for d or until ctx is done. Tests replace it to observe
// backoff durations without sleeping.
var sleepFn = func(
	ctx context.Context,
	d time.Duration,
) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// newSupervisorBackOff returns the reconnect backoff used after bind or
// fetch errors. It is separate from the idle backoff.
var newSupervisorBackOff = func(
	maxInterval time.Duration,
) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = maxInterval

	return b
}

// Run binds the durable consumer and drives the fetch, dispatch, and ack
// cycle until ctx is canceled. Bind and fetch errors are logged and retried
// under the supervisor backoff, so Run only returns on shutdown.
func (w *Worker) Run(
	ctx context.Context,
) {
	supervisor := newSupervisorBackOff(w.supervisor)

	for ctx.Err() == nil {
		fetcher, err := w.binder.Bind(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !w.retryAfter(ctx, supervisor, "failed to bind consumer", err) {
				return
			}
			continue
		}

		w.logger.Info(
			"consumer bound",
			slog.String("durable", w.appConfig.Worker.Durable),
			slog.String("stream", w.appConfig.NATS.Stream.Name),
		)

		err = w.consume(ctx, fetcher, supervisor.Reset)
		if err == nil {
			return
		}
		if !w.retryAfter(ctx, supervisor, "consume cycle failed, rebinding", err) {
			return
		}
	}
}

// retryAfter logs err and sleeps for the next supervisor interval. It
// reports false when ctx ended during the wait.
func (w *Worker) retryAfter(
	ctx context.Context,
	supervisor backoff.BackOff,
	msg string,
	err error,
) bool {
	wait := supervisor.NextBackOff()

	w.logger.Error(
		msg,
		slog.String("error", err.Error()),
		slog.Duration("retry_in", wait),
	)

	return sleepFn(ctx, wait) == nil
}

// consume runs fetch cycles against a bound consumer. It returns nil on
// shutdown and an error when a fetch fails. healthy is called after each
// successful fetch.
func (w *Worker) consume(
	ctx context.Context,
	fetcher Fetcher,
	healthy func(),
) error {
	current := w.policy.Reset()

	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := fetcher.Fetch(ctx, w.batchSize, w.fetchWait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}
		healthy()
		w.metrics.recordFetch(ctx, len(msgs))

		if len(msgs) == 0 {
			w.logger.Debug(
				"no pending jobs, backing off",
				slog.Duration("backoff", current),
			)

			if err := sleepFn(ctx, current); err != nil {
				return nil
			}
			current = w.policy.Next(current)
			continue
		}

		w.logger.Debug("fetched jobs", slog.Int("count", len(msgs)))

		for _, msg := range msgs {
			if !w.handleMessage(ctx, msg) {
				return nil
			}
		}

		current = w.policy.Reset()
	}
}
