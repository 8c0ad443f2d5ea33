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
	"log/slog"
	"time"

	"github.com/retr0h/romusha/internal/job"
)

// Start starts the worker without blocking. Call Stop to shut down.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.startedAt = time.Now()

	w.logger.Info("starting job worker")

	w.logger.Info(
		"worker configuration",
		slog.String("hostname", w.hostname),
		slog.String("instance_id", w.instanceID),
		slog.String("durable", w.appConfig.Worker.Durable),
		slog.String("filter_subject", w.filterSubject()),
		slog.Int("batch_size", w.batchSize),
		slog.Duration("fetch_wait", w.fetchWait),
		slog.Int("max_jobs", w.pool.Size()),
		slog.Duration("min_backoff", w.policy.Floor),
		slog.Duration("max_backoff", w.policy.Ceiling),
		slog.Any("jobs", w.table.Names()),
	)

	// Register in worker registry and start heartbeat keepalive.
	w.startHeartbeat(w.ctx)

	go func() {
		defer close(w.done)
		w.Run(w.ctx)
	}()

	w.logger.Info("job worker started successfully")
}

// Stop stops fetching, then waits for the loop and in-flight handlers to
// finish or the context deadline to expire. The heartbeat goroutine is
// always awaited so the registry entry is deleted before Stop returns; its
// delete is bounded by deregisterTimeout rather than ctx.
func (w *Worker) Stop(
	ctx context.Context,
) {
	w.logger.Info("job worker shutting down")
	w.cancel()

	graceful := true
	select {
	case <-w.done:
		if err := w.pool.Wait(ctx); err != nil {
			w.logger.Warn(
				"job worker shutdown timed out, abandoning running jobs",
				slog.String("error", err.Error()),
			)
			graceful = false
		}
	case <-ctx.Done():
		w.logger.Warn("job worker shutdown timed out waiting for the consumer loop")
		graceful = false
	}

	w.wg.Wait()

	if graceful {
		w.logger.Info("job worker stopped gracefully")
	}
}

func (w *Worker) filterSubject() string {
	return job.FilterSubject(w.appConfig.Worker.Namespace, w.appConfig.Worker.Group)
}
