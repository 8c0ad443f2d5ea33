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
	"encoding/json"
	"log/slog"
	"time"

	"github.com/retr0h/romusha/internal/job"
)

// heartbeatInterval is the interval between heartbeat refreshes.
var heartbeatInterval = 10 * time.Second

// deregisterTimeout bounds the registry delete issued during shutdown.
var deregisterTimeout = 5 * time.Second

// marshalJSON is swapped in tests to simulate encoding failures.
var marshalJSON = json.Marshal

// startHeartbeat writes the initial registration, spawns a goroutine that
// refreshes the entry on a ticker, and deregisters on ctx.Done().
func (w *Worker) startHeartbeat(
	ctx context.Context,
) {
	if w.registryKV == nil {
		return
	}

	key := job.RegistryKey(w.hostname)
	host := job.GetHostInfo(w.appConfig.Worker.Hostname)

	w.writeRegistration(ctx, host)

	w.logger.Info(
		"registered in worker registry",
		slog.String("hostname", w.hostname),
		slog.String("key", key),
		slog.String("ttl", w.appConfig.NATS.Registry.TTL),
	)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				w.deregister()
				return
			case <-ticker.C:
				w.writeRegistration(ctx, host)

				w.logger.Debug(
					"heartbeat refreshed",
					slog.String("key", key),
					slog.Duration("next_in", heartbeatInterval),
				)
			}
		}
	}()
}

// writeRegistration marshals a WorkerRegistration and puts it to the registry KV.
func (w *Worker) writeRegistration(
	ctx context.Context,
	host job.HostInfo,
) {
	reg := job.WorkerRegistration{
		Hostname:      w.hostname,
		InstanceID:    w.instanceID,
		Durable:       w.appConfig.Worker.Durable,
		FilterSubject: w.filterSubject(),
		Jobs:          w.table.Names(),
		MaxJobs:       w.pool.Size(),
		Host:          host,
		Version:       w.version,
		StartedAt:     w.startedAt,
		RegisteredAt:  time.Now(),
	}

	data, err := marshalJSON(reg)
	if err != nil {
		w.logger.Warn(
			"failed to marshal worker registration",
			slog.String("hostname", w.hostname),
			slog.String("error", err.Error()),
		)
		return
	}

	key := job.RegistryKey(w.hostname)
	if _, err := w.registryKV.Put(ctx, key, data); err != nil {
		w.logger.Warn(
			"failed to write worker registration",
			slog.String("hostname", w.hostname),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// deregister deletes the worker's registration key on clean shutdown.
func (w *Worker) deregister() {
	ctx, cancel := context.WithTimeout(context.Background(), deregisterTimeout)
	defer cancel()

	key := job.RegistryKey(w.hostname)
	if err := w.registryKV.Delete(ctx, key); err != nil {
		w.logger.Warn(
			"failed to deregister worker",
			slog.String("hostname", w.hostname),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Info(
		"worker deregistered",
		slog.String("hostname", w.hostname),
		slog.String("key", key),
	)
}
