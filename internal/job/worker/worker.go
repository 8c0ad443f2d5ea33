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

// Package worker runs the job consumer loop: fetch a batch from the durable
// consumer, dispatch each message to its handler through a bounded pool,
// ack it, and back off while the queue is idle.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/retr0h/romusha/internal/config"
	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/job/dispatch"
)

const (
	// DefaultBatchSize is the fetch batch size when none is configured.
	DefaultBatchSize = 8
	// DefaultFetchWait bounds a fetch when none is configured.
	DefaultFetchWait = time.Second
	// DefaultMaxJobs is the handler concurrency limit when none is configured.
	DefaultMaxJobs = 10
	// DefaultSupervisorMaxBackoff caps reconnect waits after fetch errors.
	DefaultSupervisorMaxBackoff = time.Minute

	instrumentationName = "github.com/retr0h/romusha/internal/job/worker"
)

// New creates a new job worker. The configuration is expected to have
// passed config.Validate; New still rejects an invalid backoff policy.
func New(
	appConfig config.Config,
	logger *slog.Logger,
	binder Binder,
	table *dispatch.Table,
	conn dispatch.Publisher,
	registryKV RegistryStore,
	version string,
) (*Worker, error) {
	wc := appConfig.Worker

	policy, err := wc.IdleBackoff()
	if err != nil {
		return nil, fmt.Errorf("worker idle backoff: %w", err)
	}

	m, err := newMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("worker metrics: %w", err)
	}

	batchSize := wc.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	maxJobs := wc.MaxJobs
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}

	// Durations were validated at startup; zero falls back to the defaults.
	fetchWait, _ := time.ParseDuration(wc.FetchWait)
	if fetchWait <= 0 {
		fetchWait = DefaultFetchWait
	}

	jobTimeout, _ := time.ParseDuration(wc.JobTimeout)

	supervisor, _ := time.ParseDuration(wc.SupervisorMaxBackoff)
	if supervisor <= 0 {
		supervisor = DefaultSupervisorMaxBackoff
	}

	return &Worker{
		logger:     logger,
		appConfig:  appConfig,
		binder:     binder,
		table:      table,
		conn:       conn,
		registryKV: registryKV,
		policy:     policy,
		batchSize:  batchSize,
		fetchWait:  fetchWait,
		supervisor: supervisor,
		pool:       NewPool(logger, maxJobs, jobTimeout, m),
		metrics:    m,
		tracer:     otel.Tracer(instrumentationName),
		hostname:   job.GetWorkerHostname(wc.Hostname),
		instanceID: uuid.NewString(),
		version:    version,
		done:       make(chan struct{}),
	}, nil
}

// Hostname returns the hostname the worker registers under.
func (w *Worker) Hostname() string {
	return w.hostname
}

// InstanceID returns the unique id of this worker process.
func (w *Worker) InstanceID() string {
	return w.instanceID
}
