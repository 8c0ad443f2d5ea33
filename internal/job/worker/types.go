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
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/trace"

	"github.com/retr0h/romusha/internal/backoff"
	"github.com/retr0h/romusha/internal/config"
	"github.com/retr0h/romusha/internal/job/dispatch"
)

//go:generate go tool mockgen -source=types.go -destination=mocks/types.gen.go -package=mocks

// Message is the part of a delivered JetStream message the worker uses.
// jetstream.Msg satisfies it.
type Message interface {
	Subject() string
	Data() []byte
	Headers() nats.Header
	Ack() error
}

// Fetcher pulls bounded batches from a bound durable consumer.
type Fetcher interface {
	// Fetch returns up to batch messages, waiting at most wait. An empty
	// slice with a nil error means the consumer had nothing pending.
	Fetch(ctx context.Context, batch int, wait time.Duration) ([]Message, error)
}

// Binder binds (creating if absent) the durable consumer.
type Binder interface {
	Bind(ctx context.Context) (Fetcher, error)
}

// RegistryStore is the part of jetstream.KeyValue used by the heartbeat.
type RegistryStore interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// Worker consumes jobs from a durable pull consumer and dispatches them to
// registered handlers.
type Worker struct {
	logger    *slog.Logger
	appConfig config.Config
	binder    Binder
	table     *dispatch.Table
	conn      dispatch.Publisher
	// registryKV is nil when the registry is disabled.
	registryKV RegistryStore

	policy     backoff.Policy
	batchSize  int
	fetchWait  time.Duration
	supervisor time.Duration

	pool    *Pool
	metrics *metrics
	tracer  trace.Tracer

	hostname   string
	instanceID string
	version    string
	startedAt  time.Time

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}
