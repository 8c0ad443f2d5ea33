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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/retr0h/romusha/internal/api"
	"github.com/retr0h/romusha/internal/api/health"
	"github.com/retr0h/romusha/internal/cli"
	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/job/builtin"
	"github.com/retr0h/romusha/internal/job/dispatch"
	"github.com/retr0h/romusha/internal/job/worker"
)

// compositeLifecycle manages multiple Lifecycle components, starting them
// sequentially and stopping them concurrently.
type compositeLifecycle struct {
	components []cli.Lifecycle
}

func (c *compositeLifecycle) Start() {
	for _, comp := range c.components {
		comp.Start()
	}
}

func (c *compositeLifecycle) Stop(ctx context.Context) {
	var wg sync.WaitGroup
	for _, comp := range c.components {
		wg.Add(1)
		go func(lc cli.Lifecycle) {
			defer wg.Done()
			lc.Stop(ctx)
		}(comp)
	}
	wg.Wait()
}

// workerBundle holds the connection and components started for a worker.
type workerBundle struct {
	nc        *nats.Conn
	lifecycle cli.Lifecycle
}

// connectJetStream dials NATS and opens a JetStream context, exiting on failure.
func connectJetStream(
	log *slog.Logger,
) (*nats.Conn, jetstream.JetStream) {
	nc, err := cli.ConnectNATS(appConfig.NATS, log)
	if err != nil {
		cli.LogFatal(log, "failed to connect to NATS", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		cli.LogFatal(log, "failed to create jetstream context", err)
	}

	return nc, js
}

// setupWorker connects to NATS and builds the worker and, when a port is
// configured, the health and metrics endpoint.
func setupWorker(
	ctx context.Context,
	log *slog.Logger,
	metricsHandler http.Handler,
	metricsPath string,
) *workerBundle {
	nc, js := connectJetStream(log)

	var registryKV worker.RegistryStore
	var kv jetstream.KeyValue
	if appConfig.NATS.Registry.Bucket != "" {
		var err error
		kv, err = js.CreateOrUpdateKeyValue(ctx, job.GetRegistryKVConfig(&appConfig.NATS.Registry))
		if err != nil {
			cli.LogFatal(log, "failed to create registry bucket", err,
				"bucket", appConfig.NATS.Registry.Bucket)
		}
		registryKV = kv
	}

	binder := worker.NewJetStreamBinder(
		js,
		appConfig.NATS.Stream.Name,
		job.GetJobsConsumerConfig(&appConfig.Worker),
	)

	table := dispatch.NewTable()

	w, err := worker.New(appConfig, log, binder, table, nc, registryKV, versionString())
	if err != nil {
		cli.LogFatal(log, "failed to create worker", err)
	}

	if err := builtin.Register(
		table,
		log,
		appConfig.Worker.Namespace,
		w.Hostname(),
		w.InstanceID(),
	); err != nil {
		cli.LogFatal(log, "failed to register built-in jobs", err)
	}

	components := []cli.Lifecycle{w}

	if appConfig.Worker.HTTP.Port > 0 {
		checker := &health.NATSChecker{
			NATSCheck: func() error {
				if !nc.IsConnected() {
					return fmt.Errorf("nats: %s", nc.Status())
				}
				return nil
			},
		}
		if kv != nil {
			checker.KVCheck = func() error {
				checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()

				_, err := kv.Status(checkCtx)
				return err
			}
		}

		srv := api.New(appConfig, log.With("component", "api"))
		srv.RegisterHandlers(srv.GetHealthHandler(checker, time.Now(), versionString(), table.Names()))
		srv.RegisterHandlers(srv.GetMetricsHandler(metricsHandler, metricsPath))
		components = append(components, srv)
	}

	return &workerBundle{
		nc:        nc,
		lifecycle: &compositeLifecycle{components: components},
	}
}

// ensureJobInfrastructure creates or updates the jobs stream and the durable
// consumer.
func ensureJobInfrastructure(
	ctx context.Context,
	js jetstream.JetStream,
) (jetstream.Stream, jetstream.Consumer, error) {
	stream, err := js.CreateOrUpdateStream(
		ctx,
		job.GetJobsStreamConfig(&appConfig.NATS.Stream, &appConfig.Worker),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating stream %s: %w", appConfig.NATS.Stream.Name, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, job.GetJobsConsumerConfig(&appConfig.Worker))
	if err != nil {
		return nil, nil, fmt.Errorf("creating consumer %s: %w", appConfig.Worker.Durable, err)
	}

	return stream, consumer, nil
}
