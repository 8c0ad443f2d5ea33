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

package worker_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/romusha/internal/config"
	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/job/builtin"
	"github.com/retr0h/romusha/internal/job/dispatch"
	"github.com/retr0h/romusha/internal/job/worker"
)

type WorkerIntegrationTestSuite struct {
	suite.Suite

	ns        *server.Server
	nc        *nats.Conn
	js        jetstream.JetStream
	appConfig config.Config
}

func (s *WorkerIntegrationTestSuite) SetupTest() {
	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  s.T().TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	s.Require().NoError(err)

	go ns.Start()
	s.Require().True(ns.ReadyForConnections(5 * time.Second))
	s.ns = ns

	nc, err := nats.Connect(ns.ClientURL())
	s.Require().NoError(err)
	s.nc = nc

	js, err := jetstream.New(nc)
	s.Require().NoError(err)
	s.js = js

	s.appConfig = config.Config{
		NATS: config.NATS{
			Stream: config.NATSStream{
				Name:    "JOBS",
				Storage: "memory",
			},
		},
		Worker: config.Worker{
			Namespace:  "jobs",
			Group:      "romusha",
			Durable:    "romusha",
			Hostname:   "integration",
			BatchSize:  8,
			FetchWait:  "1s",
			MaxJobs:    4,
			MinBackoff: 1,
			MaxBackoff: 32,
			Consumer: config.WorkerConsumer{
				AckWait: "30s",
			},
		},
	}

	_, err = js.CreateOrUpdateStream(
		context.Background(),
		job.GetJobsStreamConfig(&s.appConfig.NATS.Stream, &s.appConfig.Worker),
	)
	s.Require().NoError(err)
}

func (s *WorkerIntegrationTestSuite) TearDownTest() {
	if !s.nc.IsClosed() {
		s.nc.Close()
	}
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}

func (s *WorkerIntegrationTestSuite) TestPendingJobsDrainedInOneFetch() {
	ctx := context.Background()

	subjects := []string{
		job.BuildSubject("jobs", "romusha", "syncZabbixData", "2024-05-01"),
		job.BuildSubject("jobs", "romusha", "notifyAllOverdueFbstarTickets", "24", "6281234567890"),
		job.BuildSubject("jobs", "romusha", "retiredJob"),
	}
	for _, subject := range subjects {
		_, err := s.js.Publish(ctx, subject, nil)
		s.Require().NoError(err)
	}

	var mu sync.Mutex
	got := map[string][]string{}
	record := dispatch.HandlerFunc(func(_ context.Context, inv dispatch.Invocation) error {
		mu.Lock()
		defer mu.Unlock()
		got[inv.Job] = inv.Args
		return nil
	})

	table := dispatch.NewTable()
	table.MustRegister("syncZabbixData", record)
	table.MustRegister("notifyAllOverdueFbstarTickets", record)

	binder := worker.NewJetStreamBinder(
		s.js,
		s.appConfig.NATS.Stream.Name,
		job.GetJobsConsumerConfig(&s.appConfig.Worker),
	)

	w, err := worker.New(s.appConfig, slog.Default(), binder, table, s.nc, nil, "test")
	s.Require().NoError(err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sleeps []time.Duration
	restore := worker.SetSleepFn(func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		cancel()
		return ctx.Err()
	})
	defer restore()

	w.Run(runCtx)
	s.Require().NoError(w.WaitJobs(ctx))

	s.Equal([]time.Duration{time.Second}, sleeps)
	s.Equal(map[string][]string{
		"syncZabbixData":                {"2024-05-01"},
		"notifyAllOverdueFbstarTickets": {"24", "6281234567890"},
	}, got)

	s.Require().NoError(s.nc.Drain())

	cons, err := jetstream.New(s.reconnect())
	s.Require().NoError(err)
	s.Eventually(func() bool {
		c, err := cons.Consumer(ctx, "JOBS", "romusha")
		if err != nil {
			return false
		}
		info, err := c.Info(ctx)
		if err != nil {
			return false
		}
		return info.NumAckPending == 0 &&
			info.NumPending == 0 &&
			info.AckFloor.Consumer == uint64(len(subjects))
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *WorkerIntegrationTestSuite) TestPingReplyIsNotStoredInJobsStream() {
	ctx := context.Background()

	listener := s.reconnect()
	sub, err := listener.SubscribeSync(job.EventSubject("jobs", "pong"))
	s.Require().NoError(err)
	s.Require().NoError(listener.Flush())

	_, err = s.js.Publish(ctx, job.BuildSubject("jobs", "romusha", builtin.PingJob), nil)
	s.Require().NoError(err)

	table := dispatch.NewTable()
	s.Require().NoError(builtin.Register(table, slog.Default(), "jobs", "integration", "id-1"))

	binder := worker.NewJetStreamBinder(
		s.js,
		s.appConfig.NATS.Stream.Name,
		job.GetJobsConsumerConfig(&s.appConfig.Worker),
	)

	w, err := worker.New(s.appConfig, slog.Default(), binder, table, s.nc, nil, "test")
	s.Require().NoError(err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	restore := worker.SetSleepFn(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	})
	defer restore()

	w.Run(runCtx)
	s.Require().NoError(w.WaitJobs(ctx))
	s.Require().NoError(s.nc.Flush())

	msg, err := sub.NextMsg(5 * time.Second)
	s.Require().NoError(err)

	var pong builtin.Pong
	s.Require().NoError(json.Unmarshal(msg.Data, &pong))
	s.Equal("integration", pong.Hostname)

	stream, err := s.js.Stream(ctx, "JOBS")
	s.Require().NoError(err)
	info, err := stream.Info(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), info.State.Msgs)
	s.Equal([]string{"jobs.romusha.>"}, info.Config.Subjects)
}

func (s *WorkerIntegrationTestSuite) TestFetchReturnsPromptlyOnCancel() {
	binder := worker.NewJetStreamBinder(
		s.js,
		s.appConfig.NATS.Stream.Name,
		job.GetJobsConsumerConfig(&s.appConfig.Worker),
	)

	fetcher, err := binder.Bind(context.Background())
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		msgs []worker.Message
		err  error
	}
	done := make(chan result, 1)
	go func() {
		msgs, err := fetcher.Fetch(ctx, 8, 30*time.Second)
		done <- result{msgs: msgs, err: err}
	}()

	time.Sleep(100 * time.Millisecond)
	started := time.Now()
	cancel()

	select {
	case r := <-done:
		s.ErrorIs(r.err, context.Canceled)
		s.Empty(r.msgs)
		s.Less(time.Since(started), 5*time.Second)
	case <-time.After(10 * time.Second):
		s.Fail("fetch did not return after cancel")
	}
}

// reconnect opens a fresh connection for assertions after the worker's
// connection was drained.
func (s *WorkerIntegrationTestSuite) reconnect() *nats.Conn {
	nc, err := nats.Connect(s.ns.ClientURL())
	s.Require().NoError(err)
	s.T().Cleanup(nc.Close)

	return nc
}

func TestWorkerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerIntegrationTestSuite))
}
