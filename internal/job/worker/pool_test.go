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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric/noop"
)

type PoolTestSuite struct {
	suite.Suite

	logs   *bytes.Buffer
	logger *slog.Logger
	m      *metrics
}

func (s *PoolTestSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.logger = slog.New(slog.NewTextHandler(s.logs, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	m, err := newMetrics(noop.NewMeterProvider().Meter("test"))
	s.Require().NoError(err)
	s.m = m
}

func (s *PoolTestSuite) TestSubmitHonorsConcurrencyLimit() {
	p := NewPool(s.logger, 2, 0, s.m)

	var running, peak int32
	var wg sync.WaitGroup
	release := make(chan struct{})

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(p.Submit(context.Background(), Task{
				Job: "sync",
				Run: func(_ context.Context) error {
					n := atomic.AddInt32(&running, 1)
					for {
						old := atomic.LoadInt32(&peak)
						if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
							break
						}
					}
					<-release
					atomic.AddInt32(&running, -1)
					return nil
				},
			}))
		}()
	}

	s.Eventually(func() bool {
		return atomic.LoadInt32(&running) == 2
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
	s.NoError(p.Wait(context.Background()))

	s.Equal(int32(2), atomic.LoadInt32(&peak))
	s.Equal(2, p.Size())
}

func (s *PoolTestSuite) TestRunObservesResults() {
	tests := []struct {
		name     string
		fn       func(ctx context.Context) error
		timeout  time.Duration
		wantLogs []string
	}{
		{
			name:     "when task succeeds logs completion",
			fn:       func(_ context.Context) error { return nil },
			wantLogs: []string{"job completed"},
		},
		{
			name: "when task returns error logs failure with args",
			fn: func(_ context.Context) error {
				return errors.New("query failed")
			},
			wantLogs: []string{"job failed", "query failed", "2024-05-01"},
		},
		{
			name: "when task panics logs recovered panic",
			fn: func(_ context.Context) error {
				panic("nil map")
			},
			wantLogs: []string{"job failed", "handler panicked", "nil map"},
		},
		{
			name: "when task exceeds timeout its context expires",
			fn: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			timeout:  10 * time.Millisecond,
			wantLogs: []string{"job failed", "context deadline exceeded"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.logs.Reset()
			p := NewPool(s.logger, 1, tt.timeout, s.m)

			s.Require().NoError(p.Submit(context.Background(), Task{
				Job:  "syncZabbixData",
				Args: []string{"2024-05-01"},
				Run:  tt.fn,
			}))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Require().NoError(p.Wait(ctx))

			for _, want := range tt.wantLogs {
				s.Contains(s.logs.String(), want)
			}
		})
	}
}

func (s *PoolTestSuite) TestSubmitWhenFullAndContextDone() {
	p := NewPool(s.logger, 1, 0, s.m)
	release := make(chan struct{})

	s.Require().NoError(p.Submit(context.Background(), Task{
		Job: "slow",
		Run: func(_ context.Context) error {
			<-release
			return nil
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false
	err := p.Submit(ctx, Task{
		Job: "never",
		Run: func(_ context.Context) error {
			ran = true
			return nil
		},
	})

	s.ErrorIs(err, context.DeadlineExceeded)

	close(release)
	s.NoError(p.Wait(context.Background()))
	s.False(ran)
}

func (s *PoolTestSuite) TestWaitTimeoutCancelsRunningTasks() {
	p := NewPool(s.logger, 1, 0, s.m)
	canceled := make(chan struct{})

	s.Require().NoError(p.Submit(context.Background(), Task{
		Job: "stuck",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(canceled)
			return ctx.Err()
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s.ErrorIs(p.Wait(ctx), context.DeadlineExceeded)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		s.Fail("task context was not canceled")
	}
	p.wg.Wait()
}

func TestPoolTestSuite(t *testing.T) {
	suite.Run(t, new(PoolTestSuite))
}
