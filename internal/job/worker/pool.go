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
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrHandlerPanic wraps a value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Task is one handler invocation submitted to the pool.
type Task struct {
	// Job is the job name, used for logs and metrics.
	Job string
	// Args are logged with failures.
	Args []string
	// Run executes the handler.
	Run func(ctx context.Context) error
}

// Pool runs tasks on goroutines with a fixed concurrency limit. Every
// task's result is observed: failures and panics are logged and counted.
type Pool struct {
	logger  *slog.Logger
	sem     *semaphore.Weighted
	size    int
	timeout time.Duration
	metrics *metrics

	// ctx is the parent of every task context. It outlives the consumer
	// loop so running handlers can finish during shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool running at most size tasks at once. A positive
// timeout bounds each task.
func NewPool(
	logger *slog.Logger,
	size int,
	timeout time.Duration,
	m *metrics,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger:  logger,
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		timeout: timeout,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Submit starts t once a slot is free. It blocks while every slot is busy
// and returns ctx.Err() if ctx ends first, in which case t never runs.
func (p *Pool) Submit(
	ctx context.Context,
	t Task,
) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)

		p.run(t)
	}()

	return nil
}

func (p *Pool) run(
	t Task,
) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.metrics.jobStarted(ctx)
	start := time.Now()

	err := safeRun(ctx, t.Run)
	elapsed := time.Since(start)

	p.metrics.jobFinished(ctx, t.Job, elapsed, err)

	if err != nil {
		p.logger.ErrorContext(
			ctx,
			"job failed",
			slog.String("job", t.Job),
			slog.String("args", strings.Join(t.Args, ",")),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.DebugContext(
		ctx,
		"job completed",
		slog.String("job", t.Job),
		slog.Duration("elapsed", elapsed),
	)
}

// safeRun converts a panic in fn into an error.
func safeRun(
	ctx context.Context,
	fn func(ctx context.Context) error,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrHandlerPanic, r, debug.Stack())
		}
	}()

	return fn(ctx)
}

// Wait blocks until every submitted task returns or ctx ends. When ctx
// ends first the remaining tasks see their context canceled and ctx.Err()
// is returned.
func (p *Pool) Wait(
	ctx context.Context,
) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}
