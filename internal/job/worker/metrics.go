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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Message outcomes recorded on romusha.worker.messages.
const (
	outcomeDispatched = "dispatched"
	outcomeUnknown    = "unknown"
	outcomeInvalid    = "invalid"
)

type metrics struct {
	fetches  metric.Int64Counter
	messages metric.Int64Counter
	acks     metric.Int64Counter
	jobs     metric.Int64Counter
	inflight metric.Int64UpDownCounter
	duration metric.Float64Histogram
}

func newMetrics(
	meter metric.Meter,
) (*metrics, error) {
	var m metrics
	var err, errs error

	m.fetches, err = meter.Int64Counter(
		"romusha.worker.fetches",
		metric.WithDescription("Fetch calls against the durable consumer."),
	)
	errs = errors.Join(errs, err)

	m.messages, err = meter.Int64Counter(
		"romusha.worker.messages",
		metric.WithDescription("Delivered messages by dispatch outcome."),
	)
	errs = errors.Join(errs, err)

	m.acks, err = meter.Int64Counter(
		"romusha.worker.acks",
		metric.WithDescription("Acknowledgments issued by the consumer loop."),
	)
	errs = errors.Join(errs, err)

	m.jobs, err = meter.Int64Counter(
		"romusha.worker.jobs",
		metric.WithDescription("Completed handler invocations by status."),
	)
	errs = errors.Join(errs, err)

	m.inflight, err = meter.Int64UpDownCounter(
		"romusha.worker.jobs.inflight",
		metric.WithDescription("Handler invocations currently running."),
	)
	errs = errors.Join(errs, err)

	m.duration, err = meter.Float64Histogram(
		"romusha.worker.job.duration",
		metric.WithDescription("Handler run time."),
		metric.WithUnit("s"),
	)
	errs = errors.Join(errs, err)

	if errs != nil {
		return nil, errs
	}

	return &m, nil
}

func (m *metrics) recordFetch(
	ctx context.Context,
	n int,
) {
	result := "messages"
	if n == 0 {
		result = "empty"
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) recordMessage(
	ctx context.Context,
	outcome string,
) {
	m.messages.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *metrics) recordAck(
	ctx context.Context,
	err error,
) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.acks.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) jobStarted(
	ctx context.Context,
) {
	m.inflight.Add(ctx, 1)
}

func (m *metrics) jobFinished(
	ctx context.Context,
	name string,
	elapsed time.Duration,
	err error,
) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("job", name),
		attribute.String("status", status),
	)

	m.inflight.Add(ctx, -1)
	m.jobs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
