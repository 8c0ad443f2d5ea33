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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/job/dispatch"
	"github.com/retr0h/romusha/internal/telemetry"
)

// handleMessage dispatches msg and acks it. Messages with an invalid
// subject or an unknown job name are acked without dispatch. It reports
// false only when ctx ended while waiting for a pool slot; that message is
// left unacked for redelivery.
func (w *Worker) handleMessage(
	ctx context.Context,
	msg Message,
) bool {
	subject := msg.Subject()

	route, err := job.ParseSubject(subject)
	if err != nil {
		w.logger.Warn(
			"dropping message with invalid subject",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		w.metrics.recordMessage(ctx, outcomeInvalid)
		w.ack(ctx, msg, subject)
		return true
	}

	handler, ok := w.table.Resolve(route.Name)
	if !ok {
		w.logger.Warn(
			"unknown job",
			slog.String("job", route.Name),
			slog.String("subject", subject),
		)
		w.metrics.recordMessage(ctx, outcomeUnknown)
		w.ack(ctx, msg, subject)
		return true
	}

	inv := dispatch.Invocation{
		Job:     route.Name,
		Args:    route.Args,
		Subject: subject,
		Data:    msg.Data(),
		Conn:    w.conn,
	}
	parent := trace.SpanContextFromContext(
		telemetry.ExtractTraceContextFromHeader(context.Background(), msg.Headers()),
	)

	err = w.pool.Submit(ctx, Task{
		Job:  route.Name,
		Args: route.Args,
		Run: func(taskCtx context.Context) error {
			return w.invoke(taskCtx, parent, handler, inv)
		},
	})
	if err != nil {
		w.logger.Warn(
			"shutdown before dispatch, leaving job for redelivery",
			slog.String("job", route.Name),
			slog.String("subject", subject),
		)
		return false
	}

	w.logger.Info(
		"dispatched job",
		slog.String("job", route.Name),
		slog.String("args", strings.Join(route.Args, ",")),
	)
	w.metrics.recordMessage(ctx, outcomeDispatched)
	w.ack(ctx, msg, subject)

	return true
}

// invoke runs handler inside a span continuing the producer's trace.
func (w *Worker) invoke(
	ctx context.Context,
	parent trace.SpanContext,
	handler dispatch.Handler,
	inv dispatch.Invocation,
) error {
	if parent.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, parent)
	}

	ctx, span := w.tracer.Start(
		ctx,
		"job "+inv.Job,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "nats"),
			attribute.String("messaging.destination.name", inv.Subject),
			attribute.String("romusha.job", inv.Job),
			attribute.Int("romusha.job.args", len(inv.Args)),
		),
	)
	defer span.End()

	err := handler.Handle(ctx, inv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// ack acknowledges msg. Ack failures are logged; the broker redelivers
// after its ack wait.
func (w *Worker) ack(
	ctx context.Context,
	msg Message,
	subject string,
) {
	err := msg.Ack()
	w.metrics.recordAck(ctx, err)

	if err != nil {
		w.logger.Error(
			"failed to ack message",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}
