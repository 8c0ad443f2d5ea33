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

package telemetry

import (
	"context"
	"net/http"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectTraceContextToHeader injects the current span's trace context into
// the headers of an outgoing NATS message. Without an active span this is
// a no-op.
func InjectTraceContextToHeader(
	ctx context.Context,
	header nats.Header,
) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// ExtractTraceContextFromHeader returns ctx carrying the span context found
// in a delivered message's headers, or ctx unchanged when there is none.
//
// JetStream may deliver header keys in lowercase ("traceparent"), which
// http.Header.Get does not find, so keys are canonicalized first.
func ExtractTraceContextFromHeader(
	ctx context.Context,
	header nats.Header,
) context.Context {
	if len(header) == 0 {
		return ctx
	}

	normalized := make(http.Header, len(header))
	for k, v := range header {
		normalized[http.CanonicalHeaderKey(k)] = v
	}

	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(normalized))
}
