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
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/retr0h/romusha/internal/job"
)

// SetSleepFn replaces the loop's sleep and returns a restore func.
func SetSleepFn(
	fn func(ctx context.Context, d time.Duration) error,
) func() {
	original := sleepFn
	sleepFn = fn

	return func() { sleepFn = original }
}

// SetSupervisorBackOff replaces the reconnect backoff and returns a
// restore func.
func SetSupervisorBackOff(
	b backoff.BackOff,
) func() {
	original := newSupervisorBackOff
	newSupervisorBackOff = func(time.Duration) backoff.BackOff { return b }

	return func() { newSupervisorBackOff = original }
}

// SetHeartbeatInterval replaces the heartbeat interval and returns a
// restore func.
func SetHeartbeatInterval(
	d time.Duration,
) func() {
	original := heartbeatInterval
	heartbeatInterval = d

	return func() { heartbeatInterval = original }
}

// SetMarshalJSON replaces the registration encoder and returns a restore
// func.
func SetMarshalJSON(
	fn func(v any) ([]byte, error),
) func() {
	original := marshalJSON
	marshalJSON = fn

	return func() { marshalJSON = original }
}

func (w *Worker) HandleMessage(
	ctx context.Context,
	msg Message,
) bool {
	return w.handleMessage(ctx, msg)
}

func (w *Worker) WaitJobs(
	ctx context.Context,
) error {
	return w.pool.Wait(ctx)
}

func (w *Worker) WriteRegistration(
	ctx context.Context,
) {
	w.writeRegistration(ctx, job.GetHostInfo(w.appConfig.Worker.Hostname))
}

func (w *Worker) Deregister() {
	w.deregister()
}

func (w *Worker) StartHeartbeat(
	ctx context.Context,
) {
	w.startHeartbeat(ctx)
}

func (w *Worker) WaitHeartbeat() {
	w.wg.Wait()
}
