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

// Package builtin provides handlers every worker registers.
package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/job/dispatch"
)

// PingJob is the job name of the liveness probe.
const PingJob = "ping"

// ErrNoConnection is returned when a handler that publishes has no
// connection in its invocation.
var ErrNoConnection = errors.New("invocation has no broker connection")

// marshalJSON is swapped in tests to simulate encoding failures.
var marshalJSON = json.Marshal

// Pong is published in reply to a ping job.
type Pong struct {
	Hostname   string    `json:"hostname"`
	InstanceID string    `json:"instance_id"`
	Args       []string  `json:"args,omitempty"`
	RepliedAt  time.Time `json:"replied_at"`
}

// Ping answers ping jobs by publishing a Pong on events.{namespace}.pong
// through the invocation's connection.
type Ping struct {
	logger     *slog.Logger
	namespace  string
	hostname   string
	instanceID string
}

// NewPing creates the ping handler.
func NewPing(
	logger *slog.Logger,
	namespace string,
	hostname string,
	instanceID string,
) *Ping {
	return &Ping{
		logger:     logger,
		namespace:  namespace,
		hostname:   hostname,
		instanceID: instanceID,
	}
}

// Handle implements dispatch.Handler.
func (p *Ping) Handle(
	ctx context.Context,
	inv dispatch.Invocation,
) error {
	if inv.Conn == nil {
		return ErrNoConnection
	}

	data, err := marshalJSON(Pong{
		Hostname:   p.hostname,
		InstanceID: p.instanceID,
		Args:       inv.Args,
		RepliedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal pong: %w", err)
	}

	subject := job.EventSubject(p.namespace, "pong")
	if err := inv.Conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish pong to %s: %w", subject, err)
	}

	p.logger.InfoContext(
		ctx,
		"answered ping",
		slog.String("subject", subject),
		slog.String("hostname", p.hostname),
	)

	return nil
}

// Register adds the built-in handlers to table.
func Register(
	table *dispatch.Table,
	logger *slog.Logger,
	namespace string,
	hostname string,
	instanceID string,
) error {
	return table.Register(PingJob, NewPing(logger, namespace, hostname, instanceID))
}
