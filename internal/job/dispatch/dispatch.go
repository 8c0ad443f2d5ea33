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

// Package dispatch maps job names to handlers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicateHandler is returned when a job name is registered twice.
	ErrDuplicateHandler = errors.New("handler already registered")
	// ErrEmptyJobName is returned when registering a handler without a name.
	ErrEmptyJobName = errors.New("job name must not be empty")
	// ErrMissingArgs is returned by handlers invoked without the argument
	// segments they require.
	ErrMissingArgs = errors.New("missing job arguments")
)

// Publisher is the shared broker connection handed to handlers.
// *nats.Conn satisfies it.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Invocation carries everything a handler receives for one job message.
type Invocation struct {
	// Job is the job name taken from the subject.
	Job string
	// Args are the subject segments after the job name, in order.
	Args []string
	// Subject is the full subject the message was delivered on.
	Subject string
	// Data is the message payload, usually empty.
	Data []byte
	// Conn publishes follow-up messages on the worker's connection.
	Conn Publisher
}

// Handler runs a single job.
type Handler interface {
	Handle(ctx context.Context, inv Invocation) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, inv Invocation) error

// Handle calls f(ctx, inv).
func (f HandlerFunc) Handle(
	ctx context.Context,
	inv Invocation,
) error {
	return f(ctx, inv)
}

// Table resolves job names to handlers. It is filled at startup and only
// read afterwards; the mutex guards registration racing a running worker.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for name.
func (t *Table) Register(
	name string,
	h Handler,
) error {
	if name == "" {
		return ErrEmptyJobName
	}
	if h == nil {
		return fmt.Errorf("register %q: nil handler", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.handlers[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateHandler)
	}
	t.handlers[name] = h

	return nil
}

// MustRegister is like Register but panics on error.
func (t *Table) MustRegister(
	name string,
	h Handler,
) {
	if err := t.Register(name, h); err != nil {
		panic(err)
	}
}

// Resolve returns the handler registered for name.
func (t *Table) Resolve(
	name string,
) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.handlers[name]
	return h, ok
}

// Names returns the registered job names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Len returns the number of registered handlers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.handlers)
}

// RequireArgs returns ErrMissingArgs when inv carries fewer than n arguments.
func RequireArgs(
	inv Invocation,
	n int,
) error {
	if len(inv.Args) < n {
		return fmt.Errorf(
			"%s: want %d argument(s), got %d: %w",
			inv.Job,
			n,
			len(inv.Args),
			ErrMissingArgs,
		)
	}

	return nil
}
