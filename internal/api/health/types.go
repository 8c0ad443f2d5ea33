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

package health

import (
	"context"
	"log/slog"
	"time"
)

// Checker checks the health of a dependency.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// Health serves the liveness, readiness and status endpoints.
type Health struct {
	// Checker performs dependency health checks.
	Checker Checker
	// StartTime records when the worker started.
	StartTime time.Time
	// Version is the application version string.
	Version string
	// Jobs lists the registered job names reported by the status endpoint.
	Jobs   []string
	logger *slog.Logger
}

// StatusResponse is the body returned by liveness and readiness probes.
type StatusResponse struct {
	Status string  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

// ComponentHealth reports the state of a single dependency.
type ComponentHealth struct {
	Status string  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

// DetailedStatusResponse is the body returned by the status endpoint.
type DetailedStatusResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Jobs       []string                   `json:"jobs"`
	Components map[string]ComponentHealth `json:"components"`
}
