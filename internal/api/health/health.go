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

// Package health provides health check API handlers.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// New factory to create a new instance.
func New(
	logger *slog.Logger,
	checker Checker,
	startTime time.Time,
	version string,
	jobs []string,
) *Health {
	return &Health{
		Checker:   checker,
		StartTime: startTime,
		Version:   version,
		Jobs:      jobs,
		logger:    logger,
	}
}

// RegisterHandler returns a function that registers the health routes.
func (h *Health) RegisterHandler() func(e *echo.Echo) {
	return func(e *echo.Echo) {
		e.GET("/health", h.GetHealth)
		e.GET("/health/ready", h.GetHealthReady)
		e.GET("/health/status", h.GetHealthStatus)
	}
}

// GetHealth liveness probe, always 200 while the process serves requests.
func (h *Health) GetHealth(
	c echo.Context,
) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// GetHealthReady readiness probe, 200 when dependencies are reachable.
func (h *Health) GetHealthReady(
	c echo.Context,
) error {
	if err := h.Checker.CheckHealth(c.Request().Context()); err != nil {
		errMsg := err.Error()
		h.logger.Debug("readiness check failed", slog.String("error", errMsg))

		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
			Error:  &errMsg,
		})
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}

// GetHealthStatus returns per-component health with version and uptime.
func (h *Health) GetHealthStatus(
	c echo.Context,
) error {
	var natsErr, kvErr error
	if checker, ok := h.Checker.(*NATSChecker); ok {
		natsErr = checker.CheckNATS()
		kvErr = checker.CheckKV()
	} else {
		natsErr = h.Checker.CheckHealth(c.Request().Context())
	}

	components := map[string]ComponentHealth{
		"nats": component(natsErr),
		"kv":   component(kvErr),
	}

	status := "ok"
	code := http.StatusOK
	if natsErr != nil || kvErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	jobs := h.Jobs
	if jobs == nil {
		jobs = []string{}
	}

	return c.JSON(code, DetailedStatusResponse{
		Status:     status,
		Version:    h.Version,
		Uptime:     time.Since(h.StartTime).Round(time.Second).String(),
		Jobs:       jobs,
		Components: components,
	})
}

func component(
	err error,
) ComponentHealth {
	if err == nil {
		return ComponentHealth{Status: "ok"}
	}

	errMsg := err.Error()
	return ComponentHealth{Status: "error", Error: &errMsg}
}
