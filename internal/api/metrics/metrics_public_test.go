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

package metrics_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/romusha/internal/api"
	"github.com/retr0h/romusha/internal/api/metrics"
	"github.com/retr0h/romusha/internal/config"
)

type MetricsPublicTestSuite struct {
	suite.Suite

	logger *slog.Logger
}

func (s *MetricsPublicTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *MetricsPublicTestSuite) TestRegisterHandler() {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	e := echo.New()
	metrics.New(handler, "/metrics").RegisterHandler()(e)

	found := false
	for _, r := range e.Routes() {
		if r.Path == "/metrics" && r.Method == http.MethodGet {
			found = true
			break
		}
	}
	s.True(found, "expected GET /metrics route to be registered")
}

func (s *MetricsPublicTestSuite) TestGetMetricsHTTP() {
	tests := []struct {
		name         string
		path         string
		wantCode     int
		wantContains string
	}{
		{
			name:         "when metrics endpoint is wired returns prometheus text",
			path:         "/metrics",
			wantCode:     http.StatusOK,
			wantContains: "test_metric 42",
		},
		{
			name:         "when metrics path is custom",
			path:         "/internal/metrics",
			wantCode:     http.StatusOK,
			wantContains: "test_metric 42",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(
					"# HELP test_metric A test metric.\n# TYPE test_metric gauge\ntest_metric 42\n",
				))
			})

			a := api.New(config.Config{}, s.logger)
			a.RegisterHandlers(a.GetMetricsHandler(metricsHandler, tc.path))

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			a.Echo.ServeHTTP(rec, req)

			s.Equal(tc.wantCode, rec.Code)
			s.Contains(rec.Body.String(), tc.wantContains)
		})
	}
}

func TestMetricsPublicTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsPublicTestSuite))
}
