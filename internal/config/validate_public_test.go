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

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/romusha/internal/config"
)

type ConfigPublicTestSuite struct {
	suite.Suite
}

func validConfig() config.Config {
	return config.Config{
		NATS: config.NATS{
			Host: "localhost",
			Port: 4222,
			Stream: config.NATSStream{
				Name: "JOBS",
			},
		},
		Worker: config.Worker{
			Namespace:  "jobs",
			Group:      "romusha",
			Durable:    "romusha",
			BatchSize:  8,
			FetchWait:  "1s",
			MaxJobs:    10,
			MinBackoff: 1,
			MaxBackoff: 32,
		},
	}
}

func (s *ConfigPublicTestSuite) TestValidate() {
	tests := []struct {
		name        string
		mutate      func(c *config.Config)
		expectError bool
		errContains []string
	}{
		{
			name:        "valid config",
			mutate:      func(_ *config.Config) {},
			expectError: false,
		},
		{
			name: "missing nats host",
			mutate: func(c *config.Config) {
				c.NATS.Host = ""
			},
			expectError: true,
			errContains: []string{"Host"},
		},
		{
			name: "group with a dot",
			mutate: func(c *config.Config) {
				c.Worker.Group = "romusha.jobs"
			},
			expectError: true,
			errContains: []string{"Group", "subject_token"},
		},
		{
			name: "min backoff above max backoff",
			mutate: func(c *config.Config) {
				c.Worker.MinBackoff = 64
				c.Worker.MaxBackoff = 32
			},
			expectError: true,
			errContains: []string{"MaxBackoff", "floor"},
		},
		{
			name: "zero min backoff",
			mutate: func(c *config.Config) {
				c.Worker.MinBackoff = 0
			},
			expectError: true,
			errContains: []string{"MinBackoff"},
		},
		{
			name: "negative max backoff",
			mutate: func(c *config.Config) {
				c.Worker.MaxBackoff = -1
			},
			expectError: true,
			errContains: []string{"MaxBackoff"},
		},
		{
			name: "unparsable fetch wait",
			mutate: func(c *config.Config) {
				c.Worker.FetchWait = "soon"
			},
			expectError: true,
			errContains: []string{"FetchWait"},
		},
		{
			name: "negative fetch wait",
			mutate: func(c *config.Config) {
				c.Worker.FetchWait = "-1s"
			},
			expectError: true,
			errContains: []string{"fetch_wait"},
		},
		{
			name: "unparsable job timeout",
			mutate: func(c *config.Config) {
				c.Worker.JobTimeout = "forever"
			},
			expectError: true,
			errContains: []string{"JobTimeout"},
		},
		{
			name: "zero batch size",
			mutate: func(c *config.Config) {
				c.Worker.BatchSize = 0
			},
			expectError: true,
			errContains: []string{"BatchSize"},
		},
		{
			name: "unknown tracing exporter",
			mutate: func(c *config.Config) {
				c.Telemetry.Tracing.Exporter = "zipkin"
			},
			expectError: true,
			errContains: []string{"Exporter"},
		},
		{
			name:        "missing everything",
			mutate:      func(c *config.Config) { *c = config.Config{} },
			expectError: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := config.Validate(&cfg)

			if tt.expectError {
				s.Error(err)
				for _, c := range tt.errContains {
					s.Contains(err.Error(), c)
				}
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *ConfigPublicTestSuite) TestIdleBackoff() {
	cfg := validConfig()

	p, err := cfg.Worker.IdleBackoff()
	s.Require().NoError(err)
	s.Equal(time.Second, p.Floor)
	s.Equal(32*time.Second, p.Ceiling)
}

func TestConfigPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigPublicTestSuite))
}
