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

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/retr0h/romusha/internal/backoff"
	"github.com/retr0h/romusha/internal/validation"
)

// Validate checks the configuration once at startup. Malformed backoff
// bounds and durations fail here rather than inside the consumer loop.
func Validate(
	cfg *Config,
) error {
	var errs []error

	if msg, ok := validation.Struct(cfg); !ok {
		errs = append(errs, errors.New(msg))
	}

	if _, err := backoff.FromSeconds(cfg.Worker.MinBackoff, cfg.Worker.MaxBackoff); err != nil {
		errs = append(errs, fmt.Errorf("worker backoff: %w", err))
	}

	if d, err := time.ParseDuration(cfg.Worker.FetchWait); err == nil && d <= 0 {
		errs = append(errs, fmt.Errorf("worker fetch_wait must be positive, got %s", d))
	}

	return errors.Join(errs...)
}

// IdleBackoff returns the validated idle backoff policy.
func (w Worker) IdleBackoff() (backoff.Policy, error) {
	return backoff.FromSeconds(w.MinBackoff, w.MaxBackoff)
}
