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

// Package backoff computes the idle wait between empty fetches.
package backoff

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is returned when the floor or ceiling is unusable.
var ErrInvalidPolicy = errors.New("invalid backoff policy")

// Policy bounds the idle backoff of the consumer loop.
type Policy struct {
	// Floor is the wait after a non-empty fetch and on start.
	Floor time.Duration
	// Ceiling caps the doubled wait.
	Ceiling time.Duration
}

// NewPolicy returns a validated policy.
func NewPolicy(
	floor time.Duration,
	ceiling time.Duration,
) (Policy, error) {
	p := Policy{Floor: floor, Ceiling: ceiling}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}

	return p, nil
}

// FromSeconds builds a validated policy from whole-second bounds, the unit
// used in configuration.
func FromSeconds(
	floor int,
	ceiling int,
) (Policy, error) {
	return NewPolicy(
		time.Duration(floor)*time.Second,
		time.Duration(ceiling)*time.Second,
	)
}

// Validate rejects non-positive bounds and a floor above the ceiling.
func (p Policy) Validate() error {
	switch {
	case p.Floor <= 0:
		return fmt.Errorf("%w: floor must be positive, got %s", ErrInvalidPolicy, p.Floor)
	case p.Ceiling <= 0:
		return fmt.Errorf("%w: ceiling must be positive, got %s", ErrInvalidPolicy, p.Ceiling)
	case p.Floor > p.Ceiling:
		return fmt.Errorf(
			"%w: floor %s exceeds ceiling %s",
			ErrInvalidPolicy,
			p.Floor,
			p.Ceiling,
		)
	}

	return nil
}

// Next returns min(current*2, Ceiling).
func (p Policy) Next(
	current time.Duration,
) time.Duration {
	// current*2 overflows past half of the max duration
	if current > p.Ceiling/2 {
		return p.Ceiling
	}

	return current * 2
}

// Reset returns the floor.
func (p Policy) Reset() time.Duration {
	return p.Floor
}
