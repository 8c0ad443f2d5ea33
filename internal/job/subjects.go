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

// Package job provides the NATS subject hierarchy and JetStream settings for
// job routing.
//
// Subject Format: {namespace}.{group}.{job}[.{arg}...]
//
// Examples:
//   - jobs.romusha.syncZabbixData.2024-05-01
//   - jobs.romusha.notifyAllOverdueFbstarTickets.24.6281234567890
//
// The worker binds one durable consumer filtered on {namespace}.{group}.>
// and routes each message by the third segment.
package job

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// Separator splits subject segments.
	Separator = "."

	// DefaultNamespace is the first subject segment for jobs.
	DefaultNamespace = "jobs"
	// DefaultGroup is the worker group segment.
	DefaultGroup = "romusha"

	// nameIndex is the position of the job name in a subject.
	nameIndex = 2
)

// ErrInvalidSubject is returned when a subject cannot be routed.
var ErrInvalidSubject = errors.New("invalid job subject")

// Route is a parsed job subject.
type Route struct {
	// Namespace is the first segment (e.g. "jobs").
	Namespace string
	// Group is the worker group segment (e.g. "romusha").
	Group string
	// Name is the job name used for dispatch.
	Name string
	// Args holds the trailing segments in order. Interpretation is left
	// to the handler.
	Args []string
}

// Rest rejoins the arguments from index i onwards. Handlers use it when an
// argument may itself contain the separator. Returns "" when i is out of range.
func (r Route) Rest(
	i int,
) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}

	return strings.Join(r.Args[i:], Separator)
}

// ParseSubject extracts the job name and arguments from a subject.
// Expected format: {namespace}.{group}.{job}[.{arg}...]
func ParseSubject(
	subject string,
) (Route, error) {
	parts := strings.Split(subject, Separator)
	if len(parts) <= nameIndex {
		return Route{}, fmt.Errorf("%w: %q has no job segment", ErrInvalidSubject, subject)
	}

	if parts[nameIndex] == "" {
		return Route{}, fmt.Errorf("%w: %q has an empty job name", ErrInvalidSubject, subject)
	}

	args := make([]string, 0, len(parts)-nameIndex-1)
	args = append(args, parts[nameIndex+1:]...)

	return Route{
		Namespace: parts[0],
		Group:     parts[1],
		Name:      parts[nameIndex],
		Args:      args,
	}, nil
}

// BuildSubject creates a subject for a job.
// Example: jobs.romusha.syncZabbixData.2024-05-01
func BuildSubject(
	namespace string,
	group string,
	name string,
	args ...string,
) string {
	parts := make([]string, 0, 3+len(args))
	parts = append(parts, namespace, group, name)
	parts = append(parts, args...)

	return strings.Join(parts, Separator)
}

// FilterSubject returns the consumer filter for a worker group.
// Example: jobs.romusha.>
func FilterSubject(
	namespace string,
	group string,
) string {
	return fmt.Sprintf("%s.%s.>", namespace, group)
}

// EventPrefix is the root token of event subjects. Events live outside the
// job namespace so the jobs stream never stores them.
const EventPrefix = "events"

// EventSubject returns the subject handlers publish events on.
// Example: events.jobs.pong
func EventSubject(
	namespace string,
	event string,
) string {
	return fmt.Sprintf("%s.%s.%s", EventPrefix, namespace, event)
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeHostname converts a hostname to a valid NATS consumer/KV key name.
// NATS consumer names must be alphanumeric with underscores only.
func SanitizeHostname(
	hostname string,
) string {
	return invalidNameChars.ReplaceAllString(hostname, "_")
}
