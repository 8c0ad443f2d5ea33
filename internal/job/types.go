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

package job

import (
	"encoding/json"
	"fmt"
	"time"
)

// RegistryKeyPrefix prefixes every worker entry in the registry bucket.
const RegistryKeyPrefix = "workers."

// WorkerRegistration represents a worker's entry in the KV registry.
type WorkerRegistration struct {
	// Hostname is the hostname the worker registered under.
	Hostname string `json:"hostname"`
	// InstanceID distinguishes processes sharing a hostname.
	InstanceID string `json:"instance_id"`
	// Durable is the durable consumer the worker pulls from.
	Durable string `json:"durable"`
	// FilterSubject is the subject filter bound to the consumer.
	FilterSubject string `json:"filter_subject"`
	// Jobs are the job names the worker can dispatch.
	Jobs []string `json:"jobs"`
	// MaxJobs is the worker's handler concurrency limit.
	MaxJobs int `json:"max_jobs"`
	// Host contains platform information gathered at startup.
	Host HostInfo `json:"host"`
	// Version is the version of the worker binary.
	Version string `json:"version,omitempty"`
	// StartedAt is the timestamp when the worker process started.
	StartedAt time.Time `json:"started_at"`
	// RegisteredAt is the timestamp of the last heartbeat.
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistryKey returns the KV key for a worker's registration entry.
func RegistryKey(
	hostname string,
) string {
	return RegistryKeyPrefix + SanitizeHostname(hostname)
}

// DecodeRegistration unmarshals a registry entry.
func DecodeRegistration(
	data []byte,
) (WorkerRegistration, error) {
	var reg WorkerRegistration
	if err := json.Unmarshal(data, &reg); err != nil {
		return WorkerRegistration{}, fmt.Errorf("decode worker registration: %w", err)
	}

	return reg, nil
}
