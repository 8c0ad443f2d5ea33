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

// Config represents the root structure of the YAML configuration file.
// This struct is used to unmarshal configuration data from Viper.
type Config struct {
	NATS      NATS      `mapstructure:"nats" mask:"struct"`
	Worker    Worker    `mapstructure:"worker"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	// Debug enable or disable debug option set from CLI.
	Debug bool `mapstructure:"debug"`
}

// Telemetry configuration settings.
type Telemetry struct {
	Tracing TracingConfig `mapstructure:"tracing,omitempty"`
	Metrics MetricsConfig `mapstructure:"metrics,omitempty"`
}

// MetricsConfig configuration settings for Prometheus metrics.
type MetricsConfig struct {
	// Path is the HTTP path for the Prometheus scrape endpoint.
	// Defaults to "/metrics" when empty.
	Path string `mapstructure:"path"`
}

// TracingConfig configuration settings for distributed tracing.
type TracingConfig struct {
	// Enabled enables or disables tracing.
	Enabled bool `mapstructure:"enabled"`
	// Exporter selects the trace exporter: "stdout" or "otlp".
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=none stdout otlp"`
	// OTLPEndpoint is the gRPC endpoint for the OTLP exporter (e.g., "localhost:4317").
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// NATS configuration settings.
type NATS struct {
	// Host the NATS server hostname.
	Host string `mapstructure:"host" validate:"required"`
	// Port the NATS server port.
	Port int `mapstructure:"port" validate:"gt=0"`
	// Token is the access token presented on connect. Empty disables token auth.
	Token string `mapstructure:"token" mask:"password"`
	// ClientName the NATS client name for identification.
	ClientName string       `mapstructure:"client_name"`
	Server     NATSServer   `mapstructure:"server,omitempty"`
	Stream     NATSStream   `mapstructure:"stream,omitempty"`
	Registry   NATSRegistry `mapstructure:"registry,omitempty"`
}

// NATSServer configuration settings for the embedded development server.
type NATSServer struct {
	// Host the server will bind to.
	Host string `mapstructure:"host"`
	// Port the server will bind to.
	Port int `mapstructure:"port"`
	// StoreDir the directory for JetStream file storage.
	StoreDir string `mapstructure:"store_dir"`
}

// NATSStream configuration for JetStream stream settings.
type NATSStream struct {
	// Name is the JetStream stream name.
	Name string `mapstructure:"name" validate:"required"`
	// Subjects is the subject filter for the stream.
	Subjects string `mapstructure:"subjects"`
	MaxAge   string `mapstructure:"max_age" validate:"omitempty,duration"` // e.g. "24h", "1h30m"
	MaxMsgs  int64  `mapstructure:"max_msgs"`
	Storage  string `mapstructure:"storage"` // "file" or "memory"
	Replicas int    `mapstructure:"replicas"`
	Discard  string `mapstructure:"discard"` // "old" or "new"
}

// NATSRegistry configuration for the worker registry KV bucket.
type NATSRegistry struct {
	// Bucket is the KV bucket name for worker registration entries.
	// Empty disables the registry heartbeat.
	Bucket   string `mapstructure:"bucket"`
	TTL      string `mapstructure:"ttl" validate:"omitempty,duration"` // e.g. "30s"
	Storage  string `mapstructure:"storage"` // "file" or "memory"
	Replicas int    `mapstructure:"replicas"`
}

// WorkerConsumer configuration for the worker's durable JetStream consumer.
type WorkerConsumer struct {
	// AckWait is the time to wait for an ACK before the broker redelivers.
	AckWait string `mapstructure:"ack_wait" validate:"omitempty,duration"` // e.g. "30s", "1m"
	// MaxDeliver is the maximum number of delivery attempts (-1 unlimited).
	MaxDeliver int `mapstructure:"max_deliver"`
	// MaxAckPending is the maximum outstanding unacknowledged messages.
	MaxAckPending int `mapstructure:"max_ack_pending"`
}

// WorkerHTTP configuration for the health and metrics endpoint.
type WorkerHTTP struct {
	// Port the endpoint binds to. Zero disables the endpoint.
	Port int `mapstructure:"port" validate:"gte=0"`
}

// Worker configuration settings.
type Worker struct {
	// Namespace is the first subject segment.
	Namespace string `mapstructure:"namespace" validate:"required,subject_token"`
	// Group is the worker group subject segment.
	Group string `mapstructure:"group" validate:"required,subject_token"`
	// Durable is the durable consumer name.
	Durable string `mapstructure:"durable" validate:"required,subject_token"`
	// Hostname identifies this worker instance in the registry.
	Hostname string `mapstructure:"hostname"`
	// BatchSize is the maximum number of messages per fetch.
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
	// FetchWait bounds how long a fetch waits for messages.
	FetchWait string `mapstructure:"fetch_wait" validate:"required,duration"` // e.g. "1s"
	// MaxJobs maximum number of concurrent handler invocations.
	MaxJobs int `mapstructure:"max_jobs" validate:"gt=0"`
	// JobTimeout bounds a single handler invocation. Empty means no limit.
	JobTimeout string `mapstructure:"job_timeout" validate:"omitempty,duration"`
	// MinBackoff is the idle backoff floor in seconds.
	MinBackoff int `mapstructure:"min_backoff" validate:"gt=0"`
	// MaxBackoff is the idle backoff ceiling in seconds.
	MaxBackoff int `mapstructure:"max_backoff" validate:"gt=0,gtefield=MinBackoff"`
	// SupervisorMaxBackoff caps the reconnect backoff after fetch errors.
	SupervisorMaxBackoff string `mapstructure:"supervisor_max_backoff" validate:"omitempty,duration"` // e.g. "1m"
	// Consumer settings for the durable consumer.
	Consumer WorkerConsumer `mapstructure:"consumer,omitempty"`
	// HTTP settings for the health endpoint.
	HTTP WorkerHTTP `mapstructure:"http,omitempty"`
}
