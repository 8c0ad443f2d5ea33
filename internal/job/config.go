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
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/retr0h/romusha/internal/config"
)

// ParseStorageType maps "memory"/"file" strings to jetstream.StorageType.
func ParseStorageType(
	s string,
) jetstream.StorageType {
	if s == "memory" {
		return jetstream.MemoryStorage
	}

	return jetstream.FileStorage
}

// GetJobsStreamConfig returns the stream configuration for job messages.
// When no subjects are configured the stream accepts the worker group's
// filter subject, {namespace}.{group}.>.
func GetJobsStreamConfig(
	streamConfig *config.NATSStream,
	workerConfig *config.Worker,
) jetstream.StreamConfig {
	// Parse duration string to time.Duration
	maxAge, _ := time.ParseDuration(streamConfig.MaxAge)

	subjects := streamConfig.Subjects
	if subjects == "" {
		subjects = FilterSubject(workerConfig.Namespace, workerConfig.Group)
	}

	// Parse discard policy
	var discard jetstream.DiscardPolicy
	if streamConfig.Discard == "new" {
		discard = jetstream.DiscardNew
	} else {
		discard = jetstream.DiscardOld
	}

	replicas := streamConfig.Replicas
	if replicas < 1 {
		replicas = 1
	}

	return jetstream.StreamConfig{
		Name:        streamConfig.Name,
		Description: "Stream for worker jobs",
		Subjects:    []string{subjects},
		Storage:     ParseStorageType(streamConfig.Storage),
		Replicas:    replicas,
		MaxAge:      maxAge,
		MaxMsgs:     streamConfig.MaxMsgs,
		Discard:     discard,
	}
}

// GetJobsConsumerConfig returns the durable pull consumer configuration.
// Acknowledgment is explicit and delivery is limited to the worker group.
func GetJobsConsumerConfig(
	workerConfig *config.Worker,
) jetstream.ConsumerConfig {
	// Parse duration string to time.Duration
	ackWait, _ := time.ParseDuration(workerConfig.Consumer.AckWait)

	return jetstream.ConsumerConfig{
		Name:          workerConfig.Durable,
		Durable:       workerConfig.Durable,
		Description:   "Durable pull consumer for worker jobs",
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: FilterSubject(workerConfig.Namespace, workerConfig.Group),
		AckWait:       ackWait,
		MaxDeliver:    workerConfig.Consumer.MaxDeliver,
		MaxAckPending: workerConfig.Consumer.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}
}

// GetRegistryKVConfig returns the KeyValue bucket configuration for worker
// registration entries.
func GetRegistryKVConfig(
	registryConfig *config.NATSRegistry,
) jetstream.KeyValueConfig {
	// Parse duration string to time.Duration
	ttl, _ := time.ParseDuration(registryConfig.TTL)

	return jetstream.KeyValueConfig{
		Bucket:      registryConfig.Bucket,
		Description: "Registry of running workers",
		TTL:         ttl,
		Storage:     ParseStorageType(registryConfig.Storage),
		Replicas:    registryConfig.Replicas,
	}
}
