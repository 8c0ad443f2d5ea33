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

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"
)

type fakeJSMsg struct {
	jetstream.Msg

	subject string
}

func (m fakeJSMsg) Subject() string { return m.subject }

type fakeBatch struct {
	msgs []jetstream.Msg
	err  error
}

func (b *fakeBatch) Messages() <-chan jetstream.Msg {
	ch := make(chan jetstream.Msg, len(b.msgs))
	for _, m := range b.msgs {
		ch <- m
	}
	close(ch)

	return ch
}

func (b *fakeBatch) Error() error { return b.err }

type fakeConsumer struct {
	jetstream.Consumer

	batch    *fakeBatch
	err      error
	gotBatch int
	gotOpts  int
}

func (c *fakeConsumer) Fetch(
	batch int,
	opts ...jetstream.FetchOpt,
) (jetstream.MessageBatch, error) {
	c.gotBatch = batch
	c.gotOpts = len(opts)
	if c.err != nil {
		return nil, c.err
	}

	return c.batch, nil
}

type fakeConsumerManager struct {
	consumer  jetstream.Consumer
	err       error
	gotStream string
	gotConfig jetstream.ConsumerConfig
}

func (m *fakeConsumerManager) CreateOrUpdateConsumer(
	_ context.Context,
	stream string,
	cfg jetstream.ConsumerConfig,
) (jetstream.Consumer, error) {
	m.gotStream = stream
	m.gotConfig = cfg

	return m.consumer, m.err
}

type SourceTestSuite struct {
	suite.Suite
}

func (s *SourceTestSuite) TestBind() {
	tests := []struct {
		name        string
		manager     *fakeConsumerManager
		wantErr     bool
		errContains string
	}{
		{
			name:    "when consumer is created returns fetcher",
			manager: &fakeConsumerManager{consumer: &fakeConsumer{}},
		},
		{
			name:        "when create fails returns wrapped error",
			manager:     &fakeConsumerManager{err: jetstream.ErrStreamNotFound},
			wantErr:     true,
			errContains: "binding consumer romusha on stream JOBS",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			b := NewJetStreamBinder(tt.manager, "JOBS", jetstream.ConsumerConfig{
				Durable:       "romusha",
				AckPolicy:     jetstream.AckExplicitPolicy,
				FilterSubject: "jobs.romusha.>",
			})

			f, err := b.Bind(context.Background())

			s.Equal("JOBS", tt.manager.gotStream)
			s.Equal(jetstream.AckExplicitPolicy, tt.manager.gotConfig.AckPolicy)
			s.Equal("jobs.romusha.>", tt.manager.gotConfig.FilterSubject)
			if tt.wantErr {
				s.Error(err)
				s.ErrorIs(err, jetstream.ErrStreamNotFound)
				s.Contains(err.Error(), tt.errContains)
				s.Nil(f)
				return
			}
			s.NoError(err)
			s.NotNil(f)
		})
	}
}

func (s *SourceTestSuite) TestFetch() {
	two := []jetstream.Msg{
		fakeJSMsg{subject: "jobs.romusha.ping"},
		fakeJSMsg{subject: "jobs.romusha.syncZabbixData.2024-05-01"},
	}

	tests := []struct {
		name         string
		consumer     *fakeConsumer
		cancelled    bool
		wantSubjects []string
		wantErr      bool
	}{
		{
			name:      "when context is already cancelled does not pull",
			consumer:  &fakeConsumer{batch: &fakeBatch{msgs: two}},
			cancelled: true,
			wantErr:   true,
		},
		{
			name:         "when batch has messages returns them in order",
			consumer:     &fakeConsumer{batch: &fakeBatch{msgs: two}},
			wantSubjects: []string{"jobs.romusha.ping", "jobs.romusha.syncZabbixData.2024-05-01"},
		},
		{
			name:         "when batch is empty returns no messages",
			consumer:     &fakeConsumer{batch: &fakeBatch{}},
			wantSubjects: []string{},
		},
		{
			name:         "when empty batch timed out returns no error",
			consumer:     &fakeConsumer{batch: &fakeBatch{err: nats.ErrTimeout}},
			wantSubjects: []string{},
		},
		{
			name: "when batch error follows messages returns the messages",
			consumer: &fakeConsumer{batch: &fakeBatch{
				msgs: two[:1],
				err:  errors.New("heartbeat missed"),
			}},
			wantSubjects: []string{"jobs.romusha.ping"},
		},
		{
			name: "when empty batch reports an error returns it",
			consumer: &fakeConsumer{batch: &fakeBatch{
				err: nats.ErrConnectionClosed,
			}},
			wantErr: true,
		},
		{
			name:     "when fetch fails returns error",
			consumer: &fakeConsumer{err: jetstream.ErrConsumerNotFound},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelled {
				cancel()
			}

			f := &consumerFetcher{consumer: tt.consumer}

			msgs, err := f.Fetch(ctx, 8, time.Second)

			if tt.cancelled {
				s.ErrorIs(err, context.Canceled)
				s.Zero(tt.consumer.gotBatch)
				return
			}
			s.Equal(8, tt.consumer.gotBatch)
			s.Equal(1, tt.consumer.gotOpts)
			if tt.wantErr {
				s.Error(err)
				return
			}
			s.NoError(err)

			subjects := make([]string, 0, len(msgs))
			for _, m := range msgs {
				subjects = append(subjects, m.Subject())
			}
			s.Equal(tt.wantSubjects, subjects)
		})
	}
}

func TestSourceTestSuite(t *testing.T) {
	suite.Run(t, new(SourceTestSuite))
}
