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

package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/retr0h/romusha/internal/cli"
	"github.com/retr0h/romusha/internal/job"
	"github.com/retr0h/romusha/internal/telemetry"
)

// jobPublishCmd represents the jobPublish command.
var jobPublishCmd = &cobra.Command{
	Use:   "publish <job> [args...]",
	Short: "Publish a job",
	Long: `Publish a job to the worker group. Arguments become subject segments
after the job name, e.g. "publish syncZabbixData 2024-05-01" publishes
jobs.romusha.syncZabbixData.2024-05-01.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		subject := job.BuildSubject(
			appConfig.Worker.Namespace,
			appConfig.Worker.Group,
			args[0],
			args[1:]...,
		)
		if _, err := job.ParseSubject(subject); err != nil {
			cli.LogFatal(logger, "invalid job", err, "subject", subject)
		}

		shutdownTracer, err := telemetry.InitTracer(
			ctx,
			telemetry.Service{Name: telemetry.ServiceName, Version: versionString()},
			appConfig.Telemetry.Tracing,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize tracer", err)
		}
		defer func() { _ = shutdownTracer(ctx) }()

		ctx, span := otel.Tracer("romusha").Start(
			ctx,
			"job.publish",
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				attribute.String("messaging.destination.name", subject),
				attribute.String("job.name", args[0]),
			),
		)
		defer span.End()

		nc, js := connectJetStream(logger)
		defer nc.Close()

		msg := nats.NewMsg(subject)
		telemetry.InjectTraceContextToHeader(ctx, msg.Header)

		ack, err := js.PublishMsg(ctx, msg, jetstream.WithExpectStream(appConfig.NATS.Stream.Name))
		if err != nil {
			cli.LogFatal(logger, "failed to publish job", err, "subject", subject)
		}

		if jsonOutput {
			out, _ := json.Marshal(map[string]any{
				"subject":  subject,
				"stream":   ack.Stream,
				"sequence": ack.Sequence,
			})
			fmt.Println(string(out))
			return
		}

		logger.Info(
			"job published",
			slog.String("subject", subject),
			slog.String("stream", ack.Stream),
			slog.Uint64("sequence", ack.Sequence),
		)
	},
}

func init() {
	jobCmd.AddCommand(jobPublishCmd)
}
