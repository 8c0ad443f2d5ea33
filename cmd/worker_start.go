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
	"context"

	"github.com/spf13/cobra"

	"github.com/retr0h/romusha/internal/cli"
	"github.com/retr0h/romusha/internal/telemetry"
)

// workerStartCmd represents the workerStart command.
var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the worker",
	Long: `Start the job worker.
It pulls jobs from the durable consumer and dispatches them as they become
available. SIGINT or SIGTERM drains the connection before exit.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		shutdownTracer, err := telemetry.InitTracer(
			ctx,
			telemetry.Service{Name: telemetry.ServiceName, Version: versionString()},
			appConfig.Telemetry.Tracing,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize tracer", err)
		}

		metricsHandler, metricsPath, shutdownMeter, err := telemetry.InitMeter(
			appConfig.Telemetry.Metrics,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize meter", err)
		}

		b := setupWorker(ctx, logger.With("component", "worker"), metricsHandler, metricsPath)

		b.lifecycle.Start()
		cli.RunServer(ctx, b.lifecycle, func() {
			cli.DrainNATS(b.nc, logger)
			_ = shutdownMeter(context.Background())
			_ = shutdownTracer(context.Background())
		})
	},
}

func init() {
	workerCmd.AddCommand(workerStartCmd)
}
