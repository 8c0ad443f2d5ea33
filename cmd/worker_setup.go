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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/retr0h/romusha/internal/cli"
)

// workerSetupCmd represents the workerSetup command.
var workerSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the jobs stream and durable consumer",
	Long: `Create or update the jobs stream and the worker's durable pull consumer.
Safe to run repeatedly; the worker also binds the consumer on start.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		nc, js := connectJetStream(logger)
		defer nc.Close()

		_, consumer, err := ensureJobInfrastructure(ctx, js)
		if err != nil {
			cli.LogFatal(logger, "failed to set up job infrastructure", err)
		}

		info := consumer.CachedInfo()
		logger.Info(
			"job infrastructure ready",
			slog.String("stream", info.Stream),
			slog.String("durable", info.Config.Durable),
			slog.String("filter_subject", info.Config.FilterSubject),
			slog.Uint64("pending", info.NumPending),
		)
	},
}

func init() {
	workerCmd.AddCommand(workerSetupCmd)
}
