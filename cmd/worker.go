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

	masker "github.com/ggwhite/go-masker/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// workerCmd represents the worker command.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "The worker subcommand",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Debug(
			"worker configuration",
			slog.String("config_file", viper.ConfigFileUsed()),
			slog.Bool("debug", appConfig.Debug),
			slog.Any("config", maskedConfig()),
		)
	},
}

// maskedConfig returns appConfig with secret fields masked for logging.
func maskedConfig() any {
	m := masker.NewMaskerMarshaler()

	masked, err := m.Struct(&appConfig)
	if err != nil {
		return "unavailable: " + err.Error()
	}

	return masked
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.PersistentFlags().
		StringP("namespace", "", "jobs", "First subject segment of job subjects")
	workerCmd.PersistentFlags().
		StringP("group", "", "romusha", "Worker group subject segment")
	workerCmd.PersistentFlags().
		StringP("durable", "", "romusha", "Durable consumer name")
	workerCmd.PersistentFlags().
		StringP("hostname", "", "", "Worker hostname (defaults to system hostname)")
	workerCmd.PersistentFlags().
		IntP("batch-size", "", 8, "Maximum messages per fetch")
	workerCmd.PersistentFlags().
		StringP("fetch-wait", "", "1s", "Maximum time a fetch waits for messages")
	workerCmd.PersistentFlags().
		IntP("max-jobs", "", 10, "Maximum concurrent jobs per worker")
	workerCmd.PersistentFlags().
		StringP("job-timeout", "", "", "Per-job timeout (empty for none)")
	workerCmd.PersistentFlags().
		IntP("min-backoff", "", 1, "Idle backoff floor in seconds")
	workerCmd.PersistentFlags().
		IntP("max-backoff", "", 32, "Idle backoff ceiling in seconds")
	workerCmd.PersistentFlags().
		IntP("http-port", "", 0, "Health and metrics port (0 disables)")

	for key, flag := range map[string]string{
		"worker.namespace":   "namespace",
		"worker.group":       "group",
		"worker.durable":     "durable",
		"worker.hostname":    "hostname",
		"worker.batch_size":  "batch-size",
		"worker.fetch_wait":  "fetch-wait",
		"worker.max_jobs":    "max-jobs",
		"worker.job_timeout": "job-timeout",
		"worker.min_backoff": "min-backoff",
		"worker.max_backoff": "max-backoff",
		"worker.http.port":   "http-port",
	} {
		_ = viper.BindPFlag(key, workerCmd.PersistentFlags().Lookup(flag))
	}
}
