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
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/retr0h/romusha/internal/cli"
	"github.com/retr0h/romusha/internal/config"
	"github.com/retr0h/romusha/internal/telemetry"
)

var (
	appConfig  config.Config
	logger     = slog.New(slog.NewTextHandler(os.Stdout, nil))
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "romusha",
	Short: "A NATS JetStream job worker.",
	Long: `A long-running job worker that pulls named jobs from a durable
JetStream consumer and dispatches each one to a registered handler.

┬─┐┌─┐┌┬┐┬ ┬┌─┐┬ ┬┌─┐
├┬┘│ │││││ │└─┐├─┤├─┤
┴└─└─┘┴ ┴└─┘└─┘┴ ┴┴ ┴

https://github.com/retr0h/romusha
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable or disable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON output")

	rootCmd.PersistentFlags().
		StringP("romusha-file", "f", "/etc/romusha/romusha.yaml", "Path to config file")
	rootCmd.PersistentFlags().
		StringP("nats-host", "", "localhost", "NATS server hostname")
	rootCmd.PersistentFlags().
		IntP("nats-port", "", 4222, "NATS server port")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("romushaFile", rootCmd.PersistentFlags().Lookup("romusha-file"))
	_ = viper.BindPFlag("nats.host", rootCmd.PersistentFlags().Lookup("nats-host"))
	_ = viper.BindPFlag("nats.port", rootCmd.PersistentFlags().Lookup("nats-port"))
}

// setDefaults seeds keys that have no command-line flag.
func setDefaults() {
	viper.SetDefault("nats.client_name", cli.DefaultClientName)
	viper.SetDefault("nats.stream.name", "JOBS")
	viper.SetDefault("nats.stream.storage", "file")
	viper.SetDefault("nats.stream.discard", "old")
	viper.SetDefault("nats.registry.ttl", "30s")
	viper.SetDefault("nats.registry.storage", "memory")
	viper.SetDefault("nats.server.host", "localhost")
	viper.SetDefault("nats.server.port", 4222)
	viper.SetDefault("nats.server.store_dir", ".nats/jetstream/")
	viper.SetDefault("worker.consumer.ack_wait", "30s")
	viper.SetDefault("worker.consumer.max_deliver", -1)
	viper.SetDefault("worker.consumer.max_ack_pending", 1000)
	viper.SetDefault("worker.supervisor_max_backoff", "1m")
}

func initConfig() {
	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("romusha")
	viper.SetConfigFile(viper.GetString("romushaFile"))

	if err := viper.ReadInConfig(); err != nil {
		cli.LogFatal(logger, "failed to read config", err, "romushaFile", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		cli.LogFatal(logger, "failed to unmarshal config", err, "romushaFile", viper.ConfigFileUsed())
	}

	// Auto-enable tracing in debug mode so trace_id appears in log lines.
	// No exporter is set, just log correlation.
	if appConfig.Debug && !appConfig.Telemetry.Tracing.Enabled {
		appConfig.Telemetry.Tracing.Enabled = true
	}

	err := config.Validate(&appConfig)
	if err != nil {
		cli.LogFatal(logger, "validation failed", err, "romushaFile", viper.ConfigFileUsed())
	}
}

func initLogger() {
	logger = telemetry.NewLogger(os.Stderr, telemetry.LoggerOptions{
		JSON:    jsonOutput,
		Debug:   viper.GetBool("debug"),
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})
}
