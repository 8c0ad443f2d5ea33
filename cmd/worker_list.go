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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/retr0h/romusha/internal/cli"
	"github.com/retr0h/romusha/internal/job"
)

// workerListCmd represents the workerList command.
var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered workers",
	Long: `List the workers currently present in the registry bucket.
Entries expire when a worker stops sending heartbeats.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		if appConfig.NATS.Registry.Bucket == "" {
			cli.LogFatal(logger, "registry bucket is not configured", nil)
		}

		nc, js := connectJetStream(logger)
		defer nc.Close()

		kv, err := js.KeyValue(ctx, appConfig.NATS.Registry.Bucket)
		if err != nil {
			cli.LogFatal(logger, "failed to open registry bucket", err,
				"bucket", appConfig.NATS.Registry.Bucket)
		}

		regs, err := listRegistrations(ctx, kv)
		if err != nil {
			cli.LogFatal(logger, "failed to list workers", err)
		}

		if jsonOutput {
			out, err := json.Marshal(regs)
			if err != nil {
				cli.LogFatal(logger, "failed to encode workers", err)
			}
			fmt.Println(string(out))
			return
		}

		cli.PrintCompactTable(os.Stdout, []cli.Section{cli.WorkerSection(regs, time.Now())})
	},
}

// listRegistrations reads every worker entry from the registry bucket.
// Undecodable entries are logged and skipped.
func listRegistrations(
	ctx context.Context,
	kv jetstream.KeyValue,
) ([]job.WorkerRegistration, error) {
	lister, err := kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	var regs []job.WorkerRegistration
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, job.RegistryKeyPrefix) {
			continue
		}

		entry, err := kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}

		reg, err := job.DecodeRegistration(entry.Value())
		if err != nil {
			logger.Warn("skipping malformed registration",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		regs = append(regs, reg)
	}

	return regs, nil
}

func init() {
	workerCmd.AddCommand(workerListCmd)
}
