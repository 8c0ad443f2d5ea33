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

// Package cli provides shared utilities for CLI startup commands.
package cli

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/retr0h/romusha/internal/config"
)

// DefaultClientName identifies connections when no client name is configured.
const DefaultClientName = "romusha"

// drainTimeout bounds how long DrainNATS waits for the connection to close.
var drainTimeout = 30 * time.Second

// NATSURL returns the client URL for the configured host and port.
func NATSURL(
	cfg config.NATS,
) string {
	return "nats://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// NATSOptions builds the connect options shared by every command. The
// connection reconnects forever and reports state changes to logger.
func NATSOptions(
	cfg config.NATS,
	logger *slog.Logger,
) []nats.Option {
	name := cfg.ClientName
	if name == "" {
		name = DefaultClientName
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrlRedacted()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Debug("nats connection closed")
		}),
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	return opts
}

// ConnectNATS dials the configured server.
func ConnectNATS(
	cfg config.NATS,
	logger *slog.Logger,
) (*nats.Conn, error) {
	url := NATSURL(cfg)

	nc, err := nats.Connect(url, NATSOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	return nc, nil
}

// DrainNATS drains nc so in-flight acks are flushed, then waits for the
// connection to close. A drain that fails or overruns closes nc outright.
func DrainNATS(
	nc *nats.Conn,
	logger *slog.Logger,
) {
	if nc == nil || nc.IsClosed() {
		return
	}

	if err := nc.Drain(); err != nil {
		logger.Warn("failed to drain nats connection", slog.String("error", err.Error()))
		nc.Close()
		return
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(drainTimeout)
	for !nc.IsClosed() {
		select {
		case <-ticker.C:
		case <-deadline:
			logger.Warn("nats drain timed out", slog.Duration("timeout", drainTimeout))
			nc.Close()
			return
		}
	}

	logger.Debug("nats connection drained")
}
