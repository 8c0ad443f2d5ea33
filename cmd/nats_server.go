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
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// natsReadyTimeout bounds how long the embedded server may take to accept
// connections.
const natsReadyTimeout = 10 * time.Second

// natsLifecycle adapts an embedded server to cli.Lifecycle. The server is
// already running when the adapter is built.
type natsLifecycle struct {
	server *server.Server
}

func (n *natsLifecycle) Start() {}

func (n *natsLifecycle) Stop(_ context.Context) {
	n.server.Shutdown()
	n.server.WaitForShutdown()
}

// slogNATSLogger forwards nats-server log output to slog.
type slogNATSLogger struct {
	logger *slog.Logger
}

func (l *slogNATSLogger) Noticef(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogNATSLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *slogNATSLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *slogNATSLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *slogNATSLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l *slogNATSLogger) Tracef(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// newNATSServer builds and starts an embedded JetStream server from the
// nats.server configuration. The client token, when set, is required by
// the server as well.
func newNATSServer(
	log *slog.Logger,
) (*server.Server, error) {
	opts := &server.Options{
		ServerName:    "romusha",
		Host:          appConfig.NATS.Server.Host,
		Port:          appConfig.NATS.Server.Port,
		JetStream:     true,
		StoreDir:      appConfig.NATS.Server.StoreDir,
		Authorization: appConfig.NATS.Token,
		NoSigs:        true,
	}

	s, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	s.SetLoggerV2(&slogNATSLogger{logger: log}, appConfig.Debug, false, false)

	go s.Start()

	if !s.ReadyForConnections(natsReadyTimeout) {
		s.Shutdown()
		return nil, fmt.Errorf("nats server not ready after %s", natsReadyTimeout)
	}

	log.Info(
		"nats server ready",
		slog.String("url", s.ClientURL()),
		slog.String("store_dir", appConfig.NATS.Server.StoreDir),
	)

	return s, nil
}
