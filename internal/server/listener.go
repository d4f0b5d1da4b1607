package server

import (
	"log/slog"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
)

// Reports server telemetry through a structured logger.
type LogListener struct {
	Logger *slog.Logger // Nil uses slog.Default().
}

// Logs the new keep-alive.
func (l LogListener) KeepAliveChanged(keepAlive time.Duration) {
	l.logger().Info("keep-alive updated", "keepAlive", protocol.FormatKeepAlive(keepAlive))
}

// Logs a completed batch.
func (l LogListener) ConnectionsProcessed(count int) {
	l.logger().Info("connections processed", "count", count)
}

func (l LogListener) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

type nopListener struct{}

func (nopListener) KeepAliveChanged(time.Duration) {}
func (nopListener) ConnectionsProcessed(int)       {}
