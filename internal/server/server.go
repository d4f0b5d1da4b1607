package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/compd/internal/paths"
	"github.com/pkg/errors"
)

// Server configuration.
type Config struct {
	SocketPath string  // Unix socket path. Empty uses the default.
	PIDFile    string  // PID file path. Empty uses the default.
	Handler    Handler // Executes build requests.
	Options            // Dispatcher settings.
}

// Build server bound to a Unix domain socket.
type Server struct {
	socketPath string
	pidFile    string
	handler    Handler
	opts       Options
}

// Creates a server. Nothing is opened until [Server.Run].
func New(cfg Config) *Server {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	pidFile := cfg.PIDFile
	if pidFile == "" {
		pidFile = paths.PIDFile()
	}

	return &Server{
		socketPath: socketPath,
		pidFile:    pidFile,
		handler:    cfg.Handler,
		opts:       cfg.Options,
	}
}

// Opens the socket, serves until the dispatcher stops, and cleans up.
//
// Returns an error only if the socket could not be opened.
func (s *Server) Run(ctx context.Context) (StopReason, error) {
	acceptor, err := Listen(s.socketPath)
	if err != nil {
		return 0, err
	}
	defer acceptor.Close()

	if err := writePID(s.pidFile); err != nil {
		slog.Warn("failed to write PID file", "path", s.pidFile, "error", err)
	}
	defer os.Remove(s.pidFile)

	slog.Info("server listening on socket", "path", acceptor.Path())

	opts := s.opts
	if opts.Listener == nil {
		opts.Listener = LogListener{}
	}

	return NewDispatcher(acceptor, s.handler, opts).Run(ctx), nil
}

// Writes the current PID so clients can tell whether a server is running.
func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, fmt.Appendf(nil, "%d\n", os.Getpid()), paths.DefaultFileMode))
}
