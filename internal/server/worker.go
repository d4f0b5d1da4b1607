package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/pkg/errors"
)

// Serves one connection from handshake to response and classifies the result.
//
// Never panics and never returns an error; every failure is folded into the
// returned [ConnectionData]. The connection is always closed.
func serveConnection(ctx context.Context, conn Conn, handler Handler, log *slog.Logger) (data ConnectionData) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Error("connection worker panicked", "panic", r, "stack", string(debug.Stack()))
			data.Reason = CompilationNotStarted
		}
	}()

	if err := conn.Handshake(ctx); err != nil {
		log.Warn("handshake failed", "error", err)
		return ConnectionData{Reason: CompilationNotStarted}
	}

	cmd, req, err := conn.ReadRequest(ctx)
	if err != nil {
		if errors.Is(err, protocol.ErrMalformed) {
			log.Warn("rejecting malformed request", "error", err)
			if err := conn.WriteResponse(ctx, protocol.Rejected{Reason: err.Error()}); err != nil {
				log.Debug("failed to write rejection", "error", err)
			}
		} else {
			log.Debug("no request received", "error", err)
		}
		return ConnectionData{Reason: CompilationNotStarted}
	}

	if cmd == protocol.CmdShutdown {
		log.Info("shutdown requested by client")
		if err := conn.WriteResponse(ctx, protocol.Shutdown{ServerPID: os.Getpid()}); err != nil {
			log.Debug("failed to acknowledge shutdown", "error", err)
		}
		return ConnectionData{Reason: ShutdownRequested}
	}

	data.KeepAlive = requestedKeepAlive(req, log)

	log.Info("build request received",
		"language", req.Language,
		"cwd", req.CurrentDirectory,
		"args", len(req.Arguments),
	)

	started := time.Now()
	resp := runHandler(ctx, handler, req, log)

	if err := conn.WriteResponse(ctx, resp); err != nil {
		log.Warn("client disconnected before response was written", "error", err)
		data.Reason = ClientDisconnect
		return data
	}

	log.Info("build request served",
		"response", resp.Command(),
		"duration", time.Since(started).Truncate(time.Millisecond),
	)
	data.Reason = CompilationCompleted
	return data
}

// Calls the handler, converting errors and panics into a failed compilation.
func runHandler(ctx context.Context, handler Handler, req *protocol.BuildRequest, log *slog.Logger) (resp protocol.BuildResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("request handler panicked", "panic", r, "stack", string(debug.Stack()))
			resp = failedCompilation(fmt.Errorf("%v", r))
		}
	}()

	resp, err := handler.Handle(ctx, req)
	if err != nil {
		log.Error("request handler failed", "error", err)
		return failedCompilation(err)
	}
	if resp == nil {
		return failedCompilation(errors.New("request handler returned no response"))
	}
	return resp
}

func failedCompilation(err error) protocol.Completed {
	return protocol.Completed{
		ReturnCode: 1,
		Output:     fmt.Sprintf("error: the build server failed to run the compiler: %v\n", err),
	}
}

// Returns the request's keep-alive suggestion, ignoring invalid values.
func requestedKeepAlive(req *protocol.BuildRequest, log *slog.Logger) *time.Duration {
	d, ok, err := protocol.ParseKeepAlive(req.KeepAlive)
	if err != nil {
		log.Warn("ignoring keep-alive", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &d
}
