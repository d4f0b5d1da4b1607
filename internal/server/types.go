package server

import (
	"context"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
)

// Why a connection worker finished.
type CompletionReason int

const (
	CompilationNotStarted CompletionReason = iota // No request was served.
	CompilationCompleted                          // A response was written, including rejections.
	ClientDisconnect                              // The client vanished before the response was written.
	ShutdownRequested                             // The client asked the server to exit.
)

func (r CompletionReason) String() string {
	switch r {
	case CompilationNotStarted:
		return "not-started"
	case CompilationCompleted:
		return "completed"
	case ClientDisconnect:
		return "client-disconnect"
	case ShutdownRequested:
		return "shutdown-requested"
	default:
		return "unknown"
	}
}

// Outcome of serving one connection.
type ConnectionData struct {
	Reason    CompletionReason
	KeepAlive *time.Duration // Keep-alive suggested by the request, if any.
}

// Source of inbound connections.
type Acceptor interface {

	// Blocks until a client connects. Returns ctx.Err() once ctx is done.
	Accept(ctx context.Context) (Conn, error)
}

// One accepted client connection carrying a single request and response.
type Conn interface {

	// Establishes that the peer may use the server.
	Handshake(ctx context.Context) error

	// Reads the client's request. Errors wrapping [protocol.ErrMalformed]
	// mean the client is still there but sent something undecodable.
	ReadRequest(ctx context.Context) (protocol.Command, *protocol.BuildRequest, error)

	// Writes the response. Failure means the client can no longer be reached.
	WriteResponse(ctx context.Context, resp protocol.BuildResponse) error

	Close() error
}

// Executes build requests.
type Handler interface {
	Handle(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error)
}

// Receives server telemetry.
//
// Calls are made from the dispatcher's loop and must not block.
type Listener interface {

	// The keep-alive changed after a batch of connections completed.
	KeepAliveChanged(keepAlive time.Duration)

	// A batch of count connections completed.
	ConnectionsProcessed(count int)
}
