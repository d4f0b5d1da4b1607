package server

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/compd/internal/paths"
	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/pkg/errors"
)

const (

	// How long a client has to send its request after connecting.
	DefaultReadTimeout = time.Minute

	// How long writing a response may take.
	writeTimeout = 30 * time.Second

	// File mode applied to the socket. Only the owner may connect.
	socketMode = 0600

	// How long to wait when probing for a server already on the socket.
	dialTimeout = time.Second
)

// Accepts connections on a Unix domain socket.
type SocketAcceptor struct {
	path        string
	listener    *net.UnixListener
	readTimeout time.Duration
}

// Creates the socket at path, replacing any stale socket from a previous
// run, and restricts it to the current user.
//
// If another server still answers on path, returns an error wrapping
// [errdefs.ErrAlreadyExists] and leaves that server's socket alone.
func Listen(path string) (*SocketAcceptor, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, errors.Wrapf(ErrServer, "create socket directory: %v", err)
	}

	if live(path) {
		return nil, errors.Wrapf(errdefs.ErrAlreadyExists, "a server is already listening on %s", path)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrServer, "remove stale socket %s: %v", path, err)
	}

	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, errors.Wrapf(ErrServer, "listen on %s: %v", path, err)
	}
	listener.SetUnlinkOnClose(true)

	if err := os.Chmod(path, socketMode); err != nil {
		listener.Close()
		return nil, errors.Wrapf(ErrServer, "chmod socket %s: %v", path, err)
	}

	return &SocketAcceptor{path: path, listener: listener, readTimeout: DefaultReadTimeout}, nil
}

// Whether a server accepts connections on path.
func live(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Path of the socket file.
func (a *SocketAcceptor) Path() string {
	return a.path
}

// Blocks until a client connects or ctx is done.
func (a *SocketAcceptor) Accept(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.listener.SetDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		a.listener.SetDeadline(time.Now())
	})
	defer stop()

	conn, err := a.listener.AcceptUnix()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WithStack(err)
	}

	return &socketConn{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: a.readTimeout,
	}, nil
}

// Closes the listener and removes the socket file.
func (a *SocketAcceptor) Close() error {
	return a.listener.Close()
}

// Newline-delimited JSON exchange over a Unix socket.
type socketConn struct {
	conn        *net.UnixConn
	reader      *bufio.Reader
	readTimeout time.Duration
}

// Verifies the peer runs as the same user as the server.
func (c *socketConn) Handshake(ctx context.Context) error {
	return checkPeer(c.conn)
}

// Reads one request envelope within the read timeout.
func (c *socketConn) ReadRequest(ctx context.Context) (protocol.Command, *protocol.BuildRequest, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return "", nil, errors.WithStack(err)
	}

	env, err := protocol.ReadMessage(c.reader)
	if err != nil {
		return "", nil, err
	}
	return protocol.DecodeRequest(env)
}

// Writes the response envelope. A peer that closed its end yields an error
// wrapping [ErrPeerGone].
func (c *socketConn) WriteResponse(ctx context.Context, resp protocol.BuildResponse) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return errors.WithStack(err)
	}

	err := protocol.WriteResponse(c.conn, resp)
	if err != nil && peerGone(err) {
		return errors.Wrapf(ErrPeerGone, "%v: %v", errdefs.ErrUnavailable, err)
	}
	return err
}

func (c *socketConn) Close() error {
	return c.conn.Close()
}

// Whether a write error means the other end is no longer reading.
func peerGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed)
}
