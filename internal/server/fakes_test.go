package server

import (
	"context"
	"sync"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

// Connection with scripted behavior.
type fakeConn struct {
	cmd          protocol.Command
	req          *protocol.BuildRequest
	handshakeErr error
	readErr      error
	writeErr     error

	mu       sync.Mutex
	written  []protocol.BuildResponse
	closed   bool
	wroteAny chan struct{}
}

func newFakeConn(req *protocol.BuildRequest) *fakeConn {
	return &fakeConn{cmd: protocol.CmdBuild, req: req, wroteAny: make(chan struct{}, 1)}
}

func (c *fakeConn) Handshake(ctx context.Context) error { return c.handshakeErr }

func (c *fakeConn) ReadRequest(ctx context.Context) (protocol.Command, *protocol.BuildRequest, error) {
	if c.readErr != nil {
		return "", nil, c.readErr
	}
	return c.cmd, c.req, nil
}

func (c *fakeConn) WriteResponse(ctx context.Context, resp protocol.BuildResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, resp)
	select {
	case c.wroteAny <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) responses() []protocol.BuildResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.BuildResponse(nil), c.written...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Hands out connections pushed by the test.
type fakeAcceptor struct {
	conns     chan Conn
	errs      chan error
	cancelled chan struct{} // Receives once per Accept aborted by its context.
}

func newFakeAcceptor() *fakeAcceptor {
	return &fakeAcceptor{
		conns:     make(chan Conn),
		errs:      make(chan error),
		cancelled: make(chan struct{}, 16),
	}
}

func (a *fakeAcceptor) Accept(ctx context.Context) (Conn, error) {
	select {
	case c := <-a.conns:
		return c, nil
	case err := <-a.errs:
		return nil, err
	case <-ctx.Done():
		a.cancelled <- struct{}{}
		return nil, ctx.Err()
	}
}

// Handler built from a function.
type handlerFunc func(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error)

func (f handlerFunc) Handle(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error) {
	return f(ctx, req)
}

// Handler that completes successfully.
var okHandler = handlerFunc(func(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error) {
	return protocol.Completed{ReturnCode: 0, Output: "ok"}, nil
})

// Handler whose requests block until released by name.
//
// The first argument of each request names it.
type gatedHandler struct {
	started chan string
	mu      sync.Mutex
	gates   map[string]chan struct{}
}

func newGatedHandler() *gatedHandler {
	return &gatedHandler{started: make(chan string, 16), gates: make(map[string]chan struct{})}
}

func (h *gatedHandler) gate(name string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.gates[name]
	if !ok {
		g = make(chan struct{})
		h.gates[name] = g
	}
	return g
}

func (h *gatedHandler) release(name string) { close(h.gate(name)) }

func (h *gatedHandler) Handle(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error) {
	name := req.Arguments[0]
	h.started <- name
	<-h.gate(name)
	return protocol.Completed{Output: name}, nil
}

// Records telemetry.
type recordingListener struct {
	mu         sync.Mutex
	keepAlives []time.Duration
	batches    []int
}

func (l *recordingListener) KeepAliveChanged(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keepAlives = append(l.keepAlives, d)
}

func (l *recordingListener) ConnectionsProcessed(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, n)
}

func (l *recordingListener) processed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, n := range l.batches {
		total += n
	}
	return total
}

func (l *recordingListener) lastKeepAlive() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.keepAlives) == 0 {
		return 0, false
	}
	return l.keepAlives[len(l.keepAlives)-1], true
}

// Fake clock that reports every timer the dispatcher arms.
type recordingClock struct {
	*testingclock.FakeClock
	timers chan time.Duration
}

func newRecordingClock() *recordingClock {
	return &recordingClock{
		FakeClock: testingclock.NewFakeClock(time.Unix(0, 0)),
		timers:    make(chan time.Duration, 64),
	}
}

func (c *recordingClock) NewTimer(d time.Duration) clock.Timer {
	t := c.FakeClock.NewTimer(d)
	c.timers <- d
	return t
}

// Counts forced collections.
type collector struct {
	mu sync.Mutex
	n  int
}

func (c *collector) collect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
