package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

// Idle delay before a forced collection when [Options.GCDelay] is zero.
const defaultGCDelay = 30 * time.Second

// Why [Dispatcher.Run] returned.
type StopReason int

const (
	StopIdle              StopReason = iota // Keep-alive elapsed with nothing in flight.
	StopCancelled                           // The run context was cancelled.
	StopDisconnect                          // A client vanished mid-request.
	StopShutdownRequested                   // A client asked the server to exit.
)

func (r StopReason) String() string {
	switch r {
	case StopIdle:
		return "idle"
	case StopCancelled:
		return "cancelled"
	case StopDisconnect:
		return "client-disconnect"
	case StopShutdownRequested:
		return "shutdown-requested"
	default:
		return "unknown"
	}
}

// Dispatcher settings.
type Options struct {
	KeepAlive   time.Duration   // Default keep-alive. [protocol.InfiniteKeepAlive] never idles out.
	GCDelay     time.Duration   // Idle delay before a forced collection. Zero uses 30s.
	Listener    Listener        // Telemetry sink. Nil discards.
	Clock       clock.Clock     // Time source for timers. Nil uses the real clock.
	Collect     func()          // Forced collection. Nil uses debug.FreeOSMemory.
	AcceptRetry backoff.BackOff // Delay between failed accepts. Nil uses exponential backoff.
}

// Accepts connections and runs a worker for each until told to stop.
type Dispatcher struct {
	acceptor  Acceptor
	handler   Handler
	keepAlive time.Duration
	gcDelay   time.Duration
	listener  Listener
	clock     clock.Clock
	collect   func()
	retry     backoff.BackOff
}

// Creates a dispatcher.
func NewDispatcher(acceptor Acceptor, handler Handler, opts Options) *Dispatcher {
	d := &Dispatcher{
		acceptor:  acceptor,
		handler:   handler,
		keepAlive: opts.KeepAlive,
		gcDelay:   opts.GCDelay,
		listener:  opts.Listener,
		clock:     opts.Clock,
		collect:   opts.Collect,
		retry:     opts.AcceptRetry,
	}
	if d.gcDelay <= 0 {
		d.gcDelay = defaultGCDelay
	}
	if d.listener == nil {
		d.listener = nopListener{}
	}
	if d.clock == nil {
		d.clock = clock.RealClock{}
	}
	if d.collect == nil {
		d.collect = debug.FreeOSMemory
	}
	if d.retry == nil {
		d.retry = newAcceptBackoff()
	}
	return d
}

func newAcceptBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return b
}

// Runs the dispatch loop until a shutdown condition, then drains.
//
// The loop stops when the keep-alive elapses with nothing in flight, when ctx
// is cancelled, or when a completed connection reports a disconnected client
// or a shutdown request. In every case pending accepts are cancelled and all
// in-flight connections finish before Run returns. Compilations never see ctx
// cancellation.
func (d *Dispatcher) Run(ctx context.Context) StopReason {
	l := &loop{
		Dispatcher:       d,
		workCtx:          context.WithoutCancel(ctx),
		keepAlive:        d.keepAlive,
		keepAliveDefault: true,
		inFlight:         make(map[string]struct{}),
		results:          make(chan workerResult),
	}

	slog.Info("dispatcher started",
		"keepAlive", protocol.FormatKeepAlive(l.keepAlive),
		"gcDelay", d.gcDelay,
	)

	l.listen(ctx)
	l.armIdle()
	l.armGC()

	reason := l.run(ctx)

	slog.Info("dispatcher stopping", "reason", reason, "inFlight", len(l.inFlight))

	l.stopAccepting()
	l.stopTimers()
	l.drain()

	slog.Info("dispatcher stopped", "reason", reason)
	return reason
}

// Value sent by a worker when its connection is done.
type workerResult struct {
	id   string
	data ConnectionData
}

// Value sent by the pending accept operation.
type acceptResult struct {
	conn Conn
	err  error
}

// State of one [Dispatcher.Run]. Only the goroutine executing run touches it.
type loop struct {
	*Dispatcher

	workCtx          context.Context // Never cancelled; handed to workers.
	keepAlive        time.Duration
	keepAliveDefault bool // Whether keepAlive is still the configured default.
	inFlight         map[string]struct{}
	results          chan workerResult

	accepted     chan acceptResult // Nil when no accept is pending.
	cancelAccept context.CancelFunc
	retryDelay   time.Duration // Delay before the next accept after a failure.

	idle clock.Timer // Nil when not armed.
	gc   clock.Timer // Nil when not armed.
}

func (l *loop) run(ctx context.Context) StopReason {
	for {
		select {
		case <-ctx.Done():
			return StopCancelled

		case r := <-l.accepted:
			l.accepted = nil
			l.onAccepted(ctx, r)

		case <-timerC(l.idle):
			l.idle = nil
			slog.Info("keep-alive elapsed with no connections", "keepAlive", protocol.FormatKeepAlive(l.keepAlive))
			return StopIdle

		case <-timerC(l.gc):
			l.gc = nil
			l.onGC()

		case r := <-l.results:
			if reason, stop := l.onCompleted(l.collectBatch(r)); stop {
				return reason
			}
		}
	}
}

// Arms the single pending accept operation.
func (l *loop) listen(ctx context.Context) {
	actx, cancel := context.WithCancel(ctx)
	ch := make(chan acceptResult, 1)
	delay := l.retryDelay

	go func() {
		if delay > 0 {
			select {
			case <-l.clock.After(delay):
			case <-actx.Done():
				ch <- acceptResult{err: actx.Err()}
				return
			}
		}
		conn, err := l.acceptor.Accept(actx)
		ch <- acceptResult{conn: conn, err: err}
	}()

	l.accepted = ch
	l.cancelAccept = cancel
}

func (l *loop) onAccepted(ctx context.Context, r acceptResult) {
	l.cancelAccept()

	if r.err != nil {
		if ctx.Err() != nil {
			return // The ctx.Done case ends the loop.
		}
		l.retryDelay = l.retry.NextBackOff()
		if l.retryDelay == backoff.Stop {
			l.retryDelay = time.Second
		}
		slog.Warn("accept failed", "error", r.err, "retryIn", l.retryDelay)
		l.listen(ctx)
		return
	}

	l.retry.Reset()
	l.retryDelay = 0

	l.stopTimers()
	l.spawn(r.conn)
	l.listen(ctx)
}

// Starts a worker for conn and records it as in flight.
func (l *loop) spawn(conn Conn) {
	id := uuid.NewString()
	l.inFlight[id] = struct{}{}

	log := slog.With("conn", id)
	log.Debug("connection accepted", "inFlight", len(l.inFlight))

	go func() {
		data := serveConnection(l.workCtx, conn, l.handler, log)
		l.results <- workerResult{id: id, data: data}
	}()
}

// Returns first plus every other result that is already waiting.
func (l *loop) collectBatch(first workerResult) []workerResult {
	batch := []workerResult{first}
	for {
		select {
		case r := <-l.results:
			batch = append(batch, r)
		default:
			return batch
		}
	}
}

// Folds completed connections into the loop state.
//
// Returns stop == true when a completion demands shutdown. Otherwise, if
// nothing remains in flight, the idle and collection timers are armed.
func (l *loop) onCompleted(batch []workerResult) (reason StopReason, stop bool) {
	if len(batch) == 0 {
		return 0, false
	}

	previous := l.keepAlive
	for _, r := range batch {
		delete(l.inFlight, r.id)
		l.suggestKeepAlive(r.data.KeepAlive)

		switch r.data.Reason {
		case ClientDisconnect:
			if !stop {
				reason, stop = StopDisconnect, true
			}
		case ShutdownRequested:
			if !stop {
				reason, stop = StopShutdownRequested, true
			}
		}
	}

	if l.keepAlive != previous {
		slog.Debug("keep-alive changed", "keepAlive", protocol.FormatKeepAlive(l.keepAlive))
		l.listener.KeepAliveChanged(l.keepAlive)
	}
	l.listener.ConnectionsProcessed(len(batch))

	if stop {
		return reason, true
	}

	if len(l.inFlight) == 0 {
		l.armIdle()
		l.armGC()
	}
	return 0, false
}

// Widens the keep-alive with a client suggestion.
//
// The first suggestion replaces the configured default outright. After that
// only strictly longer suggestions are taken, so the value never shrinks.
func (l *loop) suggestKeepAlive(suggested *time.Duration) {
	if suggested == nil {
		return
	}
	if l.keepAliveDefault || protocol.LongerKeepAlive(*suggested, l.keepAlive) {
		l.keepAlive = *suggested
		l.keepAliveDefault = false
	}
}

// Collects garbage and restarts the idle countdown.
func (l *loop) onGC() {
	started := time.Now()
	l.collect()
	slog.Debug("forced garbage collection", "duration", time.Since(started).Truncate(time.Microsecond))

	if l.idle != nil {
		l.idle.Stop()
		l.idle = nil
	}
	l.armIdle()
}

func (l *loop) armIdle() {
	if l.keepAlive == protocol.InfiniteKeepAlive || l.idle != nil {
		return
	}
	l.idle = l.clock.NewTimer(l.keepAlive)
}

func (l *loop) armGC() {
	if l.gc != nil {
		return
	}
	l.gc = l.clock.NewTimer(l.gcDelay)
}

func (l *loop) stopTimers() {
	if l.idle != nil {
		l.idle.Stop()
		l.idle = nil
	}
	if l.gc != nil {
		l.gc.Stop()
		l.gc = nil
	}
}

// Cancels the pending accept. A connection that slipped through is closed.
func (l *loop) stopAccepting() {
	if l.accepted == nil {
		return
	}
	l.cancelAccept()

	ch := l.accepted
	l.accepted = nil
	go func() {
		if r := <-ch; r.conn != nil {
			r.conn.Close()
		}
	}()
}

// Waits for every in-flight worker. Their outcomes no longer matter.
func (l *loop) drain() {
	if len(l.inFlight) > 0 {
		slog.Info("waiting for in-flight connections", "count", len(l.inFlight))
	}
	for len(l.inFlight) > 0 {
		r := <-l.results
		delete(l.inFlight, r.id)
	}
}

// Returns the timer's channel, or nil for a timer that is not armed.
func timerC(t clock.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C()
}
