// Package server implements the persistent build server.
//
// A [Dispatcher] owns a single coordinating loop. The loop keeps at most one
// accept operation pending on its [Acceptor], starts a connection worker for
// every accepted [Conn], and folds each worker's [ConnectionData] back into
// state that only the loop touches: the set of in-flight connections and the
// current keep-alive. While nothing is in flight the loop arms an idle timer
// (exit when it fires) and a garbage-collection timer (collect, then restart
// the idle countdown).
//
// Workers never fail. Every outcome, including a panicking handler, becomes a
// response to the client and a completion reason for the loop. A client that
// vanishes before its response is written, or that asks the server to shut
// down, stops the loop from accepting; connections already in flight are
// drained before [Dispatcher.Run] returns.
//
// The daemon wires the dispatcher to a Unix domain socket through [Server]:
//
//	srv := server.New(server.Config{
//	    SocketPath: paths.Socket(),
//	    Handler:    compiler.NewRequestHandler(reg, host),
//	    Options:    server.Options{KeepAlive: 10 * time.Minute},
//	})
//
//	reason, err := srv.Run(ctx)
package server
