// Package compiler executes build requests on behalf of the server.
//
// A [RequestHandler] turns a decoded request into a response. The language
// tag selects a compiler from a [Registry]; unknown tags produce
// [protocol.BadLanguage] without touching the host. Analyzer references in
// the argument vector are checked with [Host.ValidateAnalyzers]; a failed
// check produces [protocol.BadAnalyzer]. Everything else is passed to
// [Host.InvokeCompiler] and answered with [protocol.Completed] carrying the
// return code and the complete captured output.
//
// [ProcessHost] is the host used by the daemon. It runs each configured
// compiler as a child process and tracks analyzer files with an
// [AnalyzerSet], which refuses analyzers whose content changed since the
// server first saw them.
//
// Example usage:
//
//	reg := compiler.NewRegistry(cfg.Compilers)
//	host := compiler.NewProcessHost(cfg.SDKDirectory, compiler.NewAnalyzerSet())
//	defer host.Close()
//
//	resp, err := compiler.NewRequestHandler(reg, host).Handle(ctx, req)
package compiler
