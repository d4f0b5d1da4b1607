package compiler

import "context"

//go:generate mockgen -destination=mocks/mock_host.go -package=mocks github.com/cruciblehq/compd/internal/compiler Host

// Environment a compilation runs in.
type Host interface {

	// Returns the directory holding the compiler SDK.
	ResolveSDKDirectory() (string, error)

	// Checks that the analyzers referenced by a request are the ones the
	// server loaded. Relative references resolve against baseDir. A nil
	// error means every analyzer is consistent.
	ValidateAnalyzers(baseDir string, refs []string) error

	// Runs a compiler to completion and returns its exit code and entire
	// output. The context is never used to abort a running compilation.
	InvokeCompiler(ctx context.Context, inv Invocation) (int, string, error)
}

// A single compiler run.
type Invocation struct {
	Language         Language // Compiler to run.
	Arguments        []string // Arguments from the request.
	CurrentDirectory string   // Working directory for the compiler.
	LibraryDirectory string   // Library search path, exported as LIB.
	SDKDirectory     string   // SDK directory; relative compiler paths resolve here.
}
