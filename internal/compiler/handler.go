package compiler

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/compd/internal/protocol"
)

// Serves build requests with a registry of compilers and a host.
type RequestHandler struct {
	registry *Registry
	host     Host
}

// Creates a request handler.
func NewRequestHandler(registry *Registry, host Host) *RequestHandler {
	return &RequestHandler{registry: registry, host: host}
}

// Executes one build request.
//
// Unknown languages and inconsistent analyzers are answered without invoking
// the compiler. An error is returned only when the compiler could not be run
// at all; callers turn it into a failed [protocol.Completed].
func (h *RequestHandler) Handle(ctx context.Context, req *protocol.BuildRequest) (protocol.BuildResponse, error) {
	lang, err := h.registry.Lookup(req.Language)
	if err != nil {
		slog.InfoContext(ctx, "rejecting request", "language", req.Language, "error", err)
		return protocol.BadLanguage{}, nil
	}

	if refs := AnalyzerReferences(req.Arguments); len(refs) > 0 {
		if err := h.host.ValidateAnalyzers(req.CurrentDirectory, refs); err != nil {
			slog.InfoContext(ctx, "analyzer check failed", "error", err)
			return protocol.BadAnalyzer{Details: err.Error()}, nil
		}
	}

	sdkDir, err := h.host.ResolveSDKDirectory()
	if err != nil {
		return nil, err
	}

	code, output, err := h.host.InvokeCompiler(ctx, Invocation{
		Language:         lang,
		Arguments:        req.Arguments,
		CurrentDirectory: req.CurrentDirectory,
		LibraryDirectory: req.LibraryDirectory,
		SDKDirectory:     sdkDir,
	})
	if err != nil {
		return nil, err
	}

	return protocol.Completed{
		ReturnCode: code,
		UTF8Output: hasSwitch(req.Arguments, "utf8output"),
		Output:     output,
	}, nil
}
