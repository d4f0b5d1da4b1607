package compiler

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Runs compilers as child processes of the server.
type ProcessHost struct {
	sdkDir    string
	analyzers *AnalyzerSet
}

// Creates a process host.
//
// An empty sdkDir resolves to the directory containing the server
// executable.
func NewProcessHost(sdkDir string, analyzers *AnalyzerSet) *ProcessHost {
	return &ProcessHost{sdkDir: sdkDir, analyzers: analyzers}
}

// Releases the analyzer watcher.
func (h *ProcessHost) Close() error {
	return h.analyzers.Close()
}

// Returns the configured SDK directory, or the executable's directory.
func (h *ProcessHost) ResolveSDKDirectory() (string, error) {
	if h.sdkDir != "" {
		return h.sdkDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "resolve sdk directory")
	}
	return filepath.Dir(exe), nil
}

// Delegates to the host's [AnalyzerSet].
func (h *ProcessHost) ValidateAnalyzers(baseDir string, refs []string) error {
	return h.analyzers.Validate(baseDir, refs)
}

// Runs the compiler and buffers its combined stdout and stderr.
//
// A compiler that exits non-zero is not an error; the code is returned with
// the output. Failing to start the compiler is an error. The context only
// carries request-scoped values; a started compilation always runs to
// completion.
func (h *ProcessHost) InvokeCompiler(ctx context.Context, inv Invocation) (int, string, error) {
	path := inv.Language.Path
	if filepath.Base(path) != path && !filepath.IsAbs(path) && inv.SDKDirectory != "" {
		path = filepath.Join(inv.SDKDirectory, path)
	}

	args := append(append([]string{}, inv.Language.Args...), inv.Arguments...)

	var out bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Dir = inv.CurrentDirectory
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.Env = os.Environ()
	if inv.LibraryDirectory != "" {
		cmd.Env = append(cmd.Env, "LIB="+inv.LibraryDirectory)
	}

	started := time.Now()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, "", errors.Wrapf(ErrCompiler, "%s: %v", inv.Language.Tag, err)
		}
	}

	code := cmd.ProcessState.ExitCode()
	slog.DebugContext(ctx, "compiler exited",
		"language", inv.Language.Tag,
		"path", path,
		"code", code,
		"duration", time.Since(started).Truncate(time.Millisecond),
	)
	return code, out.String(), nil
}
