package compiler

import (
	_ "crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

// Tracks the analyzer files the server has loaded.
//
// The first time a path is validated its content digest is recorded; the
// server keeps using that version for the rest of its life. Later requests
// that reference the same path are refused if the file on disk no longer
// matches, since the client would otherwise silently get stale analyzers.
//
// When a filesystem watcher is available, files are only rehashed after a
// change notification. Without one every validation rehashes.
type AnalyzerSet struct {
	mu      sync.Mutex
	loaded  map[string]digest.Digest // Digest recorded on first use.
	dirty   map[string]bool          // Paths changed since last verified.
	watcher *fsnotify.Watcher        // Nil when watching is unavailable.
	done    chan struct{}
}

// Creates an empty analyzer set and starts watching for changes.
func NewAnalyzerSet() *AnalyzerSet {
	a := &AnalyzerSet{
		loaded: make(map[string]digest.Digest),
		dirty:  make(map[string]bool),
		done:   make(chan struct{}),
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("analyzer watcher unavailable, rehashing on every request", "error", err)
		close(a.done)
		return a
	}

	a.watcher = w
	go a.watch()
	return a
}

// Stops watching files.
func (a *AnalyzerSet) Close() error {
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Close()
	<-a.done
	return err
}

// Checks every reference against the recorded digests.
//
// Relative references resolve against baseDir. The returned error lists the
// first analyzer that changed or could not be read.
func (a *AnalyzerSet) Validate(baseDir string, refs []string) error {
	for _, ref := range refs {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if err := a.validate(filepath.Clean(path)); err != nil {
			return err
		}
	}
	return nil
}

func (a *AnalyzerSet) validate(path string) error {
	a.mu.Lock()
	want, seen := a.loaded[path]
	clean := seen && a.watcher != nil && !a.dirty[path]
	a.mu.Unlock()

	if clean {
		return nil
	}

	got, err := digestFile(path)
	if err != nil {
		return errors.Wrapf(ErrAnalyzer, "%s: %v", path, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !seen {
		a.loaded[path] = got
		a.track(path)
		slog.Debug("analyzer loaded", "path", path, "digest", got)
		return nil
	}

	if got != want {
		return errors.Wrapf(ErrAnalyzer, "%s: loaded %s, found %s", path, want.Encoded()[:12], got.Encoded()[:12])
	}

	delete(a.dirty, path)
	a.track(path)
	return nil
}

// Starts watching path. Callers hold a.mu.
func (a *AnalyzerSet) track(path string) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Add(path); err != nil {
		// Without a watch the path must be rehashed every time.
		a.dirty[path] = true
	}
}

// Marks paths dirty as change notifications arrive.
func (a *AnalyzerSet) watch() {
	defer close(a.done)

	for {
		select {
		case ev, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			a.mu.Lock()
			if _, seen := a.loaded[ev.Name]; seen {
				a.dirty[ev.Name] = true
			}
			a.mu.Unlock()
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("analyzer watcher error", "error", err)
		}
	}
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.FromReader(f)
}

// Extracts analyzer references from a compiler argument vector.
//
// Recognizes /analyzer:, -analyzer:, /a: and -a: (case-insensitive) with
// comma- or semicolon-separated lists and optional quotes.
func AnalyzerReferences(args []string) []string {
	var refs []string
	for _, arg := range args {
		value, ok := optionValue(arg, "analyzer", "a")
		if !ok {
			continue
		}
		for _, ref := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' }) {
			ref = strings.Trim(strings.TrimSpace(ref), `"`)
			if ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Returns the value of a "/name:value" or "-name:value" option.
func optionValue(arg string, names ...string) (string, bool) {
	if len(arg) < 2 || (arg[0] != '/' && arg[0] != '-') {
		return "", false
	}
	name, value, ok := strings.Cut(arg[1:], ":")
	if !ok {
		return "", false
	}
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return value, true
		}
	}
	return "", false
}

// Whether a "/name" or "-name" switch is present.
func hasSwitch(args []string, name string) bool {
	for _, arg := range args {
		if len(arg) > 1 && (arg[0] == '/' || arg[0] == '-') && strings.EqualFold(arg[1:], name) {
			return true
		}
	}
	return false
}
