package compiler

import (
	"slices"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/compd/internal/config"
	"github.com/pkg/errors"
)

// A compiler the server can run.
type Language struct {
	Tag  string   // Normalized language tag.
	Path string   // Compiler executable.
	Args []string // Arguments placed before the request's arguments.
}

// Set of languages the server accepts, fixed at startup.
type Registry struct {
	languages map[string]Language
}

// Creates a registry from configured compilers.
func NewRegistry(compilers map[string]config.Compiler) *Registry {
	r := &Registry{languages: make(map[string]Language, len(compilers))}
	for tag, c := range compilers {
		tag = normalizeTag(tag)
		r.languages[tag] = Language{Tag: tag, Path: c.Path, Args: slices.Clone(c.Args)}
	}
	return r
}

// Returns the compiler registered for tag.
//
// Tags compare case-insensitively. Unknown tags return an error classified
// as not found.
func (r *Registry) Lookup(tag string) (Language, error) {
	lang, ok := r.languages[normalizeTag(tag)]
	if !ok {
		return Language{}, errors.Wrapf(errdefs.ErrNotFound, "language %q", tag)
	}
	return lang, nil
}

// Returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.languages))
	for tag := range r.languages {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
