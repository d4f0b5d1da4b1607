package compiler

import (
	"testing"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/compd/internal/config"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(map[string]config.Compiler{
		"CSharp":      {Path: "csc", Args: []string{"-nologo"}},
		"visualbasic": {Path: "vbc"},
	})

	lang, err := r.Lookup("csharp")
	if err != nil {
		t.Fatalf("Lookup(csharp) error = %v", err)
	}
	if lang.Tag != "csharp" || lang.Path != "csc" || len(lang.Args) != 1 {
		t.Fatalf("Lookup(csharp) = %+v", lang)
	}

	if _, err := r.Lookup(" VisualBasic "); err != nil {
		t.Fatalf("Lookup is not case-insensitive: %v", err)
	}

	_, err = r.Lookup("cobol")
	if !errdefs.IsNotFound(err) {
		t.Fatalf("Lookup(cobol) error = %v, want not found", err)
	}
}

func TestRegistryTags(t *testing.T) {
	r := NewRegistry(map[string]config.Compiler{"vb": {Path: "vbc"}, "cs": {Path: "csc"}})
	tags := r.Tags()
	if len(tags) != 2 || tags[0] != "cs" || tags[1] != "vb" {
		t.Fatalf("Tags() = %v, want [cs vb]", tags)
	}
}
