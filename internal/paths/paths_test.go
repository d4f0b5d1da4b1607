package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRuntimeFilesShareDirectory(t *testing.T) {
	dir := Runtime()
	if filepath.Dir(Socket()) != dir {
		t.Fatalf("Socket() = %q, want it under %q", Socket(), dir)
	}
	if filepath.Dir(PIDFile()) != dir {
		t.Fatalf("PIDFile() = %q, want it under %q", PIDFile(), dir)
	}
	if !strings.HasSuffix(Socket(), ".sock") {
		t.Fatalf("Socket() = %q, want .sock suffix", Socket())
	}
}

func TestConfigFile(t *testing.T) {
	if filepath.Base(ConfigFile()) != "config.yaml" {
		t.Fatalf("ConfigFile() = %q, want config.yaml", ConfigFile())
	}
}
