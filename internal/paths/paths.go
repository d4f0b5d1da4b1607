package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cruciblehq/compd/internal"
)

const (

	// Permission mode for directories the server creates.
	DefaultDirMode os.FileMode = 0700

	// Permission mode for files the server writes.
	DefaultFileMode os.FileMode = 0600
)

// Directory holding the socket and PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/compd
//	macOS:   ~/Library/Caches/compd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Default Unix socket the server listens on.
func Socket() string {
	return filepath.Join(Runtime(), internal.Name+".sock")
}

// Default PID file written while the server runs.
func PIDFile() string {
	return filepath.Join(Runtime(), internal.Name+".pid")
}

// Default configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/compd/config.yaml
//	macOS:   ~/Library/Application Support/compd/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, internal.Name, "config.yaml")
}
