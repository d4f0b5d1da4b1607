package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, KeepAlive(DefaultKeepAlive), cfg.KeepAlive)
	assert.Equal(t, DefaultGCDelay, cfg.GCDelay)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
keepAlive: 90s
gcDelay: 5s
sdkDirectory: /opt/sdk
compilers:
  csharp:
    path: /opt/sdk/csc
    args: ["-nologo"]
`)
	require.NoError(t, os.WriteFile(path, data, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KeepAlive(90*time.Second), cfg.KeepAlive)
	assert.Equal(t, 5*time.Second, cfg.GCDelay)
	assert.Equal(t, "/opt/sdk", cfg.SDKDirectory)
	assert.Equal(t, map[string]Compiler{
		"csharp": {Path: "/opt/sdk/csc", Args: []string{"-nologo"}},
	}, cfg.Compilers)
}

func TestParseInfiniteKeepAlive(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Parse([]byte("keepAlive: infinite\n"), cfg))
	assert.Equal(t, KeepAlive(protocol.InfiniteKeepAlive), cfg.KeepAlive)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad keep-alive", data: "keepAlive: soon\n"},
		{name: "negative keep-alive", data: "keepAlive: -5s\n"},
		{name: "negative gc delay", data: "gcDelay: -1s\n"},
		{name: "compiler without path", data: "compilers:\n  csharp: {}\n"},
		{name: "not yaml", data: "compilers: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.data), Defaults())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig) || errors.Is(err, ErrLoading), "got %v", err)
		})
	}
}

func TestParseKeepAlive(t *testing.T) {
	v, err := ParseKeepAlive("Infinite")
	require.NoError(t, err)
	assert.Equal(t, KeepAlive(protocol.InfiniteKeepAlive), v)

	v, err = ParseKeepAlive("2m30s")
	require.NoError(t, err)
	assert.Equal(t, KeepAlive(150*time.Second), v)

	_, err = ParseKeepAlive("forever")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseZeroKeepAlive(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Parse([]byte("keepAlive: 0s\n"), cfg))
	assert.Equal(t, KeepAlive(0), cfg.KeepAlive, "an explicit zero is kept")
	assert.Equal(t, DefaultGCDelay, cfg.GCDelay, "absent keys keep their defaults")
}

func TestParseKeepAliveRejectsNegative(t *testing.T) {
	for _, s := range []string{"-1ns", "-1s"} {
		_, err := ParseKeepAlive(s)
		assert.ErrorIs(t, err, ErrConfig, s)
	}

	err := Parse([]byte("keepAlive: -1ns\n"), Defaults())
	assert.Error(t, err)
}
