package config

import (
	"os"
	"strings"
	"time"

	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (

	// Idle time before the server exits when no client suggested otherwise.
	DefaultKeepAlive = 10 * time.Minute

	// Idle time before the server forces a garbage collection.
	DefaultGCDelay = 30 * time.Second
)

// Server configuration.
type Config struct {
	Socket       string              `yaml:"socket"`       // Unix socket path. Empty uses the XDG default.
	KeepAlive    KeepAlive           `yaml:"keepAlive"`    // Default keep-alive.
	GCDelay      time.Duration       `yaml:"gcDelay"`      // Idle delay before a forced collection.
	SDKDirectory string              `yaml:"sdkDirectory"` // Directory holding the compiler SDK.
	Compilers    map[string]Compiler `yaml:"compilers"`    // Compilers keyed by language tag.
}

// One registered compiler.
type Compiler struct {
	Path string   `yaml:"path"` // Executable, absolute or looked up in PATH.
	Args []string `yaml:"args"` // Arguments placed before the request's arguments.
}

// Keep-alive duration that also accepts "infinite".
type KeepAlive time.Duration

// Decodes a Go duration string or "infinite".
func (k *KeepAlive) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrapf(ErrConfig, "line %d: keepAlive must be a scalar", node.Line)
	}
	v, err := ParseKeepAlive(node.Value)
	if err != nil {
		return errors.WithMessagef(err, "line %d", node.Line)
	}
	*k = v
	return nil
}

// Parses a Go duration string or "infinite".
//
// Negative durations are rejected; only the literal "infinite" yields
// [protocol.InfiniteKeepAlive].
func ParseKeepAlive(s string) (KeepAlive, error) {
	if strings.EqualFold(s, "infinite") {
		return KeepAlive(protocol.InfiniteKeepAlive), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(ErrConfig, "keepAlive: %v", err)
	}
	if d < 0 {
		return 0, errors.Wrapf(ErrConfig, "keepAlive %s is negative; use \"infinite\" to never exit", d)
	}
	return KeepAlive(d), nil
}

// Encodes the keep-alive the way [KeepAlive.UnmarshalYAML] reads it.
func (k KeepAlive) MarshalYAML() (any, error) {
	return protocol.FormatKeepAlive(time.Duration(k)), nil
}

// Returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		KeepAlive: KeepAlive(DefaultKeepAlive),
		GCDelay:   DefaultGCDelay,
		Compilers: map[string]Compiler{
			"csharp":      {Path: "csc"},
			"visualbasic": {Path: "vbc"},
		},
	}
}

// Loads the configuration file at path over [Defaults].
//
// A missing file is not an error and yields the defaults. Compilers listed in
// the file replace the default compiler set entirely.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(ErrLoading, "%s: %v", path, err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

// Layout of the configuration file. Pointer fields tell an explicit zero
// apart from an absent key.
type fileConfig struct {
	Socket       string              `yaml:"socket"`
	KeepAlive    *KeepAlive          `yaml:"keepAlive"`
	GCDelay      *time.Duration      `yaml:"gcDelay"`
	SDKDirectory string              `yaml:"sdkDirectory"`
	Compilers    map[string]Compiler `yaml:"compilers"`
}

// Decodes YAML data into cfg and validates the result.
//
// Keys present in data replace the values in cfg; absent keys leave them
// untouched.
func Parse(data []byte, cfg *Config) error {
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(ErrLoading, err.Error())
	}

	if file.Socket != "" {
		cfg.Socket = file.Socket
	}
	if file.KeepAlive != nil {
		cfg.KeepAlive = *file.KeepAlive
	}
	if file.GCDelay != nil {
		cfg.GCDelay = *file.GCDelay
	}
	if file.SDKDirectory != "" {
		cfg.SDKDirectory = file.SDKDirectory
	}
	if len(file.Compilers) > 0 {
		cfg.Compilers = file.Compilers
	}

	return cfg.Validate()
}

// Checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if d := time.Duration(c.KeepAlive); d < 0 && d != protocol.InfiniteKeepAlive {
		return errors.Wrapf(ErrConfig, "keepAlive %s is negative", d)
	}
	if c.GCDelay <= 0 {
		return errors.Wrapf(ErrConfig, "gcDelay %s must be positive", c.GCDelay)
	}
	for lang, comp := range c.Compilers {
		if strings.TrimSpace(lang) == "" {
			return errors.Wrap(ErrConfig, "compiler with empty language tag")
		}
		if comp.Path == "" {
			return errors.Wrapf(ErrConfig, "compiler %q has no path", lang)
		}
	}
	return nil
}
