package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/cruciblehq/compd/internal/compiler"
	"github.com/cruciblehq/compd/internal/config"
	"github.com/cruciblehq/compd/internal/paths"
	"github.com/cruciblehq/compd/internal/protocol"
	"github.com/cruciblehq/compd/internal/server"
)

// Represents the 'compd start' command.
type StartCmd struct {
	KeepAlive    string        `help:"Idle time before exiting, as a duration or \"infinite\"." placeholder:"DURATION"`
	GCDelay      time.Duration `name:"gc-delay" help:"Idle time before forcing a garbage collection." placeholder:"DURATION"`
	SDKDirectory string        `name:"sdk-dir" help:"Directory holding the compiler SDK." placeholder:"PATH"`
}

// Executes the start command.
//
// Serves build requests on a Unix domain socket until the server idles out,
// a client disconnects mid-request, a client asks it to stop, or the context
// is cancelled (e.g. via SIGINT or SIGTERM).
func (c *StartCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	registry := compiler.NewRegistry(cfg.Compilers)
	host := compiler.NewProcessHost(cfg.SDKDirectory, compiler.NewAnalyzerSet())
	defer host.Close()

	socket := RootCmd.Socket
	if socket == "" {
		socket = cfg.Socket
	}

	srv := server.New(server.Config{
		SocketPath: socket,
		Handler:    compiler.NewRequestHandler(registry, host),
		Options: server.Options{
			KeepAlive: time.Duration(cfg.KeepAlive),
			GCDelay:   cfg.GCDelay,
		},
	})

	slog.Info("compd is running", "languages", registry.Tags())

	reason, err := srv.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("shutting down", "reason", reason)
	return nil
}

// Loads the configuration file and applies flag overrides.
func (c *StartCmd) config() (*config.Config, error) {
	path := RootCmd.Config
	if path == "" {
		path = paths.ConfigFile()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if c.KeepAlive != "" {
		if cfg.KeepAlive, err = config.ParseKeepAlive(c.KeepAlive); err != nil {
			return nil, err
		}
	}
	if c.GCDelay != 0 {
		cfg.GCDelay = c.GCDelay
	}
	if c.SDKDirectory != "" {
		cfg.SDKDirectory = c.SDKDirectory
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration loaded", "path", path, "keepAlive", protocol.FormatKeepAlive(time.Duration(cfg.KeepAlive)), "gcDelay", cfg.GCDelay)
	return cfg, nil
}
