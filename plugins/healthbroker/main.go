package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-plugin"

	"pulse/internal/bootstrap"
	"pulse/internal/platform/config"
	"pulse/internal/platform/healthrpc"
	"pulse/internal/platform/logging"
	"pulse/internal/platform/metrics"
)

// healthbroker serves the local health store to pulse over go-plugin. It
// reads the same data dir as pulse, passed in by the host.
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := os.Getenv(healthrpc.DataDirEnv)
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cfg, err := config.New(dataDir)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	log = log.With().Str("process", "healthbroker").Logger()

	provider, err := bootstrap.NewProvider(cfg, metrics.New(), log)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	log.Info().Str("data_dir", cfg.DataDir).Str("consent", cfg.Broker.Consent).Msg("serving health store")
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: healthrpc.HandshakeConfig,
		Plugins:         healthrpc.PluginMap(provider.Handler),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
	return nil
}
