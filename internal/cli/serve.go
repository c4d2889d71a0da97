// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomtom215/locbeacon/internal/api"
	"github.com/tomtom215/locbeacon/internal/config"
	"github.com/tomtom215/locbeacon/internal/eventprocessor"
	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/registry"
	"github.com/tomtom215/locbeacon/internal/supervisor"
	"github.com/tomtom215/locbeacon/internal/supervisor/services"
	"github.com/tomtom215/locbeacon/internal/sweeper"
	ws "github.com/tomtom215/locbeacon/internal/websocket"
)

func newServeCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the location server (default command).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}
			logging.Init(logging.Config{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				Caller:    cfg.Logging.Caller,
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			logging.Info().Str("version", deps.Version).Msg("Starting locbeacon")
			return deps.Serve(cmd.Context(), cfg)
		},
	}

	addServeFlags(cmd.Flags())
	return cmd
}

func addServeFlags(flags *pflag.FlagSet) {
	flags.IntP("port", "p", 0, "HTTP port (overrides server.port).")
	flags.String("host", "", "HTTP bind address (overrides server.host).")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error.")
	flags.String("backend", "", "Registry backend: memory or badger.")
}

// loadServeConfig loads the layered configuration and applies flag
// overrides on top.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	applyServeOverrides(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyServeOverrides copies explicitly set flags onto cfg.
func applyServeOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("backend") {
		cfg.Registry.Backend, _ = flags.GetString("backend")
	}
}

// RunServer wires every component into the supervisor tree and blocks
// until ctx is canceled.
//
//nolint:gocyclo // sequential setup steps
func RunServer(ctx context.Context, cfg *config.Config) error {
	reg, err := registry.Open(cfg.Registry.Backend, cfg.Registry.Path, registry.Options{TTL: cfg.Registry.TTL})
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	locations := registry.NewInstrumented(reg)
	defer func() {
		if err := locations.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing registry")
		}
	}()
	logging.Info().
		Str("backend", locations.Backend()).
		Dur("ttl", locations.TTL()).
		Dur("sweep_interval", cfg.Registry.SweepInterval).
		Msg("Location registry ready")

	if cfg.IsProduction() && slices.Contains(cfg.Security.CORSOrigins, "*") {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS to restrict viewers")
	}

	wmLogger := logging.NewWatermillAdapter()
	bus := eventprocessor.NewBus(eventprocessor.DefaultBusConfig(), wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	pipeline := eventprocessor.NewPipeline(bus, eventprocessor.DefaultRouterConfig(), wmLogger)

	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
		if _, err := pipeline.WithWebSocket(hub); err != nil {
			return err
		}
		tree.AddMessagingService(services.NewWebSocketHubService(hub))
	}

	if cfg.NATS.Enabled {
		publisher, err := setupNATS(tree, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing NATS publisher")
			}
		}()
		if _, err := pipeline.WithForwarder(publisher); err != nil {
			return err
		}
	}
	tree.AddMessagingService(services.NewEventPipelineService(pipeline))

	sw := sweeper.New(locations, bus, sweeper.Config{
		Interval: cfg.Registry.SweepInterval,
		TTL:      cfg.Registry.TTL,
	})
	tree.AddDataService(services.NewSweeperService(sw))

	handler := api.NewHandler(locations, cfg)
	handler.SetEventPublisher(bus)
	if hub != nil {
		handler.SetWebSocketHub(hub)
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	return serveTree(ctx, tree)
}

// setupNATS registers the embedded server when configured and returns the
// forwarding publisher.
func setupNATS(tree *supervisor.SupervisorTree, cfg *config.Config) (*eventprocessor.Publisher, error) {
	url := cfg.NATS.URL
	if cfg.NATS.Embedded {
		serverCfg := eventprocessor.DefaultServerConfig()
		if cfg.NATS.EmbeddedHost != "" {
			serverCfg.Host = cfg.NATS.EmbeddedHost
		}
		if cfg.NATS.EmbeddedPort != 0 {
			serverCfg.Port = cfg.NATS.EmbeddedPort
		}
		tree.AddMessagingService(services.NewNATSServerService(func() (services.NATSServer, error) {
			srv, err := eventprocessor.NewEmbeddedServer(&serverCfg)
			if err != nil {
				return nil, err
			}
			return srv, nil
		}, cfg.Server.ShutdownTimeout))
		url = fmt.Sprintf("nats://%s:%d", serverCfg.Host, serverCfg.Port)
	}

	pubCfg := eventprocessor.DefaultPublisherConfig(url)
	if cfg.NATS.SubjectPrefix != "" {
		pubCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
	}
	publisher, err := eventprocessor.NewPublisher(pubCfg, logging.NewWatermillAdapter())
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	cbCfg := eventprocessor.DefaultCircuitBreakerConfig("nats-forwarder")
	if cfg.NATS.BreakerFailureThreshold > 0 {
		cbCfg.FailureThreshold = cfg.NATS.BreakerFailureThreshold
	}
	if cfg.NATS.BreakerTimeout > 0 {
		cbCfg.Timeout = cfg.NATS.BreakerTimeout
	}
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(cbCfg))

	logging.Info().
		Str("url", url).
		Bool("embedded", cfg.NATS.Embedded).
		Str("subject_prefix", pubCfg.SubjectPrefix).
		Msg("NATS fan-out enabled")
	return publisher, nil
}

// serveTree runs the tree until ctx ends and reports services that did not
// stop in time.
func serveTree(ctx context.Context, tree *supervisor.SupervisorTree) error {
	logging.Info().Msg("Starting supervisor tree")
	runErr := <-tree.ServeBackground(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		logging.Error().Err(runErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Locbeacon stopped")
	return runErr
}
