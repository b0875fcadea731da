package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"actionspec-hq/sentinel/pkg/api"
	"actionspec-hq/sentinel/pkg/cli"
	"actionspec-hq/sentinel/pkg/config"
	"actionspec-hq/sentinel/pkg/engine"
	"actionspec-hq/sentinel/pkg/history"
	"actionspec-hq/sentinel/pkg/schemafs"
	"actionspec-hq/sentinel/pkg/spec/loader"
	"actionspec-hq/sentinel/pkg/telemetry/logging"
	"actionspec-hq/sentinel/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP API",
	Long: `Start the Sentinel HTTP API.

The server exposes spec validation and change analysis over HTTP,
records run history, and reloads schema definitions when their source
directory changes.

Endpoints:
  POST /v1/validate   validate one spec document
  POST /v1/diff       classify the changes between two revisions
  GET  /healthz       liveness probe
  GET  /metrics       Prometheus metrics (when enabled)

Examples:
  # Start with the default configuration file
  actionspec serve

  # Start with a custom configuration
  actionspec serve --config /etc/sentinel/config.yaml

  # Override the listen address
  actionspec serve --listen 0.0.0.0:8466

  # Validate configuration without starting
  actionspec serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate configuration and exit")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config. When the default config file is simply absent the
	// server runs on defaults; an explicit --config that cannot be read
	// is an error.
	if err := config.Initialize(cfgFile); err != nil {
		if errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			config.SetConfig(config.DefaultConfig())
		} else {
			return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx := cli.SetupSignalHandler()

	// Schema registry, forced through a first load so a bad schema
	// directory fails the start instead of the first request.
	registry := newSchemaRegistry(cfg.Schema.Dir)
	count, err := registry.Count()
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to load schema definitions: %w", err))
	}
	fmt.Printf("✓ Schema registry loaded (%d version(s))\n", count)

	// Metrics collector (if enabled)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{Enabled: true}, nil)
	}

	reload := func() error {
		err := registry.Reload()
		if collector != nil {
			collector.RecordSchemaReload(err == nil)
		}
		return err
	}

	// Schema reload on file change and/or cron schedule (if configured)
	if cfg.Schema.Dir != "" && cfg.Schema.Watch {
		watcher, err := schemafs.NewWatcher(cfg.Schema.Dir, 0, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			if err := watcher.Watch(ctx, reload); err != nil {
				slog.Error("schema watcher failed", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Schema watcher started on %s\n", cfg.Schema.Dir)
	}
	if cfg.Schema.Dir != "" && cfg.Schema.RefreshSchedule != "" {
		refresher := schemafs.NewRefresher(cfg.Schema.RefreshSchedule, reload, logger)
		if err := refresher.Start(ctx); err != nil {
			slog.Warn("failed to start schema refresher", "error", err)
		} else {
			defer refresher.Stop()
			if next := refresher.NextRun(); next != nil {
				slog.Debug("schema refresher started", "next_run", next)
			}
		}
	}

	// Validation engine shared by every request
	ldr := loader.New().
		WithMaxSize(cfg.Limits.MaxDocumentBytes).
		WithMaxDuration(cfg.Limits.ParseTimeout).
		WithMaxDepth(cfg.Limits.MaxDepth).
		WithMaxNodes(cfg.Limits.MaxNodes)
	eng := engine.New(registry).WithLoader(ldr).WithLogger(logger)
	if collector != nil {
		eng = eng.WithCollector(collector)
	}

	// Initialize run history (if enabled)
	var recorder *history.Recorder
	if cfg.History.Enabled {
		slog.Info("initializing run history",
			"backend", cfg.History.Backend,
		)

		var store history.Store
		var err error
		switch cfg.History.Backend {
		case "sqlite":
			store, err = history.NewSQLiteStore(cfg.History.SQLitePath)
			if err != nil {
				return fmt.Errorf("failed to create SQLite store: %w", err)
			}
		case "memory":
			store = history.NewMemoryStore()
		default:
			return fmt.Errorf("unsupported history backend: %s", cfg.History.Backend)
		}
		defer store.Close()

		recorderConfig := history.DefaultRecorderConfig()
		if cfg.History.BufferSize > 0 {
			recorderConfig.BufferSize = cfg.History.BufferSize
		}
		recorder = history.NewRecorder(store, recorderConfig, logger)
		defer recorder.Close()

		// Start retention pruner if schedule is configured
		if cfg.History.RetentionSchedule != "" {
			pruner := history.NewPruner(store, cfg.History.RetentionDays, cfg.History.RetentionSchedule, logger)
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else if pruner.IsRunning() {
				defer pruner.Stop()
				if next := pruner.NextRun(); next != nil {
					slog.Debug("history retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Run history initialized")
	}

	// Create HTTP server
	slog.Info("creating HTTP server")
	srv := api.NewServer(&cfg.Server, eng, logger)
	if recorder != nil {
		srv = srv.WithRecorder(recorder)
	}
	if collector != nil {
		srv = srv.WithMetrics(collector, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a signal arrives or the listener fails, then
	// shuts down gracefully.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Sentinel v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Schema source info
	if cfg.Schema.Dir != "" {
		slog.Debug("schema source", "mode", "dir", "path", cfg.Schema.Dir, "watch", cfg.Schema.Watch)
	} else {
		slog.Debug("schema source", "mode", "builtin")
	}

	// History info
	if cfg.History.Enabled {
		slog.Debug("history enabled", "backend", cfg.History.Backend)
	}
}
