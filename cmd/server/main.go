/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the mirror-engine server, or seeds the database
  with a demo scenario. Handles configuration, dependency injection, and
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load YAML config (flags override file and environment)
  2. Build the zap logger
  3. Initialize SQLite store
  4. Create mirror service and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMANDS:
  serve            Run the HTTP server (default)
  seed [scenario]  Reset the database and load a demo scenario

FLAGS:
  --config   YAML config file (optional)
  --port     HTTP server port (overrides config)
  --db       SQLite database path (overrides config)
             Use ":memory:" for in-memory database
  --verbose  Debug logging

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server --db=./data/bid.db

  # Seed and serve an in-memory demo
  ./server seed standard-bid --db=./demo.db && ./server --db=./demo.db

ENVIRONMENT:
  MIRROR_PORT, MIRROR_DB, MIRROR_LOG_LEVEL (see config/config.go)

SEE ALSO:
  - api/server.go: Router configuration
  - api/scenarios.go: Demo scenarios
  - config/config.go: Configuration
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/mirror-engine/api"
	"github.com/warp/mirror-engine/config"
	"github.com/warp/mirror-engine/mirror"
	"github.com/warp/mirror-engine/store/sqlite"
)

var (
	// Global flags
	configPath string
	port       int
	dbPath     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Cyclic schedule expansion and mirror-line comparison server",
	Long: `Serves expanded bid-line schedules, per-line statistics, and mirror
rankings over HTTP.

Run without arguments to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if cmd.Flags().Changed("db") {
			cfg.Database.Path = dbPath
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("logging level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed [scenario]",
	Short: "Reset the database and load a demo scenario",
	Long: `Loads one of the demo scenarios into the configured database.

Scenarios:
  - standard-bid
  - unrecognized-codes
  - look-ahead`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().IntVar(&port, "port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "mirror.db", "SQLite database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newHandler wires store, service and handler from the loaded config.
func newHandler() (*api.Handler, *sqlite.Store, error) {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	svc := mirror.NewService(store, logger)
	svc.Thresholds = cfg.Thresholds()
	svc.OffCode = cfg.Engine.OffCode
	if cfg.Engine.Workers > 0 {
		svc.Workers = cfg.Engine.Workers
	}

	return api.NewHandler(store, svc, logger), store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	handler, store, err := newHandler()
	if err != nil {
		return err
	}
	defer store.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins...),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	handler, store, err := newHandler()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := handler.LoadScenarioByID(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "loaded scenario %s into %s\n", args[0], cfg.Database.Path)
	return nil
}
