// Package main implements the portal command: the HTTP API server, database
// migrations and a one-shot integration status report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/platform/postgres"
	"github.com/ethicbank/portal-api/internal/platform/redis"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const dbPingTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "portal",
		Short:         "Ethical banking portal API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(servicesCmd(&configPath))
	return rootCmd
}

// loadAppConfig loads the configuration and sets up the default logger from it.
func loadAppConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	if cfg.Redis.URL != "" {
		l.Debug("Redis configuration", "url_present", true)
	}
	return cfg, l, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := postgres.Open(ctx, cfg.Database, dbPingTimeout)
			if err != nil {
				return err
			}
			l.Info("Database connection established")

			cache, err := redis.New(cfg.Redis.URL)
			if err != nil {
				_ = db.Close()
				return err
			}

			app, err := newApplication(cfg, l, db, cache)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := postgres.Open(ctx, cfg.Database, dbPingTimeout)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			start := time.Now()
			if err := postgres.Migrate(ctx, db, l, args[0]); err != nil {
				return err
			}
			l.Info("Migration command completed", "command", args[0], "duration", time.Since(start))
			return nil
		},
	}
}

func servicesCmd(configPath *string) *cobra.Command {
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "Initialize every integration once and print its status as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// An unreachable database is reported, not fatal.
			db, err := postgres.Open(ctx, cfg.Database, dbPingTimeout)
			if err != nil {
				l.Warn("database unavailable", "error", err)
				db = nil
			} else {
				defer func() { _ = db.Close() }()
			}
			cache, err := redis.New(cfg.Redis.URL)
			if err != nil {
				return err
			}
			if cache != nil {
				defer func() { _ = cache.Close() }()
			}

			reg := buildRegistry(cfg, l, db, cache, prometheus.NewRegistry())
			reg.Initialize(ctx)
			statuses := reg.ServicesStatus(ctx)

			if err := writeStatuses(cmd.OutOrStdout(), statuses); err != nil {
				return err
			}
			if failOnError {
				if failed := failedServices(statuses); len(failed) > 0 {
					return fmt.Errorf("unhealthy services: %s", strings.Join(failed, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when any service is not ok")
	return cmd
}

func writeStatuses(w io.Writer, statuses []registry.ServiceStatus) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statuses)
}

func failedServices(statuses []registry.ServiceStatus) []string {
	var failed []string
	for _, st := range statuses {
		if st.Status != registry.StatusOK {
			failed = append(failed, st.Name)
		}
	}
	return failed
}
