package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ethicbank/portal-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// MigrationCommands lists the goose commands exposed by the CLI.
var MigrationCommands = []string{"up", "down", "status", "version", "reset"}

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate runs a goose command against the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	if logger == nil {
		logger = slog.Default()
	}
	if !isMigrationCommand(command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(slogGooseLogger{logger: logger.With("component", "migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	logger.InfoContext(ctx, "running migrations", "command", command)
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func isMigrationCommand(command string) bool {
	return slices.Contains(MigrationCommands, command)
}
