// Copyright (c) 2026 TaskFlow. All rights reserved.

// Package migration applies the SQL schema migrations at startup so the
// users.account and core.task tables exist before traffic is served.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the file:// source scheme for on-disk .sql migrations.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending UP migration from migrationsPath against dsn.
//
// A dirty schema version aborts startup: it means an earlier run died mid
// migration and needs manual repair before the server may touch the tables.
func RunUp(dsn, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	migrator.Log = &slogBridge{logger: logger}
	defer closeMigrator(migrator, logger)

	before, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d, repair it before restarting", before)
	}

	switch err := migrator.Up(); {
	case err == nil:
		after, _, _ := migrator.Version()
		logger.Info("schema_migrated",
			slog.Int("from_version", int(before)),
			slog.Int("to_version", int(after)),
		)
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema_up_to_date", slog.Int("version", int(before)))
		return nil
	default:
		return fmt.Errorf("migration: up failed: %w", err)
	}
}

// pgx5URL rewrites a postgres:// or postgresql:// DSN to the pgx5:// scheme
// golang-migrate's pgx/v5 driver registers under.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, dbErr := migrator.Close()
	if sourceErr != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
	}
	if dbErr != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
	}
}

// slogBridge satisfies migrate.Logger on top of slog.
type slogBridge struct {
	logger *slog.Logger
}

func (bridge *slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (bridge *slogBridge) Verbose() bool { return false }
