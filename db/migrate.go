package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/raseed-labs/raseed-backend/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies all pending migrations embedded in the binary.
// Already-applied migrations are skipped, so it is safe to call on every start.
// A dirty state left by a failed run is reset to the previous version and retried.
func RunMigrations(dbURL string) error {
	log := logger.GetLogger()

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// golang-migrate's pgx v5 driver expects the pgx5:// scheme
	m, err := migrate.NewWithSourceInstance("iofs", source, convertToPgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("Fresh database, applying all migrations")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		cleanVersion := int(version) - 1
		log.Infow("Dirty migration state detected, resetting to retry",
			"dirtyVersion", version,
			"resettingTo", cleanVersion)
		if cleanVersion <= 0 {
			cleanVersion = -1 // golang-migrate's NilVersion
		}
		if err := m.Force(cleanVersion); err != nil {
			return fmt.Errorf("failed to reset dirty migration: %w", err)
		}
	default:
		log.Infow("Current migration version", "version", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database is up to date, no migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err = m.Version()
	if err != nil {
		log.Info("Migrations applied successfully")
	} else {
		log.Infow("Migrations applied successfully",
			"currentVersion", version,
			"dirty", dirty)
	}
	return nil
}

// convertToPgx5URL converts a postgres:// or postgresql:// URL to pgx5://.
// pgxpool-only query parameters are dropped since the migrate driver rejects them.
func convertToPgx5URL(dbURL string) string {
	for _, scheme := range []string{"postgresql:", "postgres:"} {
		if strings.HasPrefix(dbURL, scheme) {
			dbURL = "pgx5:" + dbURL[len(scheme):]
			break
		}
	}
	return stripPoolParams(dbURL)
}

func stripPoolParams(dbURL string) string {
	base, query, found := strings.Cut(dbURL, "?")
	if !found {
		return dbURL
	}
	var kept []string
	for _, param := range strings.Split(query, "&") {
		if strings.HasPrefix(param, "pool_") {
			continue
		}
		kept = append(kept, param)
	}
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}
