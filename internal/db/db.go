package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/vytor/vocabflash/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	log *logger.Logger
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	dsn := withPragmas(path, "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL")
	log.Info("opening database: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1) // SQLite best practice for single writer

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		log.Error("failed to reach database: %v", err)
		return nil, err
	}

	log.Debug("applying migrations")
	if err := Migrate(logger.NewContext(ctx, log), sqlDB); err != nil {
		sqlDB.Close()
		log.Error("failed to apply migrations: %v", err)
		return nil, err
	}

	log.Info("database ready")
	return &DB{DB: sqlDB, log: log}, nil
}

// OpenMemory opens a private in-memory database with migrations applied.
func OpenMemory(ctx context.Context) (*DB, error) {
	return Open(ctx, ":memory:")
}

// Migrate applies every embedded migration that has not run yet.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	log := logger.FromContext(ctx)

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, sub)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("migration %d applied in %v", r.Source.Version, r.Duration)
	}
	if len(results) == 0 {
		log.Debug("schema up to date")
	}
	return nil
}

// Healthy checks database connectivity; used by readiness probes.
func (db *DB) Healthy(ctx context.Context) error {
	return db.PingContext(ctx)
}

func withPragmas(path, pragmas string) string {
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}
