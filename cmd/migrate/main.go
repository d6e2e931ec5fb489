package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
)

// Applies the SQL files under migrations/ in lexical order. Each file runs in
// its own transaction and is recorded in schema_migrations, so re-running the
// command only applies what is new.
func main() {
	dir := flag.String("dir", "migrations", "Directory containing migration files")
	down := flag.Bool("down", false, "Apply .down.sql files in reverse order instead")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		logger.Fatalw("Failed to prepare migrations table", "error", err)
	}

	suffix := ".up.sql"
	if *down {
		suffix = ".down.sql"
	}

	files, err := listMigrations(*dir, suffix)
	if err != nil {
		logger.Fatalw("Failed to read migrations directory", "error", err)
	}
	if *down {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}

	for _, file := range files {
		if err := applyMigration(ctx, db, file, *down); err != nil {
			logger.Fatalw("Migration failed", "file", file, "error", err)
		}
	}

	logger.Info("Migrations complete")
}

func listMigrations(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyMigration(ctx context.Context, db *postgres.DB, file string, down bool) error {
	name := filepath.Base(file)

	var applied bool
	query := `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`
	recordName := strings.TrimSuffix(name, ".down.sql")
	recordName = strings.TrimSuffix(recordName, ".up.sql")
	if err := db.GetContext(ctx, &applied, query, recordName); err != nil {
		return err
	}
	if !down && applied {
		return nil
	}
	if down && !applied {
		return nil
	}

	contents, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	// the DDL and the bookkeeping row commit together
	return db.WithTx(ctx, func(ctx context.Context) error {
		q := db.GetQuerier(ctx)
		if _, err := q.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("executing %s: %w", name, err)
		}
		if down {
			_, err = q.ExecContext(ctx, `DELETE FROM schema_migrations WHERE name = $1`, recordName)
		} else {
			_, err = q.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, recordName)
		}
		return err
	})
}
