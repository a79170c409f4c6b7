package database

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator applies the embedded SQL migrations in filename order, tracking
// applied files in a schema_migrations table so reruns are no-ops.
type Migrator struct {
	pool         *pgxpool.Pool
	migrationsFS fs.FS
}

func NewMigrator(pool *pgxpool.Pool, migrationsFS fs.FS) *Migrator {
	return &Migrator{pool: pool, migrationsFS: migrationsFS}
}

// Run executes all pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	entries, err := fs.ReadDir(m.migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	ran := 0
	for _, filename := range files {
		if applied[filename] {
			continue
		}

		content, err := fs.ReadFile(m.migrationsFS, filename)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filename, err)
		}

		log.Printf("[Migrator] Running %s", filename)
		if _, err := m.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("run migration %s: %w", filename, err)
		}
		if err := m.recordMigration(ctx, filename); err != nil {
			return fmt.Errorf("record migration %s: %w", filename, err)
		}
		ran++
	}

	if ran > 0 {
		log.Printf("[Migrator] Applied %d new migration(s)", ran)
	} else {
		log.Println("[Migrator] Database is up to date")
	}
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`)
	return err
}

func (m *Migrator) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) recordMigration(ctx context.Context, filename string) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO schema_migrations (filename) VALUES ($1)
		ON CONFLICT (filename) DO NOTHING`, filename)
	return err
}
