package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS clients (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS banks (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					name TEXT NOT NULL,
					account_type TEXT NOT NULL DEFAULT 'Current',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('Income','Expense','Other')),
					nature TEXT NOT NULL DEFAULT 'Any' CHECK (nature IN ('Dr','Cr','Any')),
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (client_id, name)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions_draft (
					id TEXT PRIMARY KEY,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					bank_id INTEGER NOT NULL REFERENCES banks(id),
					period TEXT NOT NULL,
					tx_date DATETIME NOT NULL,
					description TEXT NOT NULL,
					debit TEXT,
					credit TEXT,
					balance TEXT,
					suggested_category TEXT NOT NULL DEFAULT '',
					suggested_vendor TEXT NOT NULL DEFAULT '',
					confidence INTEGER NOT NULL DEFAULT 0,
					reason TEXT NOT NULL DEFAULT '',
					final_category TEXT NOT NULL DEFAULT '',
					final_vendor TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'NOT_CATEGORISED',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_draft_scope ON transactions_draft(client_id, bank_id, period)`,

				`CREATE TABLE IF NOT EXISTS commits (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					bank_id INTEGER NOT NULL REFERENCES banks(id),
					period TEXT NOT NULL,
					rows_committed INTEGER NOT NULL DEFAULT 0,
					accuracy REAL,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_commits_scope ON commits(client_id, bank_id, period)`,

				`CREATE TABLE IF NOT EXISTS transactions_committed (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					commit_id INTEGER NOT NULL REFERENCES commits(id),
					client_id INTEGER NOT NULL REFERENCES clients(id),
					bank_id INTEGER NOT NULL REFERENCES banks(id),
					period TEXT NOT NULL,
					tx_date DATETIME NOT NULL,
					description TEXT NOT NULL,
					debit TEXT,
					credit TEXT,
					balance TEXT,
					category TEXT NOT NULL,
					vendor TEXT NOT NULL DEFAULT '',
					suggested_category TEXT NOT NULL DEFAULT '',
					suggested_vendor TEXT NOT NULL DEFAULT '',
					confidence INTEGER NOT NULL DEFAULT 0,
					reason TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_committed_scope ON transactions_committed(client_id, bank_id, period)`,
				`CREATE INDEX idx_committed_commit ON transactions_committed(commit_id)`,

				`CREATE TABLE IF NOT EXISTS vendor_memory (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					vendor_key TEXT NOT NULL,
					category TEXT NOT NULL,
					confidence INTEGER NOT NULL DEFAULT 70,
					times_confirmed INTEGER NOT NULL DEFAULT 1,
					last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (client_id, vendor_key)
				)`,

				`CREATE TABLE IF NOT EXISTS keyword_model (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					token TEXT NOT NULL,
					category TEXT NOT NULL,
					weight REAL NOT NULL DEFAULT 0,
					times_used INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (client_id, token, category)
				)`,
				`CREATE INDEX idx_keyword_client_token ON keyword_model(client_id, token)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add committed_by attribution to commits",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE commits ADD COLUMN committed_by TEXT NOT NULL DEFAULT ''`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Model commit lifecycle as a status state machine",
		Up: func(tx *sql.Tx) error {
			// Replaces the is_active flag with an explicit status column and a
			// partial unique index so the store itself enforces at most one
			// active commit per (client, bank, period). SQLite can't alter a
			// column in place, so the table is rebuilt.
			queries := []string{
				`CREATE TABLE commits_new (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL REFERENCES clients(id),
					bank_id INTEGER NOT NULL REFERENCES banks(id),
					period TEXT NOT NULL,
					committed_by TEXT NOT NULL DEFAULT '',
					rows_committed INTEGER NOT NULL DEFAULT 0,
					accuracy REAL,
					status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','superseded')),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`INSERT INTO commits_new (id, client_id, bank_id, period, committed_by, rows_committed, accuracy, status, created_at)
				 SELECT id, client_id, bank_id, period, committed_by, rows_committed, accuracy,
						CASE WHEN is_active = 1 THEN 'active' ELSE 'superseded' END,
						created_at
				 FROM commits`,
				`DROP TABLE commits`,
				`ALTER TABLE commits_new RENAME TO commits`,
				`CREATE INDEX idx_commits_scope ON commits(client_id, bank_id, period)`,
				`CREATE UNIQUE INDEX idx_commits_one_active_per_scope
				 ON commits(client_id, bank_id, period) WHERE status = 'active'`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
