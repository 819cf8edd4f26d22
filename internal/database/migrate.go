package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is a single schema change applied inside a transaction.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id SERIAL PRIMARY KEY,
					username VARCHAR(50) UNIQUE NOT NULL,
					password TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,

				`CREATE TABLE IF NOT EXISTS account_types (
					account_type_id SERIAL PRIMARY KEY,
					name VARCHAR(20) UNIQUE NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					account_id SERIAL PRIMARY KEY,
					name VARCHAR(100) UNIQUE NOT NULL,
					account_type_id INTEGER NOT NULL REFERENCES account_types (account_type_id),
					description TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_accounts_name ON accounts (name)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					transaction_id SERIAL PRIMARY KEY,
					reference UUID UNIQUE NOT NULL,
					date TIMESTAMPTZ NOT NULL,
					account_debit_id INTEGER NOT NULL REFERENCES accounts (account_id),
					account_credit_id INTEGER NOT NULL REFERENCES accounts (account_id),
					amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
					summary VARCHAR(50) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (account_debit_id <> account_credit_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_debit ON transactions (account_debit_id)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_credit ON transactions (account_credit_id)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("migration 1: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending migrations in version order.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			m.Version, m.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
		log.Printf("[MIGRATE] Applied migration %d: %s", m.Version, m.Description)
	}
	return nil
}
