package ledger

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) the SQLite database backing the ledger and
// ensures the transactions table exists. Pass ":memory:" to keep the
// ledger process-lifetime, which is the default for a terminal session.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			subtotal_cents INTEGER NOT NULL,
			tip_cents INTEGER NOT NULL,
			total_cents INTEGER NOT NULL,
			payment_method TEXT NOT NULL,
			employee_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			card_brand TEXT,
			card_last4 TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_method ON transactions(payment_method)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_employee ON transactions(employee_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
