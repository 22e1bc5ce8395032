package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldpress/bootstrap/internal/store"
)

const ledgerTable = "schema_migrations"

// Ledger reads and writes the applied-migrations table in the dialect of one
// database engine.
type Ledger struct {
	kind store.Kind
}

// NewLedger returns a ledger speaking the dialect of kind.
func NewLedger(kind store.Kind) Ledger {
	return Ledger{kind: kind}
}

// Ensure creates the ledger table when it does not exist yet. Concurrent
// creators do not conflict.
func (l Ledger) Ensure(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}
	if _, err := db.ExecContext(ctx, l.ensureSQL()); err != nil {
		return fmt.Errorf("ensure ledger table: %w", err)
	}
	return nil
}

func (l Ledger) ensureSQL() string {
	if l.kind == store.Postgres {
		return `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    version    TEXT        PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL
)`
	}
	return `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    version    TEXT    PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`
}

// Applied returns the set of versions already recorded. A freshly created
// ledger yields an empty set.
func (l Ledger) Applied(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+ledgerTable)
	if err != nil {
		return nil, fmt.Errorf("list applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applied versions: %w", err)
	}
	return applied, nil
}

// Record writes one ledger row inside the unit's transaction. A duplicate
// version means another instance recorded the unit first; the insert is
// skipped rather than failed.
func (l Ledger) Record(tx *sql.Tx, version string, appliedAt time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if l.kind == store.Postgres {
		_, err := tx.Exec(
			"INSERT INTO "+ledgerTable+" (version, applied_at) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING",
			version,
			appliedAt.UTC(),
		)
		return err
	}
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO "+ledgerTable+" (version, applied_at) VALUES (?, ?)",
		version,
		appliedAt.UTC().UnixMilli(),
	)
	return err
}
