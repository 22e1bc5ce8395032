package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to the described database and verifies it responds. Callers
// own the returned handle and must close it when their phase completes.
func Open(desc Descriptor) (*sql.DB, error) {
	if strings.TrimSpace(desc.Name) == "" {
		return nil, fmt.Errorf("database name is required")
	}

	sqlDB, err := sql.Open(desc.driverName(), desc.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", desc.Kind, err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", desc.Kind, err)
	}

	return sqlDB, nil
}

// Probe opens a connection to the target, checks liveness, and releases it
// before returning. It holds no resources across calls.
func Probe(ctx context.Context, desc Descriptor) error {
	sqlDB, err := sql.Open(desc.driverName(), desc.DSN())
	if err != nil {
		return fmt.Errorf("open %s db: %w", desc.Kind, err)
	}
	defer func() { _ = sqlDB.Close() }()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s db: %w", desc.Kind, err)
	}
	return nil
}
