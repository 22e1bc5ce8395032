package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Runner applies pending migration units in order against one database.
type Runner struct {
	DB     *sql.DB
	Ledger Ledger
	Logf   func(string, ...any)
}

// Apply executes every unit whose version is not in the ledger, in the given
// order, one transaction per unit. Each transaction carries the unit's
// statements and its ledger row, so a unit that fails partway leaves no
// ledger entry. Apply stops at the first failure and reports how many units
// it applied; replaying an already applied sequence is a no-op.
func (r Runner) Apply(ctx context.Context, units []Unit) (int, error) {
	if r.DB == nil {
		return 0, fmt.Errorf("sql db is required")
	}
	logf := r.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if err := r.Ledger.Ensure(ctx, r.DB); err != nil {
		return 0, err
	}
	applied, err := r.Ledger.Applied(ctx, r.DB)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, unit := range units {
		if applied[unit.Version] {
			continue
		}
		if strings.TrimSpace(unit.SQL) == "" {
			logf("migration %s has no statements, skipping", unit.Version)
			continue
		}

		tx, err := r.DB.BeginTx(ctx, nil)
		if err != nil {
			return count, fmt.Errorf("begin migration %s: %w", unit.Version, err)
		}

		// The batch runs without cancellation; only the readiness probe
		// is time-bounded.
		if _, err := tx.Exec(unit.SQL); err != nil {
			_ = tx.Rollback()
			return count, fmt.Errorf("exec migration %s: %w", unit.Version, err)
		}
		if err := r.Ledger.Record(tx, unit.Version, time.Now()); err != nil {
			_ = tx.Rollback()
			return count, fmt.Errorf("record migration %s: %w", unit.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return count, fmt.Errorf("commit migration %s: %w", unit.Version, err)
		}

		count++
		logf("applied migration %s", unit.Version)
	}
	return count, nil
}
