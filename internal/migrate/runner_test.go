package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/fieldpress/bootstrap/internal/store"
	_ "modernc.org/sqlite"
)

func TestRunnerAppliesUnitsInOrder(t *testing.T) {
	db := openInMemoryDB(t)

	fsys := fstest.MapFS{
		"001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
		"002_items_name.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nALTER TABLE items ADD COLUMN name TEXT;"),
		},
	}
	units, err := Load(fsys, "")
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}

	runner := Runner{DB: db, Ledger: NewLedger(store.SQLite)}
	applied, err := runner.Apply(context.Background(), units)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied units, got %d", applied)
	}

	if !tableExists(t, db, "items") {
		t.Fatal("expected items table to exist")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", rows)
	}
	if first := queryString(t, db, "SELECT version FROM schema_migrations ORDER BY version LIMIT 1"); first != "001_items.sql" {
		t.Fatalf("unexpected first ledger version %q", first)
	}
}

func TestRunnerReplayIsNoop(t *testing.T) {
	db := openInMemoryDB(t)

	units := []Unit{
		{Version: "001_items.sql", SQL: "CREATE TABLE items(id TEXT PRIMARY KEY);"},
	}
	runner := Runner{DB: db, Ledger: NewLedger(store.SQLite)}

	if _, err := runner.Apply(context.Background(), units); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	applied, err := runner.Apply(context.Background(), units)
	if err != nil {
		t.Fatalf("replay should be a no-op: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected 0 applied units on replay, got %d", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected single ledger row after replay, got %d", rows)
	}
}

func TestRunnerHaltsOnFailedUnit(t *testing.T) {
	db := openInMemoryDB(t)

	units := []Unit{
		{Version: "001_items.sql", SQL: "CREATE TABLE items(id TEXT PRIMARY KEY);"},
		{Version: "002_broken.sql", SQL: "CREAT TABLE broken(id TEXT);"},
		{Version: "003_notes.sql", SQL: "CREATE TABLE notes(id TEXT PRIMARY KEY);"},
	}
	runner := Runner{DB: db, Ledger: NewLedger(store.SQLite)}

	applied, err := runner.Apply(context.Background(), units)
	if err == nil {
		t.Fatal("expected broken unit to fail the run")
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied unit before the failure, got %d", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected only the first unit recorded, got %d rows", rows)
	}
	if tableExists(t, db, "notes") {
		t.Fatal("expected units after the failure to stay unapplied")
	}

	// Fixing the broken unit and re-running picks up where the run halted.
	units[1].SQL = "CREATE TABLE broken(id TEXT PRIMARY KEY);"
	applied, err = runner.Apply(context.Background(), units)
	if err != nil {
		t.Fatalf("apply fixed units: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied units after the fix, got %d", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 3 {
		t.Fatalf("expected 3 ledger rows after the fix, got %d", rows)
	}
}

func TestRunnerDoesNotRecordFailedUnit(t *testing.T) {
	db := openInMemoryDB(t)

	units := []Unit{
		{Version: "001_broken.sql", SQL: "CREAT TABLE broken(id TEXT);"},
	}
	runner := Runner{DB: db, Ledger: NewLedger(store.SQLite)}

	if _, err := runner.Apply(context.Background(), units); err == nil {
		t.Fatal("expected broken unit to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected failed unit to stay unrecorded, got %d rows", rows)
	}
}

func TestRunnerSkipsEmptyUnit(t *testing.T) {
	db := openInMemoryDB(t)

	units := []Unit{
		{Version: "001_empty.sql", SQL: "  \n\t"},
	}
	runner := Runner{DB: db, Ledger: NewLedger(store.SQLite)}

	applied, err := runner.Apply(context.Background(), units)
	if err != nil {
		t.Fatalf("apply empty unit: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected no applied units, got %d", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected empty unit to stay unrecorded, got %d rows", rows)
	}
}

func TestRunnerRequiresDB(t *testing.T) {
	runner := Runner{Ledger: NewLedger(store.SQLite)}
	if _, err := runner.Apply(context.Background(), nil); err == nil {
		t.Fatal("expected missing db error")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	row := db.QueryRow(query)
	if err := row.Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func queryString(t *testing.T, db *sql.DB, query string) string {
	t.Helper()
	var value string
	row := db.QueryRow(query)
	if err := row.Scan(&value); err != nil {
		t.Fatalf("query string value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name = ?"
	var name string
	row := db.QueryRow(query, tableName)
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return false
		}
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
