// Package bootstrap sequences the startup pipeline that runs ahead of the
// main Fieldpress service: wait for the database, apply schema migrations,
// seed a fresh install, then hand the process over.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldpress/bootstrap/internal/migrate"
	entrypoint "github.com/fieldpress/bootstrap/internal/platform/cmd"
	"github.com/fieldpress/bootstrap/internal/seed"
	"github.com/fieldpress/bootstrap/internal/store"
	"github.com/fieldpress/bootstrap/migrations"
)

const tracerName = "github.com/fieldpress/bootstrap/internal/cmd/bootstrap"

// Run executes the bootstrap pipeline with telemetry configured. Readiness
// and migration failures are fatal; a seeding failure is logged and startup
// continues.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBootstrap, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	desc, err := cfg.DatabaseDescriptor()
	if err != nil {
		return fmt.Errorf("resolve database target: %w", err)
	}
	log.Printf("database target %s", desc.Redacted())

	if err := waitForStore(ctx, desc, cfg); err != nil {
		return err
	}

	if cfg.SkipMigrations {
		log.Printf("skipping migrations")
	} else if err := applyMigrations(ctx, desc, cfg); err != nil {
		return err
	}

	if cfg.SkipSeed {
		log.Printf("skipping seed")
	} else if err := seedStore(ctx, desc, cfg); err != nil {
		// A failed seed leaves the install unseeded but never blocks startup.
		log.Printf("seed: %v (continuing)", err)
	}

	return execHandoff(cfg.ExecArgs)
}

func waitForStore(ctx context.Context, desc store.Descriptor, cfg Config) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "bootstrap.wait",
		trace.WithAttributes(attribute.String("db.kind", string(desc.Kind))))
	defer span.End()

	probe := func(ctx context.Context) error { return store.Probe(ctx, desc) }
	if err := store.WaitReady(ctx, probe, cfg.WaitAttempts, cfg.WaitInterval, log.Printf); err != nil {
		return err
	}
	log.Printf("database ready")
	return nil
}

func applyMigrations(ctx context.Context, desc store.Descriptor, cfg Config) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "bootstrap.migrate",
		trace.WithAttributes(attribute.String("db.kind", string(desc.Kind))))
	defer span.End()

	fsys, root, err := migrationSource(desc.Kind, cfg.MigrationsDir)
	if err != nil {
		return err
	}
	units, err := migrate.Load(fsys, root)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		log.Printf("no migrations to apply")
		return nil
	}

	db, err := store.Open(desc)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runner := migrate.Runner{DB: db, Ledger: migrate.NewLedger(desc.Kind), Logf: log.Printf}
	applied, err := runner.Apply(ctx, units)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("migrations.applied", applied))
	log.Printf("migrations up to date (%d applied, %d total)", applied, len(units))
	return nil
}

func seedStore(ctx context.Context, desc store.Descriptor, cfg Config) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "bootstrap.seed",
		trace.WithAttributes(attribute.String("db.kind", string(desc.Kind))))
	defer span.End()

	db, err := store.Open(desc)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	seeder := seed.Seeder{DB: db, Kind: desc.Kind, Logf: log.Printf}
	seeded, err := seeder.SeedIfEmpty(ctx, seed.Admin{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, seed.Site{URL: cfg.SiteURL, Title: cfg.SiteTitle})
	if err != nil {
		return err
	}
	if !seeded {
		log.Printf("store already populated, seed skipped")
	}
	return nil
}

// migrationSource picks the migration set: an external directory when one is
// configured, otherwise the embedded set for the engine.
func migrationSource(kind store.Kind, dir string) (fs.FS, string, error) {
	if dir != "" {
		return os.DirFS(dir), ".", nil
	}
	switch kind {
	case store.SQLite:
		return migrations.SQLiteFS, "sqlite", nil
	case store.Postgres:
		return migrations.PostgresFS, "postgres", nil
	default:
		return nil, "", fmt.Errorf("no migration set for database kind %q", kind)
	}
}
