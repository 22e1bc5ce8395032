package bootstrap

import (
	"flag"
	"strings"
	"time"

	entrypoint "github.com/fieldpress/bootstrap/internal/platform/cmd"
	"github.com/fieldpress/bootstrap/internal/store"
)

// Config holds bootstrap command configuration. Values come from the
// environment with flag overrides on top.
type Config struct {
	// DatabaseURL takes precedence over the discrete database settings.
	DatabaseURL      string `env:"FIELDPRESS_DATABASE_URL"`
	DatabaseHost     string `env:"FIELDPRESS_DATABASE_HOST" envDefault:"localhost"`
	DatabasePort     int    `env:"FIELDPRESS_DATABASE_PORT" envDefault:"5432"`
	DatabaseUser     string `env:"FIELDPRESS_DATABASE_USER" envDefault:"postgres"`
	DatabasePassword string `env:"FIELDPRESS_DATABASE_PASSWORD"`
	DatabaseName     string `env:"FIELDPRESS_DATABASE_NAME" envDefault:"fieldpress"`
	DatabaseSSLMode  string `env:"FIELDPRESS_DATABASE_SSL_MODE" envDefault:"prefer"`

	WaitAttempts int           `env:"FIELDPRESS_DATABASE_WAIT_ATTEMPTS" envDefault:"30"`
	WaitInterval time.Duration `env:"FIELDPRESS_DATABASE_WAIT_INTERVAL" envDefault:"2s"`

	// MigrationsDir overrides the embedded migration set with an external
	// script directory.
	MigrationsDir  string `env:"FIELDPRESS_MIGRATIONS_DIR"`
	SkipMigrations bool   `env:"FIELDPRESS_SKIP_MIGRATIONS"`
	SkipSeed       bool   `env:"FIELDPRESS_SKIP_SEED"`

	AdminUsername string `env:"FIELDPRESS_ADMIN_USER" envDefault:"admin"`
	AdminEmail    string `env:"FIELDPRESS_ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string `env:"FIELDPRESS_ADMIN_PASSWORD"`

	SiteURL   string `env:"FIELDPRESS_SITE_URL" envDefault:"http://localhost:8080"`
	SiteTitle string `env:"FIELDPRESS_SITE_TITLE" envDefault:"Fieldpress"`

	// ExecArgs is the command handed the process once bootstrap completes,
	// taken from the trailing command line.
	ExecArgs []string
}

// ParseConfig parses environment and flags into a Config. Arguments left
// after flag parsing name the command to exec once bootstrap completes.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "The database connection URL (overrides discrete settings)")
	fs.StringVar(&cfg.MigrationsDir, "migrations-dir", cfg.MigrationsDir, "External migration script directory (default: embedded set)")
	fs.BoolVar(&cfg.SkipMigrations, "skip-migrations", cfg.SkipMigrations, "Skip applying schema migrations")
	fs.BoolVar(&cfg.SkipSeed, "skip-seed", cfg.SkipSeed, "Skip first-run data seeding")
	fs.IntVar(&cfg.WaitAttempts, "wait-attempts", cfg.WaitAttempts, "Readiness probe attempts before giving up")
	fs.DurationVar(&cfg.WaitInterval, "wait-interval", cfg.WaitInterval, "Delay between readiness probes")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.ExecArgs = fs.Args()
	return cfg, nil
}

// DatabaseDescriptor resolves the connection target, preferring the full URL
// over the discrete host settings.
func (c Config) DatabaseDescriptor() (store.Descriptor, error) {
	if raw := strings.TrimSpace(c.DatabaseURL); raw != "" {
		return store.ParseURL(raw)
	}
	return store.Descriptor{
		Kind:     store.Postgres,
		Host:     c.DatabaseHost,
		Port:     c.DatabasePort,
		User:     c.DatabaseUser,
		Password: c.DatabasePassword,
		Name:     c.DatabaseName,
		SSLMode:  c.DatabaseSSLMode,
	}, nil
}
