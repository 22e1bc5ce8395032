// Package seed provisions first-run data: the administrator account and the
// default site options. Seeding only happens when the database holds neither,
// and every insert skips on conflict so replays and concurrent seeders cannot
// duplicate rows.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldpress/bootstrap/internal/store"
)

// Fallback identity for deployments that configure nothing.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@localhost"
)

// Option names understood by the CMS. OptionSiteURL doubles as the seeding
// guard: its presence marks a site as already bootstrapped.
const (
	OptionSiteURL   = "site_url"
	OptionSiteTitle = "site_title"
)

// Admin describes the administrator identity to provision. An empty Password
// means one is generated and surfaced once through the seeder's log.
type Admin struct {
	Username string
	Email    string
	Password string
}

// Site carries the option values that differ per deployment.
type Site struct {
	URL   string
	Title string
}

type optionRow struct {
	name  string
	value string
}

// Seeder inserts first-run rows into one database.
type Seeder struct {
	DB   *sql.DB
	Kind store.Kind
	Logf func(string, ...any)
}

// SeedIfEmpty provisions the administrator account and the default option set
// when no active user and no site_url option exist yet. It reports whether it
// seeded anything.
func (s Seeder) SeedIfEmpty(ctx context.Context, admin Admin, site Site) (bool, error) {
	if s.DB == nil {
		return false, fmt.Errorf("sql db is required")
	}
	logf := s.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	empty, err := s.storeIsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		logf("existing data found, skipping seed")
		return false, nil
	}

	admin, generated, err := normalizeAdmin(admin)
	if err != nil {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertAdmin(tx, admin, string(hash)); err != nil {
		return false, err
	}
	if err := s.insertOptions(tx, defaultOptions(admin, site)); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed transaction: %w", err)
	}

	logf("seeded administrator %s <%s>", admin.Username, admin.Email)
	if generated {
		logf("generated administrator password: %s", admin.Password)
		logf("the password is stored only as a hash and will not be shown again")
	}
	return true, nil
}

// storeIsEmpty reports whether the database holds neither an active user nor
// the site_url option. The counts are recomputed on every run, never cached.
func (s Seeder) storeIsEmpty(ctx context.Context) (bool, error) {
	var users int64
	row := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE deleted_at IS NULL")
	if err := row.Scan(&users); err != nil {
		return false, fmt.Errorf("count active users: %w", err)
	}
	if users > 0 {
		return false, nil
	}

	query := "SELECT COUNT(*) FROM options WHERE option_name = ?"
	if s.Kind == store.Postgres {
		query = "SELECT COUNT(*) FROM options WHERE option_name = $1"
	}
	var options int64
	row = s.DB.QueryRowContext(ctx, query, OptionSiteURL)
	if err := row.Scan(&options); err != nil {
		return false, fmt.Errorf("check %s option: %w", OptionSiteURL, err)
	}
	return options == 0, nil
}

func (s Seeder) insertAdmin(tx *sql.Tx, admin Admin, passwordHash string) error {
	query := `INSERT OR IGNORE INTO users (id, email, username, password_hash, display_name)
VALUES (?, ?, ?, ?, ?)`
	if s.Kind == store.Postgres {
		query = `INSERT INTO users (id, email, username, password_hash, display_name)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO NOTHING`
	}
	if _, err := tx.Exec(query, uuid.NewString(), admin.Email, admin.Username, passwordHash, admin.Username); err != nil {
		return fmt.Errorf("insert administrator: %w", err)
	}
	return nil
}

func (s Seeder) insertOptions(tx *sql.Tx, rows []optionRow) error {
	query := "INSERT OR IGNORE INTO options (id, option_name, option_value) VALUES (?, ?, ?)"
	if s.Kind == store.Postgres {
		query = "INSERT INTO options (id, option_name, option_value) VALUES ($1, $2, $3) ON CONFLICT (option_name) DO NOTHING"
	}
	for _, row := range rows {
		if _, err := tx.Exec(query, uuid.NewString(), row.name, row.value); err != nil {
			return fmt.Errorf("insert option %s: %w", row.name, err)
		}
	}
	return nil
}

func normalizeAdmin(admin Admin) (Admin, bool, error) {
	admin.Username = strings.TrimSpace(admin.Username)
	admin.Email = strings.TrimSpace(admin.Email)
	if admin.Username == "" {
		admin.Username = DefaultAdminUsername
	}
	if admin.Email == "" {
		admin.Email = DefaultAdminEmail
	}
	if admin.Password != "" {
		return admin, false, nil
	}

	password, err := GeneratePassword()
	if err != nil {
		return Admin{}, false, err
	}
	admin.Password = password
	return admin, true, nil
}

// defaultOptions returns the baseline option set in insertion order.
func defaultOptions(admin Admin, site Site) []optionRow {
	siteURL := strings.TrimSpace(site.URL)
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	title := strings.TrimSpace(site.Title)
	if title == "" {
		title = "Fieldpress"
	}
	return []optionRow{
		{OptionSiteURL, siteURL},
		{OptionSiteTitle, title},
		{"site_tagline", "Just another Fieldpress site"},
		{"admin_email", admin.Email},
		{"timezone", "UTC"},
		{"language", "en"},
		{"date_format", "2006-01-02"},
		{"time_format", "15:04"},
		{"posts_per_page", "10"},
		{"comments_enabled", "true"},
		{"permalink_structure", "/:year/:month/:slug"},
	}
}
