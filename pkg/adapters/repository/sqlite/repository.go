package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

// timeLayout is what strftime and date() understand.
const timeLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY
		// inside reorder transactions.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		icon TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order);

	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		url TEXT NOT NULL,
		thumbnail_url TEXT,
		favicon_url TEXT,
		tags JSON,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_favorite BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		FOREIGN KEY(category_id) REFERENCES categories(id)
	);
	CREATE INDEX IF NOT EXISTS idx_links_category_sort ON links(category_id, sort_order);

	CREATE TABLE IF NOT EXISTS click_events (
		id TEXT PRIMARY KEY,
		link_id TEXT NOT NULL,
		clicked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		referrer TEXT,
		user_agent TEXT,
		country TEXT,
		ip_hash TEXT,
		FOREIGN KEY(link_id) REFERENCES links(id)
	);
	CREATE INDEX IF NOT EXISTS idx_click_events_link_id ON click_events(link_id);
	CREATE INDEX IF NOT EXISTS idx_click_events_clicked_at ON click_events(clicked_at);

	CREATE TABLE IF NOT EXISTS site_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	// The sink category must always exist
	now := formatTime(time.Now())
	_, err := db.Exec(`INSERT OR IGNORE INTO categories (id, name, slug, icon, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), "Uncategorized", domain.SinkSlug, "inbox", 0, now, now)
	if err != nil {
		return err
	}
	return settleSink(context.Background(), db)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

var parseLayouts = []string{
	timeLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02",
}

// timeScanner accepts whatever the driver hands back for a DATETIME column.
type timeScanner struct {
	dest *time.Time
	null **time.Time
}

func scanTime(dest *time.Time) *timeScanner      { return &timeScanner{dest: dest} }
func scanNullTime(dest **time.Time) *timeScanner { return &timeScanner{null: dest} }

func (s *timeScanner) Scan(src any) error {
	var t time.Time
	switch v := src.(type) {
	case nil:
		if s.null != nil {
			*s.null = nil
		}
		return nil
	case time.Time:
		t = v
	case string:
		parsed, err := parseTime(v)
		if err != nil {
			return err
		}
		t = parsed
	case []byte:
		parsed, err := parseTime(string(v))
		if err != nil {
			return err
		}
		t = parsed
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}

	t = t.UTC()
	if s.null != nil {
		*s.null = &t
	} else {
		*s.dest = t
	}
	return nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", v)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Ensure interface compliance
var _ ports.Repository = (*SQLiteRepository)(nil)
