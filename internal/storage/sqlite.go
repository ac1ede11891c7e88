package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding work-log fragments and clock events.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "punchlog.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Fragments ---

// SaveFragment appends a fragment. Fragments are append-only; edits happen
// by deleting and re-recording.
func (s *Store) SaveFragment(f FragmentRecord) error {
	tags := f.Tags
	if tags == "" {
		tags = "[]"
	}
	_, err := s.db.Exec(`
		INSERT INTO fragments (id, type, content, occurred_date, source, author, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Type, f.Content, f.OccurredDate, f.Source, f.Author, tags,
		f.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// FragmentsByDate returns the fragments for a calendar date in created_at
// ascending order. An empty author means no author filter.
func (s *Store) FragmentsByDate(date, author string) ([]FragmentRecord, error) {
	query := `
		SELECT id, type, content, occurred_date, source, author, tags, created_at
		FROM fragments WHERE occurred_date = ?`
	args := []any{date}
	if author != "" {
		query += " AND author = ?"
		args = append(args, author)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FragmentRecord
	for rows.Next() {
		var f FragmentRecord
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Type, &f.Content, &f.OccurredDate, &f.Source, &f.Author, &f.Tags, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		f.CreatedAt = t
		results = append(results, f)
	}
	return results, rows.Err()
}

// GetFragment returns a single fragment by id.
func (s *Store) GetFragment(id string) (FragmentRecord, error) {
	var f FragmentRecord
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, type, content, occurred_date, source, author, tags, created_at
		FROM fragments WHERE id = ?`, id,
	).Scan(&f.ID, &f.Type, &f.Content, &f.OccurredDate, &f.Source, &f.Author, &f.Tags, &createdAt)
	if err == sql.ErrNoRows {
		return FragmentRecord{}, ErrNotFound
	}
	if err != nil {
		return FragmentRecord{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return FragmentRecord{}, fmt.Errorf("parsing created_at: %w", err)
	}
	f.CreatedAt = t
	return f, nil
}

// DeleteFragment removes a fragment by id. Returns ErrNotFound when no row matched.
func (s *Store) DeleteFragment(id string) error {
	res, err := s.db.Exec("DELETE FROM fragments WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Clock events ---

// SaveClockEvent upserts the clock event for (date, event_type). A timeout
// never overwrites an existing confirmation.
func (s *Store) SaveClockEvent(e ClockEvent) error {
	if e.Status == ClockTimeout {
		existing, err := s.GetClockEvent(e.Date, e.EventType)
		if err == nil && existing.Status == ClockConfirmed {
			return nil
		}
		if err != nil && err != ErrNotFound {
			return err
		}
	}
	_, err := s.db.Exec(`
		INSERT INTO clock_events (date, event_type, status, confirmed_at, channel, note)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, event_type) DO UPDATE SET
			status = excluded.status,
			confirmed_at = excluded.confirmed_at,
			channel = excluded.channel,
			note = excluded.note`,
		e.Date, e.EventType, e.Status, e.ConfirmedAt.UTC().Format(time.RFC3339), e.Channel, e.Note,
	)
	return err
}

// GetClockEvent returns the clock event for (date, event_type).
func (s *Store) GetClockEvent(date, eventType string) (ClockEvent, error) {
	var e ClockEvent
	var confirmedAt string
	err := s.db.QueryRow(`
		SELECT date, event_type, status, confirmed_at, channel, note
		FROM clock_events WHERE date = ? AND event_type = ?`, date, eventType,
	).Scan(&e.Date, &e.EventType, &e.Status, &confirmedAt, &e.Channel, &e.Note)
	if err == sql.ErrNoRows {
		return ClockEvent{}, ErrNotFound
	}
	if err != nil {
		return ClockEvent{}, err
	}
	t, err := time.Parse(time.RFC3339, confirmedAt)
	if err != nil {
		return ClockEvent{}, fmt.Errorf("parsing confirmed_at: %w", err)
	}
	e.ConfirmedAt = t
	return e, nil
}

// ClockEventsByDate returns all clock events recorded for a date.
func (s *Store) ClockEventsByDate(date string) ([]ClockEvent, error) {
	rows, err := s.db.Query(`
		SELECT date, event_type, status, confirmed_at, channel, note
		FROM clock_events WHERE date = ? ORDER BY event_type ASC`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ClockEvent
	for rows.Next() {
		var e ClockEvent
		var confirmedAt string
		if err := rows.Scan(&e.Date, &e.EventType, &e.Status, &confirmedAt, &e.Channel, &e.Note); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, confirmedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing confirmed_at: %w", err)
		}
		e.ConfirmedAt = t
		results = append(results, e)
	}
	return results, rows.Err()
}
