// Package catalog persists canonical scholarship lists to SQLite. The
// dedup engine itself is stateless; the catalog is the downstream
// collaborator that stores what the engine produces.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/scholarsift/scholarsift/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS scholarships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	organization TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL DEFAULT '',
	deadline TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	eligibility TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '',
	link TEXT NOT NULL DEFAULT '',
	extra TEXT NOT NULL DEFAULT '{}',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scholarships_source ON scholarships(source);
`

// Store is a SQLite-backed scholarship catalog.
type Store struct {
	db *sql.DB
}

// Open creates or opens a catalog database at the given path. WAL mode
// keeps concurrent readers cheap.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Replace atomically swaps the canonical list stored for a source.
func (s *Store) Replace(ctx context.Context, source string, records []types.ScholarshipRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scholarships WHERE source = ?", source); err != nil {
		return fmt.Errorf("failed to clear source %q: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scholarships
			(source, title, organization, amount, deadline, description, eligibility, requirements, link, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		extra, err := json.Marshal(r.Extra)
		if err != nil {
			return fmt.Errorf("failed to serialize extra fields of record %d: %w", i, err)
		}
		if r.Extra == nil {
			extra = []byte("{}")
		}

		if _, err := stmt.ExecContext(ctx,
			source, r.Title, r.Organization, r.Amount, r.Deadline,
			r.Description, r.Eligibility, r.Requirements, r.Link, string(extra),
		); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// List returns the canonical records stored for a source, in insertion
// order. An empty source returns every record.
func (s *Store) List(ctx context.Context, source string) ([]types.ScholarshipRecord, error) {
	query := `
		SELECT source, title, organization, amount, deadline, description, eligibility, requirements, link, extra
		FROM scholarships`
	args := []any{}
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scholarships: %w", err)
	}
	defer rows.Close()

	var out []types.ScholarshipRecord
	for rows.Next() {
		var r types.ScholarshipRecord
		var extra string
		if err := rows.Scan(&r.Source, &r.Title, &r.Organization, &r.Amount, &r.Deadline,
			&r.Description, &r.Eligibility, &r.Requirements, &r.Link, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan scholarship row: %w", err)
		}
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
				return nil, fmt.Errorf("failed to decode extra fields: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored scholarship records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scholarships").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scholarships: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
