package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/protokoll/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

// Store is a SQLite-backed run store.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.protokoll/data/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".protokoll", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// Save creates or replaces a run and its entries.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	skipped, err := json.Marshal(nonNilInts(run.SkippedPages))
	if err != nil {
		return fmt.Errorf("marshalling skipped pages: %w", err)
	}
	warnings, err := json.Marshal(nonNilWarnings(run.Warnings))
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}
	var insights sql.NullString
	if run.Insights != nil {
		data, err := json.Marshal(run.Insights)
		if err != nil {
			return fmt.Errorf("marshalling insights: %w", err)
		}
		insights = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, protocol_id, source, state, total_pages, pages_processed,
			skipped_pages, warnings, insights, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			protocol_id = excluded.protocol_id,
			source = excluded.source,
			state = excluded.state,
			total_pages = excluded.total_pages,
			pages_processed = excluded.pages_processed,
			skipped_pages = excluded.skipped_pages,
			warnings = excluded.warnings,
			insights = excluded.insights,
			error = excluded.error,
			updated_at = excluded.updated_at
	`,
		run.ID, run.ProtocolID, run.Source, string(run.State), run.TotalPages, run.PagesProcessed,
		string(skipped), string(warnings), insights, run.Error,
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (run_id, id, source_locator, questioner, question, witness, answer,
			note, core_statement, category_tags, justification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range run.Entries {
		_, err := stmt.ExecContext(ctx, run.ID, e.ID, e.SourceLocator,
			e.Questioner, e.Question, e.Witness, e.Answer, e.Note,
			e.CoreStatement, e.CategoryTags, e.Justification)
		if err != nil {
			return fmt.Errorf("saving entry %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a run by ID with its entries in ID order.
func (s *Store) Get(ctx context.Context, id string) (*domain.Run, error) {
	var (
		run                  domain.Run
		state                string
		skipped, warnings    string
		insights             sql.NullString
		createdAt, updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, protocol_id, source, state, total_pages, pages_processed,
			skipped_pages, warnings, insights, error, created_at, updated_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.ProtocolID, &run.Source, &state, &run.TotalPages, &run.PagesProcessed,
		&skipped, &warnings, &insights, &run.Error, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	run.State = domain.RunState(state)
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(skipped), &run.SkippedPages); err != nil {
		return nil, fmt.Errorf("unmarshalling skipped pages: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &run.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshalling warnings: %w", err)
	}
	if insights.Valid {
		run.Insights = &domain.KeyInsights{}
		if err := json.Unmarshal([]byte(insights.String), run.Insights); err != nil {
			return nil, fmt.Errorf("unmarshalling insights: %w", err)
		}
	}
	if len(run.SkippedPages) == 0 {
		run.SkippedPages = nil
	}
	if len(run.Warnings) == 0 {
		run.Warnings = nil
	}

	entries, err := s.entries(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Entries = entries

	return &run, nil
}

func (s *Store) entries(ctx context.Context, runID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_locator, questioner, question, witness, answer, note,
			core_statement, category_tags, justification
		FROM entries WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.SourceLocator, &e.Questioner, &e.Question, &e.Witness,
			&e.Answer, &e.Note, &e.CoreStatement, &e.CategoryTags, &e.Justification); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// List returns summaries of all runs, newest first.
func (s *Store) List(ctx context.Context) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.protocol_id, r.source, r.state, r.insights IS NOT NULL, r.created_at,
			(SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id),
			(SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id
				AND e.core_statement IS NOT NULL AND e.core_statement != '')
		FROM runs r
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var result []domain.RunSummary
	for rows.Next() {
		var (
			sum       domain.RunSummary
			state     string
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.ProtocolID, &sum.Source, &state, &sum.HasInsight,
			&createdAt, &sum.Entries, &sum.Enriched); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		sum.State = domain.RunState(state)
		sum.CreatedAt = parseTime(createdAt)
		result = append(result, sum)
	}

	return result, rows.Err()
}

// Delete removes a run and its entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reset removes all runs.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs"); err != nil {
		return fmt.Errorf("resetting runs: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilWarnings(v []domain.ChunkWarning) []domain.ChunkWarning {
	if v == nil {
		return []domain.ChunkWarning{}
	}
	return v
}
