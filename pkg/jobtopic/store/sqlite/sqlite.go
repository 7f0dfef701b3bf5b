package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
)

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

var (
	_ store.Store       = (*Store)(nil)
	_ phrases.Versioner = (*Store)(nil)
)

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS phrase_models (
	prefix TEXT NOT NULL,
	generation INTEGER NOT NULL,
	run_id TEXT NOT NULL,
	trained_at TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY(prefix, generation)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// InsertJob stores a posting and returns its id. A URL that is already
// stored yields internalerr.ErrDuplicate.
func (s *Store) InsertJob(ctx context.Context, j store.Job) (int64, error) {
	if err := j.Validate(); err != nil {
		return 0, err
	}

	const stmt = `
INSERT INTO jobs (title, url, description)
VALUES (?, ?, ?)
ON CONFLICT(url) DO NOTHING
RETURNING id;
`

	var id int64
	err := s.db.QueryRowContext(ctx, stmt, j.Title, j.URL, j.Description).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: job url %q", internalerr.ErrDuplicate, j.URL)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetJob returns a job by id.
func (s *Store) GetJob(ctx context.Context, id int64) (store.Job, error) {
	var j store.Job
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, url, description FROM jobs WHERE id = ?`, id,
	).Scan(&j.ID, &j.Title, &j.URL, &j.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Job{}, fmt.Errorf("job %d: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Job{}, err
	}
	return j, nil
}

// ListJobs returns jobs ordered by id.
func (s *Store) ListJobs(ctx context.Context, offset, limit int) ([]store.Job, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, url, description FROM jobs ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		var j store.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.URL, &j.Description); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountJobs returns the number of stored jobs.
func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

// Texts returns one field of every job, ordered by id.
func (s *Store) Texts(ctx context.Context, field store.Field) ([]string, error) {
	var query string
	switch field {
	case store.FieldDescription:
		query = `SELECT description FROM jobs ORDER BY id`
	case store.FieldTitle:
		query = `SELECT title FROM jobs ORDER BY id`
	default:
		return nil, fmt.Errorf("%w: unknown job field %q", internalerr.ErrInvalidInput, field)
	}
	return s.loadStringColumn(ctx, query)
}

// SaveCombiner stores both phrase generations under one run id, replacing
// any earlier run for the prefix.
func (s *Store) SaveCombiner(ctx context.Context, c *phrases.Combiner) error {
	if err := phrases.ValidatePrefix(c.Prefix); err != nil {
		return err
	}

	runID := s.newRunID()
	trainedAt := s.now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO phrase_models (prefix, generation, run_id, trained_at, data)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(prefix, generation) DO UPDATE SET
	run_id=excluded.run_id,
	trained_at=excluded.trained_at,
	data=excluded.data;
`
	for gen, m := range []*phrases.Model{c.First, c.Second} {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode %s generation %d: %w", c.Prefix, gen+1, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, c.Prefix, gen+1, runID, trainedAt, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadCombiner reads both phrase generations for prefix.
func (s *Store) LoadCombiner(ctx context.Context, prefix string) (*phrases.Combiner, error) {
	if err := phrases.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	c := &phrases.Combiner{Prefix: prefix}
	for gen, dst := range []**phrases.Model{&c.First, &c.Second} {
		var data string
		err := s.db.QueryRowContext(ctx,
			`SELECT data FROM phrase_models WHERE prefix = ? AND generation = ?`, prefix, gen+1,
		).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix}
		}
		if err != nil {
			return nil, err
		}
		m, err := phrases.DecodeModel([]byte(data))
		if err != nil {
			return nil, &internalerr.ModelMalformedError{Kind: "phrase", Prefix: prefix, Err: err}
		}
		*dst = m
	}
	return c, nil
}

// PhraseRun describes the stored training run of a prefix.
type PhraseRun struct {
	Prefix    string
	RunID     string
	TrainedAt time.Time
}

// LatestPhraseRun returns the run that produced the stored models for prefix.
func (s *Store) LatestPhraseRun(ctx context.Context, prefix string) (PhraseRun, error) {
	var run PhraseRun
	var trainedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT prefix, run_id, trained_at FROM phrase_models WHERE prefix = ? AND generation = 1`, prefix,
	).Scan(&run.Prefix, &run.RunID, &trainedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PhraseRun{}, &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix}
	}
	if err != nil {
		return PhraseRun{}, err
	}
	run.TrainedAt, err = time.Parse(time.RFC3339, trainedAt)
	if err != nil {
		return PhraseRun{}, fmt.Errorf("parse trained_at: %w", err)
	}
	return run, nil
}

// CombinerVersion returns the run id of the stored models for prefix.
func (s *Store) CombinerVersion(ctx context.Context, prefix string) (string, error) {
	run, err := s.LatestPhraseRun(ctx, prefix)
	if err != nil {
		return "", err
	}
	return run.RunID, nil
}

func (s *Store) newRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *Store) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
