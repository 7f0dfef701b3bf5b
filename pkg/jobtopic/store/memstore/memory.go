package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	jobs     []store.Job // ordered by id; id = index+1
	urlIndex map[string]int64
	models   map[string]*phrases.Combiner
	versions map[string]int64
	saves    int64
}

var (
	_ store.Store       = (*Store)(nil)
	_ phrases.Versioner = (*Store)(nil)
)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		urlIndex: make(map[string]int64),
		models:   make(map[string]*phrases.Combiner),
		versions: make(map[string]int64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// InsertJob stores a job keyed by URL.
func (s *Store) InsertJob(ctx context.Context, j store.Job) (int64, error) {
	if err := j.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urlIndex[j.URL]; ok {
		return 0, fmt.Errorf("%w: job url %q", internalerr.ErrDuplicate, j.URL)
	}
	j.ID = int64(len(s.jobs) + 1)
	s.jobs = append(s.jobs, j)
	s.urlIndex[j.URL] = j.ID
	return j.ID, nil
}

// GetJob returns a job by ID.
func (s *Store) GetJob(ctx context.Context, id int64) (store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.jobs)) {
		return store.Job{}, fmt.Errorf("job %d: %w", id, internalerr.ErrNotFound)
	}
	return s.jobs[id-1], nil
}

// ListJobs returns a page of jobs ordered by id.
func (s *Store) ListJobs(ctx context.Context, offset, limit int) ([]store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.jobs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.jobs) {
		end = len(s.jobs)
	}
	return append([]store.Job(nil), s.jobs[offset:end]...), nil
}

// CountJobs returns the number of stored jobs.
func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.jobs)), nil
}

// Texts returns one field of every job in id order.
func (s *Store) Texts(ctx context.Context, field store.Field) ([]string, error) {
	if field != store.FieldDescription && field != store.FieldTitle {
		return nil, fmt.Errorf("%w: unknown job field %q", internalerr.ErrInvalidInput, field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = j.Text(field)
	}
	return out, nil
}

// SaveCombiner keeps the combiner under its prefix. Models are immutable
// once trained, so no copy is taken.
func (s *Store) SaveCombiner(ctx context.Context, c *phrases.Combiner) error {
	if err := phrases.ValidatePrefix(c.Prefix); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[c.Prefix] = c
	s.saves++
	s.versions[c.Prefix] = s.saves
	return nil
}

// LoadCombiner returns the combiner saved under prefix.
func (s *Store) LoadCombiner(ctx context.Context, prefix string) (*phrases.Combiner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.models[prefix]
	if !ok {
		return nil, &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix}
	}
	return c, nil
}

// CombinerVersion returns a counter bumped by every SaveCombiner.
func (s *Store) CombinerVersion(ctx context.Context, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[prefix]
	if !ok {
		return "", &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix}
	}
	return strconv.FormatInt(v, 10), nil
}
