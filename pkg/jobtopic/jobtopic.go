package jobtopic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
)

// Engine is the main job-posting text facade: it stores postings, runs
// them through the cleaning pipeline and trains and applies phrase models.
type Engine struct {
	store      store.Store
	pipeline   *ingest.Pipeline
	repo       phrases.Repository
	phraseOpts phrases.Options
	workers    int
	logger     *log.Logger

	mu        sync.RWMutex
	combiners map[string]cachedCombiner
}

// cachedCombiner pairs loaded models with the repository version they were
// loaded at. version is empty when the repository is not a Versioner.
type cachedCombiner struct {
	c       *phrases.Combiner
	version string
}

// Options configures an Engine instance
type Options struct {
	Store    store.Store
	Pipeline *ingest.Pipeline
	// Phrases stores phrase models; nil means Store.
	Phrases       phrases.Repository
	PhraseOptions phrases.Options
	Workers       int
	Logger        *log.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	repo := opts.Phrases
	if repo == nil {
		repo = opts.Store
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		store:      opts.Store,
		pipeline:   opts.Pipeline,
		repo:       repo,
		phraseOpts: opts.PhraseOptions,
		workers:    workers,
		logger:     logger,
		combiners:  make(map[string]cachedCombiner),
	}
}

// Close cleanly shuts down the engine
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying job store.
func (e *Engine) Store() store.Store {
	return e.store
}

// Ingest stores a scraped posting with its HTML stripped.
func (e *Engine) Ingest(ctx context.Context, j ingest.Job) (int64, error) {
	if err := j.Validate(); err != nil {
		return 0, err
	}
	title, err := ingest.ExtractText(j.Title)
	if err != nil {
		return 0, fmt.Errorf("extract title: %w", err)
	}
	desc, err := ingest.ExtractText(j.Description)
	if err != nil {
		return 0, fmt.Errorf("extract description: %w", err)
	}
	return e.store.InsertJob(ctx, store.Job{Title: title, URL: j.URL, Description: desc})
}

// Process cleans one document.
func (e *Engine) Process(doc string) []string {
	return e.pipeline.Process(doc)
}

// Trace cleans one document and keeps every intermediate stage.
func (e *Engine) Trace(doc string) ingest.Stages {
	return e.pipeline.Trace(doc)
}

// ProcessDocs cleans a batch; the i-th result belongs to the i-th document.
func (e *Engine) ProcessDocs(ctx context.Context, docs []string) ([][]string, error) {
	return e.pipeline.ProcessAll(ctx, docs, e.workers)
}

// CombinePhrasesCorpus trains both phrase generations on a cleaned corpus,
// persists them under prefix and returns the phrase-merged corpus.
// Training again under the same prefix replaces the stored models.
func (e *Engine) CombinePhrasesCorpus(ctx context.Context, corpus [][]string, prefix string) ([][]string, error) {
	c, merged, err := phrases.Train(corpus, prefix, e.phraseOpts)
	if err != nil {
		return nil, err
	}
	if err := e.repo.SaveCombiner(ctx, c); err != nil {
		return nil, fmt.Errorf("save phrase models %q: %w", prefix, err)
	}

	version, err := e.combinerVersion(ctx, prefix)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.combiners[prefix] = cachedCombiner{c: c, version: version}
	e.mu.Unlock()

	e.logger.Printf("trained phrase models %q: %d first-generation and %d second-generation phrases over %d documents",
		prefix, c.First.Len(), c.Second.Len(), len(corpus))
	return merged, nil
}

// CombinePhrasesDoc merges phrases in one cleaned document using the
// models stored under prefix. Without trained models it returns the
// not-found error rather than the unmerged document.
func (e *Engine) CombinePhrasesDoc(ctx context.Context, doc []string, prefix string) ([]string, error) {
	c, err := e.combiner(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return c.Combine(doc), nil
}

func (e *Engine) combiner(ctx context.Context, prefix string) (*phrases.Combiner, error) {
	if err := phrases.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	// Another process may have retrained the prefix since it was cached.
	version, err := e.combinerVersion(ctx, prefix)
	if err == nil {
		e.mu.RLock()
		cached, ok := e.combiners[prefix]
		e.mu.RUnlock()
		if ok && cached.version == version {
			return cached.c, nil
		}
	}

	var c *phrases.Combiner
	if err == nil {
		c, err = e.repo.LoadCombiner(ctx, prefix)
	}
	if errors.Is(err, internalerr.ErrModelNotFound) {
		e.mu.Lock()
		delete(e.combiners, prefix)
		e.mu.Unlock()
		e.logger.Printf("no phrase models for prefix %q: call CombinePhrasesCorpus first", prefix)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.combiners[prefix] = cachedCombiner{c: c, version: version}
	e.mu.Unlock()
	return c, nil
}

// combinerVersion reports the stored version of prefix, or "" when the
// repository does not track versions.
func (e *Engine) combinerVersion(ctx context.Context, prefix string) (string, error) {
	v, ok := e.repo.(phrases.Versioner)
	if !ok {
		return "", nil
	}
	return v.CombinerVersion(ctx, prefix)
}

// BuildCorpus cleans one text field of every stored job and trains phrase
// models on the result under prefix.
func (e *Engine) BuildCorpus(ctx context.Context, field store.Field, prefix string) ([][]string, error) {
	texts, err := e.store.Texts(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("load %s texts: %w", field, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no stored jobs", internalerr.ErrNotFound)
	}
	e.logger.Printf("processing %d %s texts with %d workers", len(texts), field, e.workers)

	corpus, err := e.ProcessDocs(ctx, texts)
	if err != nil {
		return nil, err
	}
	return e.CombinePhrasesCorpus(ctx, corpus, prefix)
}

// Analyzer returns a raw-text analyzer that cleans a document and merges
// phrases with the models stored under prefix.
func (e *Engine) Analyzer(ctx context.Context, prefix string) (func(string) []string, error) {
	c, err := e.combiner(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return func(doc string) []string {
		return c.Combine(e.pipeline.Process(doc))
	}, nil
}
