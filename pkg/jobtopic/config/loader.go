package config

import (
	"fmt"

	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
	"github.com/cognicore/jobtopic/pkg/jobtopic/lda"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/stoplist"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

// Loader loads the referenced files and constructs components
type Loader struct {
	Config Config

	// Dictionary overrides the golem English dictionary when set.
	Dictionary ingest.Dictionary
	// Tagger overrides the perceptron tagger when set.
	Tagger ingest.POSTagger
}

// Components holds everything a run needs, built from one Config
type Components struct {
	Pipeline   *ingest.Pipeline
	Stops      *stoplist.Manager
	Phrases    phrases.Options
	Vectorizer vectorize.Options
	Grid       lda.GridOptions
}

// Load reads the stoplist and exception files and returns initialized
// components
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stops := stoplist.English()
	if cfg.Stoplist != "" {
		f, err := stoplist.LoadFile(cfg.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops.Apply(f)
	}

	exceptions := ingest.DefaultExceptions()
	if cfg.LemmaExceptions != "" {
		extra, err := LoadExceptions(cfg.LemmaExceptions)
		if err != nil {
			return nil, fmt.Errorf("load lemma exceptions: %w", err)
		}
		exceptions = exceptions.Merge(extra)
	}

	dict := l.Dictionary
	if dict == nil {
		english, err := ingest.NewEnglishDictionary()
		if err != nil {
			return nil, err
		}
		dict = english
	}

	tagger := ingest.NewTagger()
	if l.Tagger != nil {
		tagger = ingest.NewTaggerWith(l.Tagger)
	}

	return &Components{
		Pipeline: ingest.NewPipeline(
			ingest.NewTokenizer(),
			tagger,
			ingest.NewLemmatizer(dict, exceptions),
			ingest.NewCleaner(stops),
		),
		Stops:      stops,
		Phrases:    cfg.PhraseOptions(),
		Vectorizer: cfg.VectorizerOptions(),
		Grid:       cfg.GridOptions(),
	}, nil
}

// PhraseOptions converts the phrases section.
func (c Config) PhraseOptions() phrases.Options {
	return phrases.Options{
		MinCount:  c.Phrases.MinCount,
		Threshold: c.Phrases.Threshold,
		Delimiter: c.Phrases.Delimiter,
		Scoring:   c.Phrases.Scoring,
	}
}

// VectorizerOptions converts the vectorizer section.
func (c Config) VectorizerOptions() vectorize.Options {
	return vectorize.Options{
		MinDF:       c.Vectorizer.MinDF,
		MaxDF:       c.Vectorizer.MaxDF,
		MinCount:    c.Vectorizer.MinCount,
		MaxFeatures: c.Vectorizer.MaxFeatures,
		NGramMax:    c.Vectorizer.NGramMax,
	}
}

// GridOptions converts the lda section. Models are saved under ModelDir.
func (c Config) GridOptions() lda.GridOptions {
	return lda.GridOptions{
		Start:      c.LDA.Start,
		Stop:       c.LDA.Stop,
		Step:       c.LDA.Step,
		TopWords:   c.LDA.TopWords,
		Iterations: c.LDA.Iterations,
		Alpha:      c.LDA.Alpha,
		Beta:       c.LDA.Beta,
		Seed:       c.LDA.Seed,
		ModelDir:   c.ModelDir,
	}
}
