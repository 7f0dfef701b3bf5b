package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// Config is the jobtopic configuration file.
type Config struct {
	Database        string `yaml:"database"`
	ModelDir        string `yaml:"model_dir"`
	Workers         int    `yaml:"workers"`
	PhraseStore     string `yaml:"phrase_store"`     // "file" (model_dir) or "database"
	Stoplist        string `yaml:"stoplist"`         // optional YAML stoplist file
	LemmaExceptions string `yaml:"lemma_exceptions"` // optional YAML exceptions file

	Phrases    Phrases    `yaml:"phrases"`
	Vectorizer Vectorizer `yaml:"vectorizer"`
	LDA        LDA        `yaml:"lda"`
	HTTP       HTTP       `yaml:"http"`
}

// Phrases configures first-generation phrase detection.
type Phrases struct {
	MinCount  int64   `yaml:"min_count"`
	Threshold float64 `yaml:"threshold"`
	Delimiter string  `yaml:"delimiter"`
	Scoring   string  `yaml:"scoring"`
}

// Vectorizer configures the bag-of-words vocabulary.
type Vectorizer struct {
	MinDF       float64 `yaml:"min_df"`
	MaxDF       float64 `yaml:"max_df"`
	MinCount    int     `yaml:"min_count"`
	MaxFeatures int     `yaml:"max_features"`
	NGramMax    int     `yaml:"ngram_max"`
}

// LDA configures the topic-count grid search.
type LDA struct {
	Start      int     `yaml:"start"`
	Stop       int     `yaml:"stop"`
	Step       int     `yaml:"step"`
	TopWords   int     `yaml:"top_words"`
	Iterations int     `yaml:"iterations"`
	Alpha      float64 `yaml:"alpha"`
	Beta       float64 `yaml:"beta"`
	Seed       uint64  `yaml:"seed"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:    "data/jobs.sqlite",
		ModelDir:    "model",
		Workers:     4,
		PhraseStore: "file",
		Phrases: Phrases{
			MinCount:  5,
			Threshold: 10,
			Delimiter: "_",
			Scoring:   "default",
		},
		Vectorizer: Vectorizer{
			MinDF:    0.05,
			MaxDF:    0.95,
			NGramMax: 1,
		},
		LDA: LDA{
			Start:      6,
			Stop:       52,
			Step:       2,
			TopWords:   20,
			Iterations: 200,
			Seed:       42,
		},
		HTTP: HTTP{Addr: ":8080"},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.Database == "" {
		problems = append(problems, "database is required")
	}
	if c.ModelDir == "" {
		problems = append(problems, "model_dir is required")
	}
	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	switch c.PhraseStore {
	case "file", "database":
	default:
		problems = append(problems, fmt.Sprintf("phrase_store %q is not file or database", c.PhraseStore))
	}
	if c.Phrases.MinCount < 1 {
		problems = append(problems, "phrases.min_count must be at least 1")
	}
	switch c.Phrases.Scoring {
	case "default", "npmi":
	default:
		problems = append(problems, fmt.Sprintf("phrases.scoring %q is not default or npmi", c.Phrases.Scoring))
	}
	if c.Vectorizer.MinDF < 0 || c.Vectorizer.MaxDF > 1 || c.Vectorizer.MinDF > c.Vectorizer.MaxDF {
		problems = append(problems, "vectorizer document frequency bounds must satisfy 0 <= min_df <= max_df <= 1")
	}
	if c.Vectorizer.NGramMax < 1 || c.Vectorizer.NGramMax > 4 {
		problems = append(problems, "vectorizer.ngram_max must be 1..4")
	}
	if c.LDA.Start < 1 || c.LDA.Step < 1 || c.LDA.Stop <= c.LDA.Start {
		problems = append(problems, "lda range needs 1 <= start < stop and step >= 1")
	}
	if c.LDA.TopWords < 1 {
		problems = append(problems, "lda.top_words must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadExceptions reads lemma overrides keyed by part of speech:
//
//	noun:
//	  data: data
//	verb:
//	  saw: see
func LoadExceptions(path string) (ingest.Exceptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	out := make(ingest.Exceptions, len(raw))
	for name, words := range raw {
		cat := ingest.ParseCategory(strings.ToLower(name))
		if cat == ingest.CategoryNone {
			return nil, fmt.Errorf("%w: %s: unknown part of speech %q", internalerr.ErrInvalidConfig, path, name)
		}
		if out[cat] == nil {
			out[cat] = make(map[string]string, len(words))
		}
		for w, l := range words {
			out[cat][strings.ToLower(w)] = strings.ToLower(l)
		}
	}
	return out, nil
}
