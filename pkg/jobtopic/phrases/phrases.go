package phrases

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/pmi"
)

// Scoring names accepted in Options.
const (
	ScoringDefault = "default"
	ScoringNPMI    = "npmi"
)

// Options controls phrase detection.
type Options struct {
	MinCount  int64   // pairs seen fewer times never score
	Threshold float64 // a pair is a phrase when its score is strictly above this
	Delimiter string  // glue between merged tokens
	Scoring   string  // "default" or "npmi"
}

// DefaultOptions returns the standard first-generation settings.
func DefaultOptions() Options {
	return Options{
		MinCount:  5,
		Threshold: 10.0,
		Delimiter: "_",
		Scoring:   ScoringDefault,
	}
}

func (o Options) normalized() (Options, error) {
	if o.Delimiter == "" {
		o.Delimiter = "_"
	}
	if o.Scoring == "" {
		o.Scoring = ScoringDefault
	}
	if o.MinCount < 0 {
		return o, fmt.Errorf("%w: min count %d is negative", internalerr.ErrInvalidInput, o.MinCount)
	}
	switch o.Scoring {
	case ScoringDefault:
	case ScoringNPMI:
		if o.Threshold < -1 || o.Threshold > 1 {
			return o, fmt.Errorf("%w: npmi threshold %.3f outside [-1, 1]", internalerr.ErrInvalidInput, o.Threshold)
		}
	default:
		return o, fmt.Errorf("%w: unknown scoring %q", internalerr.ErrInvalidInput, o.Scoring)
	}
	return o, nil
}

func scorerFor(name string) pmi.Scorer {
	if name == ScoringNPMI {
		return pmi.NPMIScore
	}
	return pmi.DefaultScore
}

// Model is a frozen phrase detector: the set of adjacent pairs that scored
// above threshold on its training corpus. A Model is immutable after Learn
// and safe for concurrent use.
type Model struct {
	opts    Options
	phrases map[pmi.Bigram]float64
}

// Learn counts unigrams and adjacent bigrams over corpus and freezes every
// pair scoring strictly above the threshold.
func Learn(corpus [][]string, opts Options) (*Model, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	counter := pmi.NewBigramCounter()
	for _, doc := range corpus {
		counter.AddSentence(doc)
	}

	scorer := scorerFor(opts.Scoring)
	m := &Model{opts: opts, phrases: make(map[pmi.Bigram]float64)}
	for b, n := range counter.Bigrams {
		if n < opts.MinCount {
			continue
		}
		if score := counter.Score(b, opts.MinCount, scorer); score > opts.Threshold {
			m.phrases[b] = score
		}
	}
	return m, nil
}

// Options returns the settings the model was trained with.
func (m *Model) Options() Options {
	return m.opts
}

// Len returns the number of frozen phrases.
func (m *Model) Len() int {
	return len(m.phrases)
}

// Score returns the training score of a frozen pair.
func (m *Model) Score(a, b string) (float64, bool) {
	s, ok := m.phrases[pmi.Bigram{A: a, B: b}]
	return s, ok
}

// Apply merges frozen pairs greedily from left to right. A token consumed
// by a merge never starts another pair.
func (m *Model) Apply(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	i := 0
	for i < len(tokens) {
		if i+1 < len(tokens) {
			if _, ok := m.phrases[pmi.Bigram{A: tokens[i], B: tokens[i+1]}]; ok {
				out = append(out, tokens[i]+m.opts.Delimiter+tokens[i+1])
				i += 2
				continue
			}
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// ApplyCorpus applies the model to every document.
func (m *Model) ApplyCorpus(corpus [][]string) [][]string {
	out := make([][]string, len(corpus))
	for i, doc := range corpus {
		out[i] = m.Apply(doc)
	}
	return out
}

// Phrase is one frozen pair with its training score.
type Phrase struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// Phrases lists the frozen pairs sorted by (A, B).
func (m *Model) Phrases() []Phrase {
	out := make([]Phrase, 0, len(m.phrases))
	for b, s := range m.phrases {
		out = append(out, Phrase{A: b.A, B: b.B, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

type modelJSON struct {
	MinCount  int64    `json:"min_count"`
	Threshold float64  `json:"threshold"`
	Delimiter string   `json:"delimiter"`
	Scoring   string   `json:"scoring"`
	Phrases   []Phrase `json:"phrases"`
}

// MarshalJSON encodes the model with phrases in sorted order, so equal
// models encode to equal bytes.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelJSON{
		MinCount:  m.opts.MinCount,
		Threshold: m.opts.Threshold,
		Delimiter: m.opts.Delimiter,
		Scoring:   m.opts.Scoring,
		Phrases:   m.Phrases(),
	})
}

// UnmarshalJSON decodes a model written by MarshalJSON.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	opts, err := Options{
		MinCount:  raw.MinCount,
		Threshold: raw.Threshold,
		Delimiter: raw.Delimiter,
		Scoring:   raw.Scoring,
	}.normalized()
	if err != nil {
		return err
	}
	m.opts = opts
	m.phrases = make(map[pmi.Bigram]float64, len(raw.Phrases))
	for _, p := range raw.Phrases {
		if p.A == "" || p.B == "" {
			return fmt.Errorf("phrase with empty token")
		}
		m.phrases[pmi.Bigram{A: p.A, B: p.B}] = p.Score
	}
	return nil
}
