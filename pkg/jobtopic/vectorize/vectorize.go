package vectorize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// ErrEmptyVocabulary is returned when pruning leaves no terms.
var ErrEmptyVocabulary = errors.New("no terms remain after pruning")

// ErrNotFitted is returned by Transform before Fit.
var ErrNotFitted = errors.New("vectorizer is not fitted")

// Options controls vocabulary pruning.
type Options struct {
	MinDF       float64 // drop terms in fewer than this fraction of documents
	MaxDF       float64 // drop terms in more than this fraction of documents
	MinCount    int     // drop terms seen fewer times in total
	MaxFeatures int     // keep only the most frequent terms; 0 keeps all
	NGramMax    int     // longest n-gram counted, 1..4
}

// DefaultOptions returns the standard bag-of-words settings.
func DefaultOptions() Options {
	return Options{
		MinDF:    0.05,
		MaxDF:    0.95,
		NGramMax: 1,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.MinDF < 0 || o.MinDF > 1 || o.MaxDF <= 0 || o.MaxDF > 1 {
		return fmt.Errorf("%w: document frequency bounds must be ratios in [0, 1]", internalerr.ErrInvalidInput)
	}
	if o.MinDF > o.MaxDF {
		return fmt.Errorf("%w: min_df %.2f exceeds max_df %.2f", internalerr.ErrInvalidInput, o.MinDF, o.MaxDF)
	}
	if o.NGramMax < 1 || o.NGramMax > 4 {
		return fmt.Errorf("%w: ngram_max %d outside 1..4", internalerr.ErrInvalidInput, o.NGramMax)
	}
	if o.MinCount < 0 || o.MaxFeatures < 0 {
		return fmt.Errorf("%w: negative count limit", internalerr.ErrInvalidInput)
	}
	return nil
}

// CountVectorizer turns token sequences into term-count vectors over a
// learned vocabulary.
type CountVectorizer struct {
	opts  Options
	vocab *Vocabulary
}

// NewCountVectorizer creates an unfitted vectorizer.
func NewCountVectorizer(opts Options) (*CountVectorizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &CountVectorizer{opts: opts}, nil
}

// Vocabulary returns the fitted vocabulary, or nil before Fit.
func (v *CountVectorizer) Vocabulary() *Vocabulary {
	return v.vocab
}

// Fit learns the vocabulary from docs.
func (v *CountVectorizer) Fit(docs [][]string) error {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range ngrams(doc, v.opts.NGramMax) {
			tf[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	n := float64(len(docs))
	minDocs := v.opts.MinDF * n
	maxDocs := v.opts.MaxDF * n

	var terms []string
	for term, d := range df {
		if float64(d) < minDocs || float64(d) > maxDocs {
			continue
		}
		if tf[term] < v.opts.MinCount {
			continue
		}
		terms = append(terms, term)
	}

	if v.opts.MaxFeatures > 0 && len(terms) > v.opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.opts.MaxFeatures]
	}

	if len(terms) == 0 {
		return ErrEmptyVocabulary
	}
	v.vocab = NewVocabulary(terms)
	return nil
}

// Transform counts vocabulary terms in each document. Terms outside the
// vocabulary are ignored.
func (v *CountVectorizer) Transform(docs [][]string) (*Matrix, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}
	m := &Matrix{Cols: v.vocab.Len(), Rows: make([][]Entry, len(docs))}
	for i, doc := range docs {
		counts := make(map[int]int)
		for _, term := range ngrams(doc, v.opts.NGramMax) {
			if col, ok := v.vocab.Index(term); ok {
				counts[col]++
			}
		}
		row := make([]Entry, 0, len(counts))
		for col, c := range counts {
			row = append(row, Entry{Col: col, Count: c})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Col < row[b].Col })
		m.Rows[i] = row
	}
	return m, nil
}

// FitTransform fits on docs and transforms them.
func (v *CountVectorizer) FitTransform(docs [][]string) (*Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// ngrams lists every 1..max-gram of doc, space-joined.
func ngrams(doc []string, max int) []string {
	if max <= 1 {
		return doc
	}
	out := make([]string, 0, len(doc)*max)
	for n := 1; n <= max; n++ {
		for i := 0; i+n <= len(doc); i++ {
			out = append(out, strings.Join(doc[i:i+n], " "))
		}
	}
	return out
}

// Entry is one non-zero cell of a count matrix.
type Entry struct {
	Col   int
	Count int
}

// Matrix is a sparse document-term count matrix with one row per document.
type Matrix struct {
	Cols int
	Rows [][]Entry
}

// NumRows returns the number of documents.
func (m *Matrix) NumRows() int {
	return len(m.Rows)
}

// NonZero returns the number of stored entries.
func (m *Matrix) NonZero() int {
	n := 0
	for _, r := range m.Rows {
		n += len(r)
	}
	return n
}

// RowSum returns the total count of row i.
func (m *Matrix) RowSum(i int) int {
	s := 0
	for _, e := range m.Rows[i] {
		s += e.Count
	}
	return s
}

// Total returns the sum of all counts.
func (m *Matrix) Total() int {
	s := 0
	for i := range m.Rows {
		s += m.RowSum(i)
	}
	return s
}

// ColumnDF returns, per column, the number of rows it appears in.
func (m *Matrix) ColumnDF() []int {
	df := make([]int, m.Cols)
	for _, r := range m.Rows {
		for _, e := range r {
			df[e.Col]++
		}
	}
	return df
}

// Density returns the fraction of non-zero cells.
func (m *Matrix) Density() float64 {
	cells := float64(m.NumRows()) * float64(m.Cols)
	if cells == 0 {
		return 0
	}
	return float64(m.NonZero()) / cells
}
