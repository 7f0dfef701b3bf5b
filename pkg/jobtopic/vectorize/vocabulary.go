package vectorize

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Vocabulary maps terms to matrix columns. Terms are kept sorted so a
// column index is stable for a given term set.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from distinct terms.
func NewVocabulary(terms []string) *Vocabulary {
	sorted := append([]string(nil), terms...)
	sort.Strings(sorted)
	v := &Vocabulary{terms: sorted[:0], index: make(map[string]int, len(sorted))}
	for _, t := range sorted {
		if _, dup := v.index[t]; dup {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
	return v
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Terms returns a copy of all terms in column order.
func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

type vocabularyJSON struct {
	Terms []string `json:"terms"`
}

// WriteJSON writes the vocabulary as {"terms": [...]}.
func (v *Vocabulary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(vocabularyJSON{Terms: v.terms})
}

// ReadVocabulary reads a vocabulary written by WriteJSON.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	var raw vocabularyJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if len(raw.Terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return NewVocabulary(raw.Terms), nil
}
