package phrases

import (
	"fmt"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// Combiner chains two phrase generations. The first joins word pairs into
// bigrams; the second, trained on the first's output, joins those into
// trigrams and quadgrams.
type Combiner struct {
	Prefix string
	First  *Model
	Second *Model
}

// Train learns both generations for prefix and returns the combiner with
// the merged corpus. The second generation uses opts with MinCount 1.
func Train(corpus [][]string, prefix string, opts Options) (*Combiner, [][]string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, nil, err
	}

	first, err := Learn(corpus, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("learn first generation: %w", err)
	}
	bigrams := first.ApplyCorpus(corpus)

	secondOpts := opts
	secondOpts.MinCount = 1
	second, err := Learn(bigrams, secondOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("learn second generation: %w", err)
	}

	c := &Combiner{Prefix: prefix, First: first, Second: second}
	return c, second.ApplyCorpus(bigrams), nil
}

// Combine merges phrases in one document: Second[First[doc]].
func (c *Combiner) Combine(doc []string) []string {
	return c.Second.Apply(c.First.Apply(doc))
}

// CombineCorpus applies Combine to every document.
func (c *Combiner) CombineCorpus(corpus [][]string) [][]string {
	out := make([][]string, len(corpus))
	for i, doc := range corpus {
		out[i] = c.Combine(doc)
	}
	return out
}

// ValidatePrefix rejects prefixes that cannot name model artifacts.
func ValidatePrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("%w: empty model prefix", internalerr.ErrInvalidInput)
	}
	if strings.ContainsAny(prefix, `/\`) || strings.Contains(prefix, "..") {
		return fmt.Errorf("%w: model prefix %q contains a path separator", internalerr.ErrInvalidInput, prefix)
	}
	return nil
}
