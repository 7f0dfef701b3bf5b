package ingest

import (
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/jobtopic/pkg/jobtopic/stoplist"
)

// Cleaner filters lemmas down to alphabetic, non-stopword tokens longer
// than one character. It never rewrites a token.
type Cleaner struct {
	stops *stoplist.Manager
}

// NewCleaner creates a cleaner. A nil manager means the English stoplist.
func NewCleaner(stops *stoplist.Manager) *Cleaner {
	if stops == nil {
		stops = stoplist.English()
	}
	return &Cleaner{stops: stops}
}

// Keep reports whether a single lemma survives cleaning.
func (c *Cleaner) Keep(lemma string) bool {
	return isAlpha(lemma) && !c.stops.IsStop(lemma) && utf8.RuneCountInString(lemma) > 1
}

// Clean returns the lemmas that survive, in their original order.
func (c *Cleaner) Clean(lemmas []string) []string {
	out := make([]string, 0, len(lemmas))
	for _, lemma := range lemmas {
		if c.Keep(lemma) {
			out = append(out, lemma)
		}
	}
	return out
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
