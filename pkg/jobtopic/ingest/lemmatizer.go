package ingest

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Dictionary lists the dictionary base forms of a word, irrespective of
// part of speech. *golem.Lemmatizer satisfies it.
type Dictionary interface {
	Lemmas(word string) []string
}

// NewEnglishDictionary loads the golem English lemma dictionary.
func NewEnglishDictionary() (*golem.Lemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return lem, nil
}

// Exceptions overrides lemmas per category: category → word → lemma.
type Exceptions map[Category]map[string]string

// DefaultExceptions keeps domain nouns the dictionary would over-reduce.
func DefaultExceptions() Exceptions {
	return Exceptions{
		CategoryNoun: {
			"data":      "data",
			"media":     "media",
			"analytics": "analytics",
			"sales":     "sales",
			"news":      "news",
			"series":    "series",
		},
	}
}

// Merge returns a copy of e with other's entries layered on top.
func (e Exceptions) Merge(other Exceptions) Exceptions {
	out := make(Exceptions, len(e)+len(other))
	for _, src := range []Exceptions{e, other} {
		for cat, words := range src {
			if out[cat] == nil {
				out[cat] = make(map[string]string, len(words))
			}
			for w, l := range words {
				out[cat][w] = l
			}
		}
	}
	return out
}

type detachment struct {
	suffix, ending string
}

// WordNet morphy detachment rules, tried in order.
var detachments = map[Category][]detachment{
	CategoryNoun: {
		{"s", ""}, {"ses", "s"}, {"ves", "f"}, {"xes", "x"}, {"zes", "z"},
		{"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"},
	},
	CategoryVerb: {
		{"s", ""}, {"ies", "y"}, {"es", "e"}, {"es", ""},
		{"ed", "e"}, {"ed", ""}, {"ing", "e"}, {"ing", ""},
	},
	CategoryAdjective: {
		{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"},
	},
}

// Lemmatizer reduces tagged tokens to base forms. It holds no per-call
// state and is safe for concurrent use when its Dictionary is.
type Lemmatizer struct {
	dict       Dictionary
	exceptions Exceptions
}

// NewLemmatizer creates a lemmatizer over the given dictionary.
func NewLemmatizer(dict Dictionary, exceptions Exceptions) *Lemmatizer {
	if exceptions == nil {
		exceptions = DefaultExceptions()
	}
	return &Lemmatizer{dict: dict, exceptions: exceptions}
}

// Lemma returns the base form of a tagged token. Tokens without a category
// are returned unchanged.
func (l *Lemmatizer) Lemma(tok TaggedToken) string {
	word := tok.Text
	if tok.Category == CategoryNone || word == "" {
		return word
	}

	if lemma, ok := l.exceptions[tok.Category][word]; ok {
		return lemma
	}

	lemmas := l.dict.Lemmas(word)
	known := make(map[string]struct{}, len(lemmas))
	for _, lemma := range lemmas {
		known[lemma] = struct{}{}
	}

	for _, candidate := range candidates(word, tok.Category) {
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}

	if _, ok := known[word]; ok {
		return word
	}

	// Irregular forms ("built" → "build", "children" → "child") only resolve
	// through the dictionary. The dictionary ignores part of speech, so a
	// noun or adjective never takes a lemma that merely strips a verb
	// inflection ("engineering" stays "engineering").
	for _, lemma := range lemmas {
		if lemma == "" || lemma == word {
			continue
		}
		if tok.Category != CategoryVerb && stripsVerbInflection(word, lemma) {
			continue
		}
		return lemma
	}
	return word
}

// stripsVerbInflection reports whether lemma is word with an -ing or -ed
// ending detached.
func stripsVerbInflection(word, lemma string) bool {
	if !strings.HasSuffix(word, "ing") && !strings.HasSuffix(word, "ed") {
		return false
	}
	for _, c := range candidates(word, CategoryVerb) {
		if c == lemma {
			return true
		}
	}
	return false
}

// candidates applies the category's detachment rules. Verb and adjective
// candidates ending in a doubled consonant ("runn") also yield the
// undoubled form ("run").
func candidates(word string, cat Category) []string {
	var out []string
	for _, d := range detachments[cat] {
		if len(word) <= len(d.suffix) || word[len(word)-len(d.suffix):] != d.suffix {
			continue
		}
		base := word[:len(word)-len(d.suffix)] + d.ending
		out = append(out, base)
		if d.ending == "" && (cat == CategoryVerb || cat == CategoryAdjective) && doubledConsonant(base) {
			out = append(out, base[:len(base)-1])
		}
	}
	return out
}

func doubledConsonant(s string) bool {
	n := len(s)
	if n < 3 {
		return false
	}
	last := s[n-1]
	return last == s[n-2] && !isVowel(last) && last >= 'a' && last <= 'z'
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// LemmatizeSentence lemmatizes one tagged sentence.
func (l *Lemmatizer) LemmatizeSentence(tagged []TaggedToken) []string {
	out := make([]string, len(tagged))
	for i, tok := range tagged {
		out[i] = l.Lemma(tok)
	}
	return out
}

// LemmatizeDoc lemmatizes a tagged document and flattens its sentences
// into one sequence, preserving order.
func (l *Lemmatizer) LemmatizeDoc(tagged [][]TaggedToken) []string {
	n := 0
	for _, s := range tagged {
		n += len(s)
	}
	out := make([]string, 0, n)
	for _, s := range tagged {
		out = append(out, l.LemmatizeSentence(s)...)
	}
	return out
}
