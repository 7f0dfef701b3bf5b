package ingest

import (
	"strings"

	"github.com/jdkato/prose/tokenize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// escapedNewline is the literal two-character `\n` left in scraped
// descriptions. Real newline characters are handled by the splitters.
const escapedNewline = `\n`

// Splitter splits text into pieces. The prose sentence and word
// tokenizers satisfy it.
type Splitter interface {
	Tokenize(text string) []string
}

// Tokenizer turns a raw document into sentences of lower-case word tokens.
type Tokenizer struct {
	sentences Splitter
	words     Splitter
}

// NewTokenizer creates a tokenizer backed by the Punkt sentence model and
// the Treebank word tokenizer.
func NewTokenizer() *Tokenizer {
	return NewTokenizerWith(tokenize.NewPunktSentenceTokenizer(), tokenize.NewTreebankWordTokenizer())
}

// NewTokenizerWith creates a tokenizer from explicit splitters.
func NewTokenizerWith(sentences, words Splitter) *Tokenizer {
	return &Tokenizer{sentences: sentences, words: words}
}

// Normalize lower-cases a document and replaces literal `\n` artifacts
// with a space.
func Normalize(doc string) string {
	doc = strings.ReplaceAll(doc, escapedNewline, " ")
	// Casers carry state, so each call gets its own.
	return cases.Lower(language.English).String(norm.NFC.String(doc))
}

// Tokenize splits a document into sentences, each an ordered slice of word
// tokens. Punctuation tokens are kept; the cleaner drops them later.
func (t *Tokenizer) Tokenize(doc string) [][]string {
	doc = Normalize(doc)
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	var out [][]string
	for _, sentence := range t.sentences.Tokenize(doc) {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		words := t.words.Tokenize(sentence)
		if len(words) == 0 {
			continue
		}
		out = append(out, words)
	}
	return out
}
