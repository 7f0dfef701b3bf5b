package ingest

import (
	"github.com/jdkato/prose/tag"
)

// Category is the coarse lexical category the lemmatizer needs.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryAdjective
	CategoryVerb
	CategoryNoun
	CategoryAdverb
)

// String renders the category with WordNet's single-letter codes;
// CategoryNone renders as the empty string.
func (c Category) String() string {
	switch c {
	case CategoryAdjective:
		return "a"
	case CategoryVerb:
		return "v"
	case CategoryNoun:
		return "n"
	case CategoryAdverb:
		return "r"
	default:
		return ""
	}
}

// MarshalText renders the category as its String form.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form ParseCategory does.
func (c *Category) UnmarshalText(b []byte) error {
	*c = ParseCategory(string(b))
	return nil
}

// ParseCategory is the inverse of String. Unknown input maps to CategoryNone.
func ParseCategory(s string) Category {
	switch s {
	case "a", "adj", "adjective":
		return CategoryAdjective
	case "v", "verb":
		return CategoryVerb
	case "n", "noun":
		return CategoryNoun
	case "r", "adv", "adverb":
		return CategoryAdverb
	default:
		return CategoryNone
	}
}

// CategoryFromTag collapses a Penn Treebank tag by its first letter.
// Tense, number and degree are dropped on purpose.
func CategoryFromTag(treebankTag string) Category {
	if treebankTag == "" {
		return CategoryNone
	}
	switch treebankTag[0] {
	case 'J':
		return CategoryAdjective
	case 'V':
		return CategoryVerb
	case 'N':
		return CategoryNoun
	case 'R':
		return CategoryAdverb
	default:
		return CategoryNone
	}
}

// TaggedToken is a token with its coarse category.
type TaggedToken struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// POSTagger assigns fine-grained tags to a sentence. The prose averaged
// perceptron tagger satisfies it.
type POSTagger interface {
	Tag(words []string) []tag.Token
}

// Tagger wraps a fine-grained tagger and collapses its tags.
type Tagger struct {
	pos POSTagger
}

// NewTagger creates a tagger backed by the pretrained perceptron model.
func NewTagger() *Tagger {
	return NewTaggerWith(tag.NewPerceptronTagger())
}

// NewTaggerWith creates a tagger from an explicit fine-grained tagger.
func NewTaggerWith(pos POSTagger) *Tagger {
	return &Tagger{pos: pos}
}

// Tag tags one sentence. The result has the same length and order as the
// input; tokens the underlying tagger drops get CategoryNone.
func (t *Tagger) Tag(sentence []string) []TaggedToken {
	if len(sentence) == 0 {
		return nil
	}

	fine := t.pos.Tag(sentence)
	out := make([]TaggedToken, len(sentence))
	for i, word := range sentence {
		out[i] = TaggedToken{Text: word}
		if i < len(fine) {
			out[i].Category = CategoryFromTag(fine[i].Tag)
		}
	}
	return out
}

// TagDoc tags every sentence of a tokenized document.
func (t *Tagger) TagDoc(sentences [][]string) [][]TaggedToken {
	out := make([][]TaggedToken, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, t.Tag(s))
	}
	return out
}
