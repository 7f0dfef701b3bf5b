package ingest

import (
	"testing"
)

// mapDict maps inflected forms to lemmas; unknown words are their own lemma.
type mapDict map[string][]string

func (m mapDict) Lemmas(word string) []string {
	if l, ok := m[word]; ok {
		return l
	}
	return []string{word}
}

var testDict = mapDict{
	"scientists":  {"scientist"},
	"models":      {"model"},
	"running":     {"run", "running"},
	"built":       {"build"},
	"is":          {"be"},
	"boxes":       {"box"},
	"data":        {"datum"},
	"bigger":      {"big"},
	"makes":       {"make"},
	"making":      {"make"},
	"engineering": {"engineer"},
	"interested":  {"interest"},
	"children":    {"child"},
}

func TestLemmaNoneCategoryPassesThrough(t *testing.T) {
	lem := NewLemmatizer(testDict, nil)

	for _, word := range []string{"scientists", "they", "running", "."} {
		got := lem.Lemma(TaggedToken{Text: word, Category: CategoryNone})
		if got != word {
			t.Errorf("Lemma(%q, none) = %q, want unchanged", word, got)
		}
	}
}

func TestLemmaByCategory(t *testing.T) {
	lem := NewLemmatizer(testDict, nil)

	tests := []struct {
		word string
		cat  Category
		want string
	}{
		{"scientists", CategoryNoun, "scientist"},
		{"models", CategoryNoun, "model"},
		{"boxes", CategoryNoun, "box"},
		{"running", CategoryVerb, "run"},
		{"making", CategoryVerb, "make"},
		{"makes", CategoryVerb, "make"},
		{"built", CategoryVerb, "build"},
		{"is", CategoryVerb, "be"},
		{"bigger", CategoryAdjective, "big"},
		{"analyze", CategoryVerb, "analyze"},
		{"quickly", CategoryAdverb, "quickly"},
		{"kubernetes", CategoryNoun, "kubernetes"},
	}

	for _, tt := range tests {
		got := lem.Lemma(TaggedToken{Text: tt.word, Category: tt.cat})
		if got != tt.want {
			t.Errorf("Lemma(%q, %v) = %q, want %q", tt.word, tt.cat, got, tt.want)
		}
	}
}

func TestLemmaFallbackRespectsCategory(t *testing.T) {
	lem := NewLemmatizer(testDict, nil)

	tests := []struct {
		word string
		cat  Category
		want string
	}{
		{"engineering", CategoryNoun, "engineering"},
		{"engineering", CategoryVerb, "engineer"},
		{"interested", CategoryAdjective, "interested"},
		{"built", CategoryVerb, "build"},
		{"children", CategoryNoun, "child"},
	}

	for _, tt := range tests {
		got := lem.Lemma(TaggedToken{Text: tt.word, Category: tt.cat})
		if got != tt.want {
			t.Errorf("Lemma(%q, %v) = %q, want %q", tt.word, tt.cat, got, tt.want)
		}
	}
}

func TestLemmaExceptions(t *testing.T) {
	lem := NewLemmatizer(testDict, nil)

	if got := lem.Lemma(TaggedToken{Text: "data", Category: CategoryNoun}); got != "data" {
		t.Errorf("default exceptions should keep 'data', got %q", got)
	}

	custom := DefaultExceptions().Merge(Exceptions{CategoryNoun: {"models": "modelling"}})
	lem = NewLemmatizer(testDict, custom)
	if got := lem.Lemma(TaggedToken{Text: "models", Category: CategoryNoun}); got != "modelling" {
		t.Errorf("custom exception not applied, got %q", got)
	}
	if got := lem.Lemma(TaggedToken{Text: "data", Category: CategoryNoun}); got != "data" {
		t.Errorf("merged exceptions should keep defaults, got %q", got)
	}
}

func TestLemmaExceptionsAreCategorySpecific(t *testing.T) {
	lem := NewLemmatizer(testDict, Exceptions{})

	if got := lem.Lemma(TaggedToken{Text: "data", Category: CategoryNoun}); got != "datum" {
		t.Errorf("without exceptions the dictionary lemma wins, got %q", got)
	}
}

func TestLemmatizeDocFlattens(t *testing.T) {
	lem := NewLemmatizer(testDict, nil)

	tagged := [][]TaggedToken{
		{{"data", CategoryNoun}, {"scientists", CategoryNoun}},
		{},
		{{"they", CategoryNone}, {"built", CategoryVerb}, {"models", CategoryNoun}},
	}

	got := lem.LemmatizeDoc(tagged)
	want := []string{"data", "scientist", "they", "build", "model"}

	if len(got) != len(want) {
		t.Fatalf("LemmatizeDoc() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lemma %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnglishDictionary(t *testing.T) {
	dict, err := NewEnglishDictionary()
	if err != nil {
		t.Fatalf("NewEnglishDictionary: %v", err)
	}
	lem := NewLemmatizer(dict, nil)

	tests := []struct {
		word string
		cat  Category
		want string
	}{
		{"scientists", CategoryNoun, "scientist"},
		{"models", CategoryNoun, "model"},
		{"data", CategoryNoun, "data"},
		{"engineering", CategoryNoun, "engineering"},
		{"built", CategoryVerb, "build"},
	}
	for _, tt := range tests {
		if got := lem.Lemma(TaggedToken{Text: tt.word, Category: tt.cat}); got != tt.want {
			t.Errorf("Lemma(%q, %v) = %q, want %q", tt.word, tt.cat, got, tt.want)
		}
	}
}
