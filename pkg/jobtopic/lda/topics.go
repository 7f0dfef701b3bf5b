package lda

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/pmi"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

// WordWeight is a term and its probability within a topic.
type WordWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TopWords returns the n most probable terms of each topic, highest first.
// Ties break alphabetically.
func (mod *Model) TopWords(vocab *vectorize.Vocabulary, n int) ([][]WordWeight, error) {
	if vocab.Len() != mod.Vocab {
		return nil, fmt.Errorf("%w: vocabulary has %d terms, model expects %d",
			internalerr.ErrInvalidInput, vocab.Len(), mod.Vocab)
	}
	if n <= 0 || n > mod.Vocab {
		n = mod.Vocab
	}

	out := make([][]WordWeight, mod.Topics)
	for t, row := range mod.TopicWord {
		cols := make([]int, len(row))
		for i := range cols {
			cols[i] = i
		}
		sort.SliceStable(cols, func(a, b int) bool {
			return row[cols[a]] > row[cols[b]]
		})
		top := make([]WordWeight, n)
		for i := 0; i < n; i++ {
			top[i] = WordWeight{Term: vocab.Term(cols[i]), Weight: row[cols[i]]}
		}
		out[t] = top
	}
	return out, nil
}

// TopicTerms is TopWords without the weights.
func (mod *Model) TopicTerms(vocab *vectorize.Vocabulary, n int) ([][]string, error) {
	top, err := mod.TopWords(vocab, n)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(top))
	for t, words := range top {
		out[t] = make([]string, len(words))
		for i, w := range words {
			out[t][i] = w.Term
		}
	}
	return out, nil
}

// ModelPath returns the artifact path of a model with k topics.
func ModelPath(dir string, k int) string {
	return filepath.Join(dir, fmt.Sprintf("lda-%d_topics.json", k))
}

// Save writes the model to dir as lda-<k>_topics.json.
func (mod *Model) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.Marshal(mod)
	if err != nil {
		return "", err
	}
	path := ModelPath(dir, mod.Topics)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads the model with k topics from dir.
func Load(dir string, k int) (*Model, error) {
	data, err := os.ReadFile(ModelPath(dir, k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &internalerr.ModelNotFoundError{Kind: "lda", Prefix: strconv.Itoa(k), Err: err}
	}
	if err != nil {
		return nil, err
	}
	var mod Model
	if err := json.Unmarshal(data, &mod); err != nil {
		return nil, &internalerr.ModelMalformedError{Kind: "lda", Prefix: strconv.Itoa(k), Err: err}
	}
	if mod.Topics != k || len(mod.TopicWord) != k {
		return nil, &internalerr.ModelMalformedError{Kind: "lda", Prefix: strconv.Itoa(k),
			Err: fmt.Errorf("file holds %d topics", len(mod.TopicWord))}
	}
	return &mod, nil
}

// MeanJaccard returns the mean Jaccard similarity of the word sets of every
// pair of topics. Lower means more distinct topics. Fewer than two topics
// give 0.
func MeanJaccard(topics [][]string) float64 {
	sets := make([]map[string]struct{}, len(topics))
	for i, words := range topics {
		sets[i] = make(map[string]struct{}, len(words))
		for _, w := range words {
			sets[i][w] = struct{}{}
		}
	}

	var sum float64
	var pairs int
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Coherence returns the mean NPMI of top-word pairs, averaged over topics,
// with document co-occurrence counted on docs. Higher is better.
func Coherence(topics [][]string, docs [][]string) float64 {
	var all []string
	for _, words := range topics {
		all = append(all, words...)
	}
	counter := pmi.NewVocabCounter(all)
	for _, doc := range docs {
		counter.AddDocument(doc)
	}
	calc := pmi.NewCalculator(1.0)

	var total float64
	var scored int
	for _, words := range topics {
		var sum float64
		var pairs int
		for i := 0; i < len(words); i++ {
			for j := i + 1; j < len(words); j++ {
				a, b := words[i], words[j]
				sum += calc.NPMI(counter.GetPairCount(a, b), counter.GetTokenCount(a), counter.GetTokenCount(b), counter.TotalDocs())
				pairs++
			}
		}
		if pairs > 0 {
			total += sum / float64(pairs)
			scored++
		}
	}
	if scored == 0 {
		return 0
	}
	return total / float64(scored)
}
