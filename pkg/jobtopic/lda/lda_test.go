package lda

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

// twoTopicCorpus returns documents drawn from two disjoint word groups.
func twoTopicCorpus() ([][]string, *vectorize.Matrix, *vectorize.Vocabulary) {
	groups := [][]string{
		{"python", "spark", "sql"},
		{"nurse", "patient", "clinic"},
	}
	var docs [][]string
	for i := 0; i < 20; i++ {
		var doc []string
		for rep := 0; rep < 5; rep++ {
			doc = append(doc, groups[i%2]...)
		}
		docs = append(docs, doc)
	}

	v, err := vectorize.NewCountVectorizer(vectorize.Options{MinDF: 0, MaxDF: 1, NGramMax: 1})
	if err != nil {
		panic(err)
	}
	m, err := v.FitTransform(docs)
	if err != nil {
		panic(err)
	}
	return docs, m, v.Vocabulary()
}

func TestFitSeparatesTopics(t *testing.T) {
	_, m, vocab := twoTopicCorpus()

	mod, err := Fit(context.Background(), m, Options{Topics: 2, Iterations: 100, Seed: 7})
	require.NoError(t, err)

	terms, err := mod.TopicTerms(vocab, 3)
	require.NoError(t, err)
	require.Len(t, terms, 2)

	var groups []string
	for _, words := range terms {
		sorted := append([]string(nil), words...)
		sort.Strings(sorted)
		groups = append(groups, strings.Join(sorted, ","))
	}
	sort.Strings(groups)
	assert.Equal(t, []string{"clinic,nurse,patient", "python,spark,sql"}, groups)

	assert.Equal(t, 0.0, MeanJaccard(terms))
}

func TestFitDeterministic(t *testing.T) {
	_, m, _ := twoTopicCorpus()
	opts := Options{Topics: 3, Iterations: 30, Seed: 42}

	a, err := Fit(context.Background(), m, opts)
	require.NoError(t, err)
	b, err := Fit(context.Background(), m, opts)
	require.NoError(t, err)

	assert.Equal(t, a.TopicWord, b.TopicWord)
}

func TestFitDefaults(t *testing.T) {
	_, m, _ := twoTopicCorpus()

	mod, err := Fit(context.Background(), m, Options{Topics: 4, Iterations: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, mod.Alpha, 1e-12)
	assert.InDelta(t, 0.25, mod.Beta, 1e-12)

	for _, row := range mod.TopicWord {
		sum := 0.0
		for _, p := range row {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	_, m, _ := twoTopicCorpus()

	_, err := Fit(context.Background(), m, Options{Topics: 0})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = Fit(context.Background(), &vectorize.Matrix{}, Options{Topics: 2})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestFitHonoursCancellation(t *testing.T) {
	_, m, _ := twoTopicCorpus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, m, Options{Topics: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPerplexity(t *testing.T) {
	_, m, _ := twoTopicCorpus()

	good, err := Fit(context.Background(), m, Options{Topics: 2, Iterations: 100, Seed: 7})
	require.NoError(t, err)
	p, err := good.Perplexity(m)
	require.NoError(t, err)

	// Each document is uniform over three words.
	assert.Greater(t, p, 2.9)
	assert.Less(t, p, 3.5)

	_, err = good.Perplexity(&vectorize.Matrix{Cols: 2, Rows: [][]vectorize.Entry{{}}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestSaveLoad(t *testing.T) {
	_, m, _ := twoTopicCorpus()
	dir := t.TempDir()

	mod, err := Fit(context.Background(), m, Options{Topics: 2, Iterations: 10, Seed: 1})
	require.NoError(t, err)

	path, err := mod.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, ModelPath(dir, 2), path)
	assert.True(t, strings.HasSuffix(path, "lda-2_topics.json"))

	loaded, err := Load(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, mod, loaded)

	_, err = Load(dir, 8)
	assert.ErrorIs(t, err, internalerr.ErrModelNotFound)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestMeanJaccard(t *testing.T) {
	assert.Equal(t, 0.0, MeanJaccard(nil))
	assert.Equal(t, 0.0, MeanJaccard([][]string{{"a"}}))
	assert.InDelta(t, 1.0, MeanJaccard([][]string{{"a", "b"}, {"b", "a"}}), 1e-12)
	// {a,b} vs {b,c}: 1/3
	assert.InDelta(t, 1.0/3, MeanJaccard([][]string{{"a", "b"}, {"b", "c"}}), 1e-12)
}

func TestCoherencePrefersCooccurringWords(t *testing.T) {
	docs, _, _ := twoTopicCorpus()

	coherent := Coherence([][]string{{"python", "spark"}, {"nurse", "clinic"}}, docs)
	mixed := Coherence([][]string{{"python", "nurse"}, {"spark", "clinic"}}, docs)

	assert.Greater(t, coherent, mixed)
	assert.Equal(t, -1.0, mixed)
	assert.Equal(t, 0.0, Coherence(nil, docs))
}

func TestGridSearch(t *testing.T) {
	docs, m, vocab := twoTopicCorpus()
	dir := t.TempDir()

	var seen []int
	opts := GridOptions{
		Start: 2, Stop: 5, Step: 1,
		TopWords:   3,
		Iterations: 20,
		Seed:       3,
		ModelDir:   dir,
		Progress:   func(s Score) { seen = append(seen, s.Topics) },
	}

	scores, err := GridSearch(context.Background(), m, vocab, docs, opts)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, []int{2, 3, 4}, seen)

	for _, s := range scores {
		assert.Equal(t, scores[0].RunID, s.RunID)
		assert.Len(t, s.RunID, 26)
		assert.FileExists(t, s.ModelPath)
		assert.Greater(t, s.Perplexity, 0.0)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteScoresCSV(&buf, scores))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "topics,perplexity,mean_jaccard,coherence,run_id", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,"))

	best, ok := Best(scores)
	require.True(t, ok)
	assert.Contains(t, []int{2, 3, 4}, best.Topics)
}

func TestGridOptionsCounts(t *testing.T) {
	counts := DefaultGridOptions().Counts()
	require.Len(t, counts, 23)
	assert.Equal(t, 6, counts[0])
	assert.Equal(t, 50, counts[len(counts)-1])

	_, err := GridSearch(context.Background(), &vectorize.Matrix{}, nil, nil, GridOptions{Start: 4, Stop: 2, Step: 1})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestBest(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)

	best, ok := Best([]Score{
		{Topics: 6, Coherence: 0.1, Perplexity: 50},
		{Topics: 8, Coherence: 0.3, Perplexity: 60},
		{Topics: 10, Coherence: 0.3, Perplexity: 55},
	})
	require.True(t, ok)
	assert.Equal(t, 10, best.Topics)
}
