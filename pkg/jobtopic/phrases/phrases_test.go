package phrases

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/pmi"
)

// corpusWith builds n documents that each start with head followed by
// fill tokens that never repeat anywhere in the corpus.
func corpusWith(head []string, n, fill int) [][]string {
	corpus := make([][]string, n)
	next := 0
	for i := range corpus {
		doc := append([]string(nil), head...)
		for j := 0; j < fill; j++ {
			doc = append(doc, fmt.Sprintf("tok%03d", next))
			next++
		}
		corpus[i] = doc
	}
	return corpus
}

func TestLearnFreezesFrequentPair(t *testing.T) {
	corpus := corpusWith([]string{"machine", "learning"}, 10, 30)

	m, err := Learn(corpus, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	score, ok := m.Score("machine", "learning")
	require.True(t, ok)
	// (10 - 5) / (10 * 10) * (302 unigrams + 301 bigrams)
	assert.InDelta(t, 30.15, score, 1e-9)

	got := m.Apply([]string{"senior", "machine", "learning", "role"})
	assert.Equal(t, []string{"senior", "machine_learning", "role"}, got)
}

func TestLearnSkipsPairsBelowMinCount(t *testing.T) {
	corpus := corpusWith([]string{"machine", "learning"}, 4, 30)

	m, err := Learn(corpus, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, m.Len())
}

func TestApplyIsGreedyLeftToRight(t *testing.T) {
	m := modelWith([2]string{"a", "b"}, [2]string{"b", "c"})

	assert.Equal(t, []string{"a_b", "c"}, m.Apply([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"x", "b_c"}, m.Apply([]string{"x", "b", "c"}))
	assert.Equal(t, []string{"a_b", "a_b"}, m.Apply([]string{"a", "b", "a", "b"}))
	assert.Empty(t, m.Apply(nil))
	assert.Equal(t, []string{"a"}, m.Apply([]string{"a"}))
}

func TestLearnNPMIScoring(t *testing.T) {
	corpus := corpusWith([]string{"machine", "learning"}, 10, 30)

	opts := DefaultOptions()
	opts.Scoring = ScoringNPMI
	opts.Threshold = 0.5

	m, err := Learn(corpus, opts)
	require.NoError(t, err)

	score, ok := m.Score("machine", "learning")
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, 1, m.Len())
}

func TestLearnRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown scoring", Options{Scoring: "cv", Threshold: 10}},
		{"negative min count", Options{MinCount: -1, Threshold: 10}},
		{"npmi threshold out of range", Options{Scoring: ScoringNPMI, Threshold: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Learn(nil, tt.opts)
			assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
		})
	}
}

func TestModelJSONRoundTrip(t *testing.T) {
	corpus := corpusWith([]string{"machine", "learning"}, 10, 30)
	m, err := Learn(corpus, DefaultOptions())
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	decoded, err := DecodeModel(data)
	require.NoError(t, err)
	assert.Equal(t, m.Options(), decoded.Options())
	assert.Equal(t, m.Phrases(), decoded.Phrases())
}

func TestDecodeModelRejectsEmptyToken(t *testing.T) {
	_, err := DecodeModel([]byte(`{"delimiter":"_","scoring":"default","phrases":[{"a":"","b":"x","score":1}]}`))
	assert.Error(t, err)
}

// modelWith builds a model that freezes exactly the given pairs.
func modelWith(pairs ...[2]string) *Model {
	m := &Model{opts: DefaultOptions(), phrases: make(map[pmi.Bigram]float64, len(pairs))}
	for _, p := range pairs {
		m.phrases[pmi.Bigram{A: p[0], B: p[1]}] = 1
	}
	return m
}
