package pmi

import "math"

// Bigram is an ordered pair of adjacent tokens.
type Bigram struct {
	A, B string
}

// BigramCounter counts unigrams and adjacent bigrams over a corpus of
// token sequences. Counts are raw occurrences, not document frequencies.
type BigramCounter struct {
	Unigrams  map[string]int64
	Bigrams   map[Bigram]int64
	WordCount int64
}

// NewBigramCounter creates an empty counter.
func NewBigramCounter() *BigramCounter {
	return &BigramCounter{
		Unigrams: make(map[string]int64),
		Bigrams:  make(map[Bigram]int64),
	}
}

// AddSentence counts one token sequence. Pairs never span sequences.
func (c *BigramCounter) AddSentence(tokens []string) {
	for i, t := range tokens {
		c.Unigrams[t]++
		c.WordCount++
		if i > 0 {
			c.Bigrams[Bigram{A: tokens[i-1], B: t}]++
		}
	}
}

// VocabSize is the number of distinct unigrams plus distinct bigrams.
func (c *BigramCounter) VocabSize() int64 {
	return int64(len(c.Unigrams) + len(c.Bigrams))
}

// ScoreInput carries the counts a phrase scorer needs.
type ScoreInput struct {
	CountA    int64
	CountB    int64
	CountAB   int64
	VocabSize int64
	WordCount int64
	MinCount  int64
}

// Scorer rates an adjacent pair; higher means more phrase-like.
type Scorer func(in ScoreInput) float64

// DefaultScore is the Mikolov et al. bigram score:
//
//	(count(ab) - minCount) / (count(a) * count(b)) * |vocab|
func DefaultScore(in ScoreInput) float64 {
	denom := float64(in.CountA) * float64(in.CountB)
	if denom == 0 {
		return math.Inf(-1)
	}
	return (float64(in.CountAB) - float64(in.MinCount)) / denom * float64(in.VocabSize)
}

// NPMIScore is normalized PMI over word-count probabilities, in [-1, 1].
// Pairs below minCount score -Inf.
func NPMIScore(in ScoreInput) float64 {
	if in.CountAB < in.MinCount || in.CountAB == 0 || in.WordCount == 0 {
		return math.Inf(-1)
	}
	n := float64(in.WordCount)
	pa := float64(in.CountA) / n
	pb := float64(in.CountB) / n
	pab := float64(in.CountAB) / n
	logPAB := math.Log(pab)
	if logPAB == 0 {
		return 1
	}
	return math.Log(pab/(pa*pb)) / -logPAB
}

// Score rates a bigram with the given scorer using this counter's totals.
func (c *BigramCounter) Score(b Bigram, minCount int64, scorer Scorer) float64 {
	return scorer(ScoreInput{
		CountA:    c.Unigrams[b.A],
		CountB:    c.Unigrams[b.B],
		CountAB:   c.Bigrams[b],
		VocabSize: c.VocabSize(),
		WordCount: c.WordCount,
		MinCount:  minCount,
	})
}
