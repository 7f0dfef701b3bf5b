package lda

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

// Options controls LDA training.
type Options struct {
	Topics     int
	Alpha      float64 // document-topic prior; 0 means 1/Topics
	Beta       float64 // topic-word prior; 0 means 1/Topics
	Iterations int     // Gibbs sweeps; 0 means 200
	Seed       uint64
}

func (o Options) normalized() (Options, error) {
	if o.Topics < 1 {
		return o, fmt.Errorf("%w: topics must be positive, got %d", internalerr.ErrInvalidInput, o.Topics)
	}
	if o.Alpha < 0 || o.Beta < 0 || o.Iterations < 0 {
		return o, fmt.Errorf("%w: negative prior or iteration count", internalerr.ErrInvalidInput)
	}
	if o.Alpha == 0 {
		o.Alpha = 1 / float64(o.Topics)
	}
	if o.Beta == 0 {
		o.Beta = 1 / float64(o.Topics)
	}
	if o.Iterations == 0 {
		o.Iterations = 200
	}
	return o, nil
}

// Model is a trained topic model: one word distribution per topic.
type Model struct {
	Topics     int         `json:"topics"`
	Alpha      float64     `json:"alpha"`
	Beta       float64     `json:"beta"`
	Iterations int         `json:"iterations"`
	Seed       uint64      `json:"seed"`
	Vocab      int         `json:"vocab"`
	TopicWord  [][]float64 `json:"topic_word"` // Topics x Vocab, rows sum to 1
}

// Fit trains a model on a document-term matrix with collapsed Gibbs
// sampling. The result depends only on the matrix and options, so a
// fixed seed reproduces the same model.
func Fit(ctx context.Context, m *vectorize.Matrix, opts Options) (*Model, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	if m.Cols == 0 || m.Total() == 0 {
		return nil, fmt.Errorf("%w: empty document-term matrix", internalerr.ErrInvalidInput)
	}

	k, v := opts.Topics, m.Cols
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	// One entry per token occurrence.
	words := make([][]int, m.NumRows())
	assign := make([][]int, m.NumRows())
	docTopic := make([][]int, m.NumRows())
	topicWord := make([][]int, k)
	for t := range topicWord {
		topicWord[t] = make([]int, v)
	}
	topicTotal := make([]int, k)

	for d, row := range m.Rows {
		docTopic[d] = make([]int, k)
		for _, e := range row {
			for c := 0; c < e.Count; c++ {
				words[d] = append(words[d], e.Col)
			}
		}
		assign[d] = make([]int, len(words[d]))
		for i, w := range words[d] {
			t := rng.IntN(k)
			assign[d][i] = t
			docTopic[d][t]++
			topicWord[t][w]++
			topicTotal[t]++
		}
	}

	vBeta := float64(v) * opts.Beta
	p := make([]float64, k)
	for it := 0; it < opts.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for d := range words {
			for i, w := range words[d] {
				t := assign[d][i]
				docTopic[d][t]--
				topicWord[t][w]--
				topicTotal[t]--

				sum := 0.0
				for j := 0; j < k; j++ {
					sum += (float64(docTopic[d][j]) + opts.Alpha) *
						(float64(topicWord[j][w]) + opts.Beta) /
						(float64(topicTotal[j]) + vBeta)
					p[j] = sum
				}
				u := rng.Float64() * sum
				t = 0
				for t < k-1 && p[t] <= u {
					t++
				}

				assign[d][i] = t
				docTopic[d][t]++
				topicWord[t][w]++
				topicTotal[t]++
			}
		}
	}

	model := &Model{
		Topics:     k,
		Alpha:      opts.Alpha,
		Beta:       opts.Beta,
		Iterations: opts.Iterations,
		Seed:       opts.Seed,
		Vocab:      v,
		TopicWord:  make([][]float64, k),
	}
	for t := 0; t < k; t++ {
		row := make([]float64, v)
		denom := float64(topicTotal[t]) + vBeta
		for w := 0; w < v; w++ {
			row[w] = (float64(topicWord[t][w]) + opts.Beta) / denom
		}
		model.TopicWord[t] = row
	}
	return model, nil
}

// inferIterations bounds the fixed-point updates of Infer.
const inferIterations = 50

// Infer estimates the topic mixture of each row with the topic-word
// distributions held fixed.
func (mod *Model) Infer(m *vectorize.Matrix) ([][]float64, error) {
	if m.Cols != mod.Vocab {
		return nil, fmt.Errorf("%w: matrix has %d columns, model vocabulary is %d",
			internalerr.ErrInvalidInput, m.Cols, mod.Vocab)
	}

	k := mod.Topics
	theta := make([][]float64, m.NumRows())
	next := make([]float64, k)
	for d, row := range m.Rows {
		th := make([]float64, k)
		for t := range th {
			th[t] = 1 / float64(k)
		}
		for it := 0; it < inferIterations; it++ {
			for t := range next {
				next[t] = mod.Alpha
			}
			for _, e := range row {
				norm := 0.0
				for t := 0; t < k; t++ {
					norm += th[t] * mod.TopicWord[t][e.Col]
				}
				if norm == 0 {
					continue
				}
				for t := 0; t < k; t++ {
					next[t] += float64(e.Count) * th[t] * mod.TopicWord[t][e.Col] / norm
				}
			}
			total := 0.0
			for _, x := range next {
				total += x
			}
			for t := range th {
				th[t] = next[t] / total
			}
		}
		theta[d] = th
	}
	return theta, nil
}

// Perplexity returns exp of the negative mean per-token log likelihood of
// m under the model. Lower is better.
func (mod *Model) Perplexity(m *vectorize.Matrix) (float64, error) {
	theta, err := mod.Infer(m)
	if err != nil {
		return 0, err
	}

	var logLik float64
	var n int
	for d, row := range m.Rows {
		for _, e := range row {
			p := 0.0
			for t := 0; t < mod.Topics; t++ {
				p += theta[d][t] * mod.TopicWord[t][e.Col]
			}
			logLik += float64(e.Count) * math.Log(p)
			n += e.Count
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no tokens to score", internalerr.ErrInvalidInput)
	}
	return math.Exp(-logLik / float64(n)), nil
}
