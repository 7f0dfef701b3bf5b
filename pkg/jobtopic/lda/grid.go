package lda

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

// GridOptions controls a search over topic counts. Topic counts run from
// Start up to but excluding Stop in steps of Step.
type GridOptions struct {
	Start, Stop, Step int
	TopWords          int    // words per topic used for Jaccard and coherence
	Alpha, Beta       float64 // 0 means 1/K for each K
	Iterations        int
	Seed              uint64
	ModelDir          string       // when set, every model is saved here
	Progress          func(Score) // called after each topic count
}

// DefaultGridOptions returns the standard 6..50 topic sweep.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Start:    6,
		Stop:     52,
		Step:     2,
		TopWords: 20,
		Seed:     42,
	}
}

// Counts lists the topic counts the search visits.
func (g GridOptions) Counts() []int {
	var out []int
	if g.Step <= 0 {
		return out
	}
	for k := g.Start; k < g.Stop; k += g.Step {
		out = append(out, k)
	}
	return out
}

// Score records the selection measures of one trained model.
type Score struct {
	Topics      int
	Perplexity  float64
	MeanJaccard float64
	Coherence   float64
	RunID       string
	ModelPath   string
}

// GridSearch trains one model per topic count and scores each by
// perplexity on m, mean Jaccard similarity of top words and NPMI coherence
// on docs. Every score of one search shares a run id.
func GridSearch(ctx context.Context, m *vectorize.Matrix, vocab *vectorize.Vocabulary, docs [][]string, opts GridOptions) ([]Score, error) {
	counts := opts.Counts()
	if len(counts) == 0 || counts[0] < 1 {
		return nil, fmt.Errorf("%w: empty topic range %d..%d step %d",
			internalerr.ErrInvalidInput, opts.Start, opts.Stop, opts.Step)
	}

	runID := ulid.Make().String()
	scores := make([]Score, 0, len(counts))
	for _, k := range counts {
		mod, err := Fit(ctx, m, Options{
			Topics:     k,
			Alpha:      opts.Alpha,
			Beta:       opts.Beta,
			Iterations: opts.Iterations,
			Seed:       opts.Seed,
		})
		if err != nil {
			return scores, fmt.Errorf("fit %d topics: %w", k, err)
		}

		s := Score{Topics: k, RunID: runID}
		if s.Perplexity, err = mod.Perplexity(m); err != nil {
			return scores, fmt.Errorf("perplexity %d topics: %w", k, err)
		}
		terms, err := mod.TopicTerms(vocab, opts.TopWords)
		if err != nil {
			return scores, err
		}
		s.MeanJaccard = MeanJaccard(terms)
		s.Coherence = Coherence(terms, docs)

		if opts.ModelDir != "" {
			if s.ModelPath, err = mod.Save(opts.ModelDir); err != nil {
				return scores, fmt.Errorf("save %d topics: %w", k, err)
			}
		}

		scores = append(scores, s)
		if opts.Progress != nil {
			opts.Progress(s)
		}
	}
	return scores, nil
}

// WriteScoresCSV writes one row per score under a header row.
func WriteScoresCSV(w io.Writer, scores []Score) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"topics", "perplexity", "mean_jaccard", "coherence", "run_id"}); err != nil {
		return err
	}
	for _, s := range scores {
		rec := []string{
			strconv.Itoa(s.Topics),
			strconv.FormatFloat(s.Perplexity, 'f', 6, 64),
			strconv.FormatFloat(s.MeanJaccard, 'f', 6, 64),
			strconv.FormatFloat(s.Coherence, 'f', 6, 64),
			s.RunID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Best returns the score with the highest coherence, ties broken by lower
// perplexity.
func Best(scores []Score) (Score, bool) {
	if len(scores) == 0 {
		return Score{}, false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Coherence > best.Coherence ||
			(s.Coherence == best.Coherence && s.Perplexity < best.Perplexity) {
			best = s
		}
	}
	return best, true
}
