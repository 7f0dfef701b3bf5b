package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/cognicore/jobtopic/internal/jobsfile"
	"github.com/cognicore/jobtopic/pkg/jobtopic/lda"
	"github.com/cognicore/jobtopic/pkg/jobtopic/vectorize"
)

func (a *app) matrixPath(prefix string) string {
	return filepath.Join(a.cfg.ModelDir, prefix+"-features.mtx")
}

func (a *app) vocabPath(prefix string) string {
	return filepath.Join(a.cfg.ModelDir, prefix+"-vocab.json")
}

// ldaDir holds the grid search models and scores of prefix.
func (a *app) ldaDir(prefix string) string {
	return filepath.Join(a.cfg.ModelDir, prefix+"-lda")
}

func vectorizeCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Build a document-term matrix from a processed corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := jobsfile.ReadCorpus(a.corpusPath(prefix))
			if err != nil {
				return fmt.Errorf("read corpus (run process first): %w", err)
			}

			v, err := vectorize.NewCountVectorizer(a.cfg.VectorizerOptions())
			if err != nil {
				return err
			}
			m, err := v.FitTransform(corpus)
			if err != nil {
				return err
			}

			if err := writeFile(a.matrixPath(prefix), m.WriteMatrixMarket); err != nil {
				return err
			}
			if err := writeFile(a.vocabPath(prefix), v.Vocabulary().WriteJSON); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%d documents x %d terms, %d non-zero (density %.4f)\n",
				m.NumRows(), m.Cols, m.NonZero(), m.Density())
			fmt.Fprintf(a.out, "Wrote %s and %s\n", a.matrixPath(prefix), a.vocabPath(prefix))
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "description", "corpus prefix")
	return cmd
}

func ldaCmd(a *app) *cobra.Command {
	var (
		prefix            string
		start, stop, step int
		quiet             bool
	)
	cmd := &cobra.Command{
		Use:   "lda",
		Short: "Train topic models over a range of topic counts and score them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := jobsfile.ReadCorpus(a.corpusPath(prefix))
			if err != nil {
				return fmt.Errorf("read corpus (run process first): %w", err)
			}
			m, vocab, err := a.readFeatures(prefix)
			if err != nil {
				return err
			}

			opts := a.cfg.GridOptions()
			opts.ModelDir = a.ldaDir(prefix)
			flags := cmd.Flags()
			if flags.Changed("start") {
				opts.Start = start
			}
			if flags.Changed("stop") {
				opts.Stop = stop
			}
			if flags.Changed("step") {
				opts.Step = step
			}

			counts := opts.Counts()
			if !quiet && len(counts) > 0 {
				uiprogress.Start()
				bar := uiprogress.AddBar(len(counts))
				bar.AppendCompleted()
				bar.PrependElapsed()
				opts.Progress = func(lda.Score) { bar.Incr() }
			} else {
				opts.Progress = func(s lda.Score) {
					a.logger.Printf("%d topics: perplexity %.2f, mean jaccard %.4f, coherence %.4f",
						s.Topics, s.Perplexity, s.MeanJaccard, s.Coherence)
				}
			}

			scores, err := lda.GridSearch(cmd.Context(), m, vocab, corpus, opts)
			if !quiet && len(counts) > 0 {
				uiprogress.Stop()
			}
			if err != nil {
				return err
			}

			scoresPath := filepath.Join(opts.ModelDir, "scores.csv")
			if err := writeFile(scoresPath, func(w io.Writer) error { return lda.WriteScoresCSV(w, scores) }); err != nil {
				return err
			}

			best, _ := lda.Best(scores)
			fmt.Fprintf(a.out, "Scored %d models (run %s) into %s\n", len(scores), best.RunID, scoresPath)
			fmt.Fprintf(a.out, "Best: %d topics, coherence %.4f, perplexity %.2f\n", best.Topics, best.Coherence, best.Perplexity)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "description", "corpus prefix")
	cmd.Flags().IntVar(&start, "start", 0, "first topic count (overrides config)")
	cmd.Flags().IntVar(&stop, "stop", 0, "topic count to stop before (overrides config)")
	cmd.Flags().IntVar(&step, "step", 0, "topic count step (overrides config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "log each model instead of a progress bar")
	return cmd
}

func topicsCmd(a *app) *cobra.Command {
	var (
		prefix string
		k      int
		top    int
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Print the top words of a trained topic model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := lda.Load(a.ldaDir(prefix), k)
			if err != nil {
				return err
			}
			vocab, err := readVocabulary(a.vocabPath(prefix))
			if err != nil {
				return err
			}
			words, err := mod.TopWords(vocab, top)
			if err != nil {
				return err
			}
			for t, ws := range words {
				parts := make([]string, len(ws))
				for i, w := range ws {
					parts[i] = fmt.Sprintf("%s (%.3f)", w.Term, w.Weight)
				}
				fmt.Fprintf(a.out, "Topic %d: %s\n", t+1, strings.Join(parts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "description", "corpus prefix")
	cmd.Flags().IntVarP(&k, "topics", "k", 0, "topic count of the model to print")
	cmd.Flags().IntVarP(&top, "top", "n", 10, "words per topic")
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}

func (a *app) readFeatures(prefix string) (*vectorize.Matrix, *vectorize.Vocabulary, error) {
	f, err := os.Open(a.matrixPath(prefix))
	if err != nil {
		return nil, nil, fmt.Errorf("open features (run vectorize first): %w", err)
	}
	defer f.Close()
	m, err := vectorize.ReadMatrixMarket(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", a.matrixPath(prefix), err)
	}
	vocab, err := readVocabulary(a.vocabPath(prefix))
	if err != nil {
		return nil, nil, err
	}
	return m, vocab, nil
}

func readVocabulary(path string) (*vectorize.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	vocab, err := vectorize.ReadVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vocab, nil
}

// writeFile creates path and its directory and hands the file to write.
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
