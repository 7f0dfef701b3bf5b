package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/cognicore/jobtopic/internal/jobsfile"
	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
)

// processBatch is how many texts go to the worker pool between progress
// updates.
const processBatch = 200

// corpusPath is where process writes, and vectorize and lda read, the
// phrase-merged corpus of prefix.
func (a *app) corpusPath(prefix string) string {
	return filepath.Join(a.cfg.ModelDir, prefix+"-corpus.json")
}

func processCmd(a *app) *cobra.Command {
	var (
		fieldName string
		prefix    string
		out       string
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Clean stored job texts and train phrase models on them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			field, err := store.ParseField(fieldName)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = string(field)
			}
			if out == "" {
				out = a.corpusPath(prefix)
			}

			e, _, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			texts, err := e.Store().Texts(ctx, field)
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				return fmt.Errorf("%w: no stored jobs in %s; run import first", internalerr.ErrNotFound, a.cfg.Database)
			}
			a.logger.Printf("processing %d %s texts with %d workers", len(texts), field, a.cfg.Workers)

			var bar *uiprogress.Bar
			if !quiet {
				uiprogress.Start()
				bar = uiprogress.AddBar(len(texts))
				bar.AppendCompleted()
				bar.PrependElapsed()
			}

			corpus := make([][]string, 0, len(texts))
			for start := 0; start < len(texts); start += processBatch {
				end := min(start+processBatch, len(texts))
				docs, err := e.ProcessDocs(ctx, texts[start:end])
				if err != nil {
					if bar != nil {
						uiprogress.Stop()
					}
					return err
				}
				corpus = append(corpus, docs...)
				if bar != nil {
					bar.Set(end)
				}
			}
			if bar != nil {
				uiprogress.Stop()
			}

			merged, err := e.CombinePhrasesCorpus(ctx, corpus, prefix)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := jobsfile.WriteCorpus(out, merged); err != nil {
				return fmt.Errorf("write corpus: %w", err)
			}

			fmt.Fprintf(a.out, "Wrote %d cleaned documents to %s\n", len(merged), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&fieldName, "field", "description", "job field to process: description or title")
	cmd.Flags().StringVar(&prefix, "prefix", "", "phrase model prefix (defaults to the field name)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "corpus JSON output (defaults to <model-dir>/<prefix>-corpus.json)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}

func phraseCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "phrase <text>...",
		Short: "Clean one text and merge phrases with trained models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			analyze, err := e.Analyzer(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, strings.Join(analyze(strings.Join(args, " ")), " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "description", "phrase model prefix")
	return cmd
}
