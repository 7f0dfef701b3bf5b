package main

import (
	"errors"
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/cognicore/jobtopic/internal/jobsfile"
	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

func importCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "import <jobs.jsonl>",
		Short: "Load job postings from JSONL into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			jobs, err := jobsfile.LoadFromJSONL(args[0], a.logger)
			if err != nil {
				return err
			}
			a.logger.Printf("Loaded %d jobs from %s", len(jobs), args[0])

			e, _, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			var bar *uiprogress.Bar
			if !quiet {
				uiprogress.Start()
				bar = uiprogress.AddBar(len(jobs))
				bar.AppendCompleted()
				bar.PrependElapsed()
			}

			inserted, duplicates := 0, 0
			for i, job := range jobs {
				_, err := e.Ingest(ctx, job)
				switch {
				case errors.Is(err, internalerr.ErrDuplicate):
					duplicates++
				case err != nil:
					if bar != nil {
						uiprogress.Stop()
					}
					return fmt.Errorf("ingest job %d (%s): %w", i+1, job.URL, err)
				default:
					inserted++
				}
				if bar != nil {
					bar.Incr()
				}
			}
			if bar != nil {
				uiprogress.Stop()
			}

			fmt.Fprintf(a.out, "Imported %d jobs into %s (%d duplicates skipped)\n", inserted, a.cfg.Database, duplicates)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}
