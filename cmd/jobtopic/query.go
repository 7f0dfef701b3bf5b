package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func queryCmd(a *app) *cobra.Command {
	var (
		tables  bool
		columns string
		run     string
	)
	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Explore the database with read-only SQL",
		Long: `Runs one read-only SELECT, WITH or PRAGMA statement against the jobs
database and prints the rows as a table. --tables lists tables, --columns
lists the columns of one table and --run shows the latest phrase training
run stored for a prefix. Runs are only recorded when phrase_store is
"database"; with the default file store the models live under model_dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if run != "" && a.cfg.PhraseStore != "database" {
				return fmt.Errorf("--run needs phrase_store: database, phrase models for %q are stored as files in %s", run, a.cfg.ModelDir)
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			switch {
			case tables:
				names, err := st.ListTables(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, strings.Join(names, "\n"))
				return nil
			case columns != "":
				names, err := st.ColumnNames(ctx, columns)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, strings.Join(names, "\n"))
				return nil
			case run != "":
				r, err := st.LatestPhraseRun(ctx, run)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s\t%s\t%s\n", r.Prefix, r.RunID, r.TrainedAt.Format(time.RFC3339))
				return nil
			}

			if len(args) == 0 {
				return errors.New("a query, --tables, --columns or --run is required")
			}
			res, err := st.Query(ctx, args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
			for _, row := range res.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					if v == nil {
						cells[i] = "NULL"
					} else {
						cells[i] = fmt.Sprint(v)
					}
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "(%d rows)\n", len(res.Rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&tables, "tables", false, "list tables")
	cmd.Flags().StringVar(&columns, "columns", "", "list the columns of a table")
	cmd.Flags().StringVar(&run, "run", "", "show the latest phrase training run of a prefix (phrase_store: database only)")
	return cmd
}
