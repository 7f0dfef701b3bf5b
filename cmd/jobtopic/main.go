package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/jobtopic/pkg/jobtopic"
	"github.com/cognicore/jobtopic/pkg/jobtopic/config"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store/sqlite"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{out: os.Stdout, logger: log.New(os.Stderr, "jobtopic: ", log.LstdFlags)}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// app carries state shared by every subcommand.
type app struct {
	cfgPath  string
	dbPath   string
	modelDir string
	workers  int

	cfg    config.Config
	out    io.Writer
	logger *log.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "jobtopic",
		Short:        "Clean job postings, learn phrases and select topic models",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "YAML config file (defaults when empty)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().StringVar(&a.modelDir, "model-dir", "", "model artifact directory (overrides config)")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "pipeline workers (overrides config)")

	root.AddCommand(
		importCmd(a),
		processCmd(a),
		phraseCmd(a),
		vectorizeCmd(a),
		ldaCmd(a),
		topicsCmd(a),
		serveCmd(a),
		queryCmd(a),
	)
	return root
}

// loadConfig reads the config file, then applies flags the user set.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.cfgPath != "" {
		var err error
		if cfg, err = config.Load(a.cfgPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = a.dbPath
	}
	if flags.Changed("model-dir") {
		cfg.ModelDir = a.modelDir
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) openStore(ctx context.Context) (*sqlite.Store, error) {
	if dir := filepath.Dir(a.cfg.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	st, err := sqlite.OpenSQLite(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.Database, err)
	}
	return st, nil
}

// openEngine builds the full pipeline over the configured store. The
// caller closes the engine, which closes the store.
func (a *app) openEngine(ctx context.Context) (*jobtopic.Engine, *config.Components, error) {
	components, err := (&config.Loader{Config: a.cfg}).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load components: %w", err)
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	var repo phrases.Repository = st
	if a.cfg.PhraseStore == "file" {
		if repo, err = phrases.NewFileRepository(a.cfg.ModelDir); err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	e := jobtopic.New(jobtopic.Options{
		Store:         st,
		Pipeline:      components.Pipeline,
		Phrases:       repo,
		PhraseOptions: components.Phrases,
		Workers:       a.cfg.Workers,
		Logger:        a.logger,
	})
	return e, components, nil
}
