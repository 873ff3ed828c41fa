package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dgallion1/secpolicy/internal/config"
	"github.com/dgallion1/secpolicy/internal/extract"
	"github.com/dgallion1/secpolicy/internal/parser"
	"github.com/dgallion1/secpolicy/internal/schema"
	"github.com/dgallion1/secpolicy/internal/store"
)

var (
	cfgFile    string
	schemaPath string
	maxEdits   int
	outDir     string
	dbPath     string
	workers    int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "spmap",
	Short: "Map FIPS 140-3 security policy text onto its section template",
	Long: `spmap reads OCR'd security policy documents, recognizes their numbered
section headings with a small edit tolerance, and extracts the tables of
each section into typed records.

Documents with fewer validation errors than error_accept are exported as
<name>.json (chapter tree), <name>_tables.json and <name>.xlsx.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML); SECPOLICY_* env vars override it")
	pf.StringVar(&schemaPath, "schema", "", "section/table schema file (default: embedded)")
	pf.IntVar(&maxEdits, "max-edits", 1, "edit distance tolerated in headings and table names")
	pf.StringVar(&outDir, "out", "", "output directory (default from config: out)")
	pf.StringVar(&dbPath, "db", "", "metadata database path (default from config: secpolicy.db)")
	pf.IntVar(&workers, "workers", 0, "worker goroutines for run and watch (default from config)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log matched headings and debug detail")

	rootCmd.AddCommand(mapCmd, tablesCmd, runCmd, watchCmd, schemaCmd, configCmd)
}

// env is what every subcommand needs: merged config, logger and schema.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	schema *schema.Schema
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.SchemaPath = schemaPath
	}
	if flags.Changed("max-edits") {
		cfg.MaxEdits = maxEdits
	}
	if flags.Changed("out") {
		cfg.OutputDir = outDir
	}
	if flags.Changed("db") {
		cfg.DatabasePath = dbPath
	}
	if flags.Changed("workers") && workers > 0 {
		cfg.WorkerCount = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	sch, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, schema: sch}, nil
}

func (e *env) extractor() *extract.Extractor {
	return extract.New(e.schema, extract.Options{
		MaxEdits:         e.cfg.MaxEdits,
		MaxHeadingLength: e.cfg.MaxHeadingLength,
	}, e.log)
}

func (e *env) openStore(cmd *cobra.Command) (*store.Store, error) {
	return store.Open(cmd.Context(), e.cfg.DatabasePath)
}

// collectFiles expands directories into the supported files below them.
// Explicit file arguments are kept as given.
func collectFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && parser.IsSupportedExtension(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	sort.Strings(out)
	return out, nil
}
