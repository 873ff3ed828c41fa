package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/export"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <chapters.json>...",
	Short: "Extract tables from chapter trees written by map",
	Long: `Read chapter trees previously written by "spmap map" and extract the
registered tables of each section. Results go to <out>/<name>_tables.json.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		ex := e.extractor()
		w := cmd.OutOrStdout()

		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			tree, err := doctree.ReadJSON(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			name := strings.TrimSuffix(filepath.Base(path), ".json")
			res, err := ex.RunTree(cmd.Context(), name, tree)
			if err != nil {
				return err
			}

			dst := filepath.Join(e.cfg.OutputDir, name+"_tables.json")
			if err := writeJSONFile(dst, func(w io.Writer) error {
				return export.WriteTables(w, res.Tables)
			}); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\ttables=%d records=%d skipped=%d\t%s\n",
				path, res.TablesFound(), res.RecordCount(), res.SkippedRows(), dst)
		}
		return nil
	},
}
