package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/secpolicy/internal/export"
	"github.com/dgallion1/secpolicy/internal/parser"
	"github.com/dgallion1/secpolicy/internal/pipeline"
	"github.com/dgallion1/secpolicy/internal/store"
)

var mapCmd = &cobra.Command{
	Use:   "map <file|dir>...",
	Short: "Segment documents into chapters and validate them",
	Long: `Segment each document against the section template and validate the
result. Accepted documents are written to <out>/<name>.json and every
document gets a row in the metadata database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		st, err := e.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ex := e.extractor()
		w := cmd.OutOrStdout()
		for _, path := range files {
			ctx := cmd.Context()
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rec := store.FileRecord{
				ID:          pipeline.ContentHashHex(data)[:16],
				Filename:    filepath.Base(path),
				ProcessedAt: time.Now().UTC(),
			}

			fail := func(err error) error {
				rec.Status, rec.Message = string(pipeline.StatusFailed), err.Error()
				fmt.Fprintf(w, "%s\tfailed\t%v\n", path, err)
				return st.PutFile(ctx, rec)
			}

			doc, err := parser.Load(path, data, e.cfg.PDFFallbackPdftotext)
			if err != nil {
				if err := fail(err); err != nil {
					return err
				}
				continue
			}
			out, err := ex.Run(ctx, doc.Name, doc.Text)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				if err := fail(err); err != nil {
					return err
				}
				continue
			}

			rec.Errors, rec.Empty = out.Report.Errors, out.Report.Empty
			status := pipeline.StatusRejected
			if out.Report.Errors < e.cfg.ErrorAccept {
				status = pipeline.StatusCompleted
				if err := writeJSONFile(filepath.Join(e.cfg.OutputDir, doc.Name+".json"), func(w io.Writer) error {
					return export.WriteTree(w, out.Tree)
				}); err != nil {
					return err
				}
			}
			rec.Status = string(status)
			if err := st.PutFile(ctx, rec); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\terrors=%d empty=%d headings=%d\n",
				path, status, out.Report.Errors, out.Report.Empty, len(out.Headings))
		}
		return nil
	},
}

func writeJSONFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
