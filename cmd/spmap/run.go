package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/secpolicy/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <file|dir>...",
	Short: "Run the full pipeline over documents with a worker pool",
	Long: `Load, segment, validate and extract every document, recording each in
the metadata database. Accepted documents are exported as chapter JSON,
tables JSON and an XLSX workbook.`,
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

		ctx := cmd.Context()
		orch := pipeline.NewOrchestrator(e.cfg, e.extractor(), st, e.log)
		orch.Start(ctx)
		defer orch.Stop()

		jobs := make([]*pipeline.Job, 0, len(files))
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			job := pipeline.NewJob(filepath.Base(path), data)
			if err := orch.SubmitWait(ctx, job); err != nil {
				return err
			}
			jobs = append(jobs, job)
		}

		counts := make(map[pipeline.JobStatus]int)
		w := cmd.OutOrStdout()
		for _, job := range jobs {
			select {
			case <-job.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
			snap := job.Snapshot()
			counts[snap.Status]++
			fmt.Fprintf(w, "%s\t%s\terrors=%d tables=%d records=%d skipped=%d\n",
				snap.Filename, snap.Status, snap.Progress.ValidationErrors,
				snap.Progress.TablesFound, snap.Progress.Records, snap.Progress.SkippedRows)
		}

		stats := orch.Stats().Snapshot()
		fmt.Fprintf(w, "done: %d completed, %d rejected, %d failed (p50 %.0fms, p95 %.0fms)\n",
			counts[pipeline.StatusCompleted], counts[pipeline.StatusRejected], counts[pipeline.StatusFailed],
			stats.P50Ms, stats.P95Ms)
		return nil
	},
}
