package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dgallion1/secpolicy/internal/parser"
	"github.com/dgallion1/secpolicy/internal/pipeline"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Process documents as they appear in a directory",
	Long: `Watch directories for new or rewritten documents and run each through
the pipeline. Bursts of writes to the same file are coalesced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
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

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Close()
		for _, dir := range args {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		e.log.Info("watching", "dirs", args, "debounce", watchDebounce)

		var (
			mu     sync.Mutex
			timers = make(map[string]*time.Timer)
		)
		submit := func(path string) {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			data, err := os.ReadFile(path)
			if err != nil {
				e.log.Warn("read failed", "path", path, "error", err)
				return
			}
			job := pipeline.NewJob(filepath.Base(path), data)
			if err := orch.SubmitWait(ctx, job); err != nil {
				e.log.Warn("submit failed", "path", path, "error", err)
				return
			}
			go report(ctx, cmd, job)
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				for _, t := range timers {
					t.Stop()
				}
				mu.Unlock()
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				if !parser.IsSupportedExtension(ev.Name) {
					continue
				}
				path := ev.Name
				mu.Lock()
				if t, ok := timers[path]; ok {
					t.Stop()
				}
				timers[path] = time.AfterFunc(watchDebounce, func() { submit(path) })
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				e.log.Error("watcher error", "error", err)
			}
		}
	},
}

func report(ctx context.Context, cmd *cobra.Command, job *pipeline.Job) {
	select {
	case <-job.Done():
	case <-ctx.Done():
		return
	}
	snap := job.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\terrors=%d tables=%d records=%d\n",
		snap.Filename, snap.Status, snap.Progress.ValidationErrors,
		snap.Progress.TablesFound, snap.Progress.Records)
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is processed")
}
