package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/secpolicy/internal/export"
	"github.com/dgallion1/secpolicy/internal/extract"
	"github.com/dgallion1/secpolicy/internal/parser"
	"github.com/dgallion1/secpolicy/internal/store"
)

// WorkerOptions carry the settings a worker needs from config.
type WorkerOptions struct {
	// OutputDir receives exports of accepted documents. Empty disables export.
	OutputDir string
	// ErrorAccept is the validation error count at which a document is rejected.
	ErrorAccept       int
	FallbackPdftotext bool
}

// Worker processes a single document job.
type Worker struct {
	extractor *extract.Extractor
	store     *store.Store
	stats     *extract.Stats
	log       *slog.Logger
	opts      WorkerOptions
}

func NewWorker(ex *extract.Extractor, st *store.Store, stats *extract.Stats, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.ErrorAccept <= 0 {
		opts.ErrorAccept = 5
	}
	return &Worker{
		extractor: ex,
		store:     st,
		stats:     stats,
		log:       log,
		opts:      opts,
	}
}

// Process runs the full pipeline for a job: load, extract, store, export.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	res, err := w.run(ctx, job, log)
	outcome, final := extract.OutcomeAccepted, StatusCompleted
	switch {
	case err != nil:
		outcome, final = extract.OutcomeFailed, StatusFailed
		log.Error("document failed", "error", err)
		job.AddError(err.Error())
		w.record(ctx, job, nil, StatusFailed, err.Error(), log)
	case res.Report.Errors >= w.opts.ErrorAccept:
		outcome, final = extract.OutcomeRejected, StatusRejected
		msg := fmt.Sprintf("%d validation errors (limit %d)", res.Report.Errors, w.opts.ErrorAccept)
		log.Warn("document rejected", "errors", res.Report.Errors)
		job.SetStatus(StatusStoring, "storing")
		w.record(ctx, job, res, StatusRejected, msg, log)
	default:
		job.SetStatus(StatusStoring, "storing")
		w.record(ctx, job, res, StatusCompleted, "", log)
		if w.opts.OutputDir != "" {
			files, err := export.WriteDir(w.opts.OutputDir, res)
			if err != nil {
				log.Error("export failed", "error", err)
				job.AddError(fmt.Sprintf("export: %s", err))
			} else {
				job.SetFiles(files)
			}
		}
	}

	if w.stats != nil {
		w.stats.Record(time.Since(start).Milliseconds(), outcome)
	}
	job.SetStatus(final, "done")
}

func (w *Worker) run(ctx context.Context, job *Job, log *slog.Logger) (*extract.Result, error) {
	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	doc, err := parser.Load(job.Filename, job.FileData(), w.opts.FallbackPdftotext)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	job.releaseFileData()
	log.Debug("document loaded", "bytes", len(doc.Text))

	// Phase 2: Extract
	job.SetStatus(StatusExtracting, "extracting")
	res, err := w.extractor.Run(ctx, doc.Name, doc.Text)
	if err != nil {
		return nil, err
	}
	job.SetResult(res)
	return res, nil
}

// record writes the metadata row. Store failures are logged against the
// job but do not change its outcome.
func (w *Worker) record(ctx context.Context, job *Job, res *extract.Result, status JobStatus, msg string, log *slog.Logger) {
	if w.store == nil {
		return
	}
	rec := store.FileRecord{
		ID:       job.DocID,
		Filename: job.Filename,
		Status:   string(status),
		Message:  msg,
	}
	if res != nil {
		rec.Errors = res.Report.Errors
		rec.Empty = res.Report.Empty
		rec.TablesFound = res.TablesFound()
		rec.Records = res.RecordCount()
		rec.SkippedRows = res.SkippedRows()
	}
	if err := w.store.PutFile(ctx, rec); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
	}
}
