package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/secpolicy/internal/extract"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("4282.txt", []byte("same"))
	b := NewJob("4282.txt", []byte("same"))
	if a.ID == b.ID {
		t.Error("job ids should be unique")
	}
	if a.DocID != b.DocID || len(a.DocID) != 16 {
		t.Errorf("doc ids should derive from content: %q %q", a.DocID, b.DocID)
	}
	if a.Status != StatusQueued {
		t.Errorf("status = %q", a.Status)
	}
	if string(a.FileData()) != "same" {
		t.Errorf("file data = %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusLoading, "loading document"},
		{StatusExtracting, "segmenting"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_DoneClosesOnTerminalStatus(t *testing.T) {
	job := NewJob("a.txt", nil)
	done := job.Done()

	job.SetStatus(StatusExtracting, "extracting")
	select {
	case <-done:
		t.Fatal("done closed before terminal status")
	default:
	}

	job.SetStatus(StatusRejected, "done")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after terminal status")
	}

	// A second terminal transition must not panic.
	job.SetStatus(StatusFailed, "again")
}

func TestJob_DoneOnLiteralJob(t *testing.T) {
	job := &Job{ID: "literal"}
	job.SetStatus(StatusCompleted, "done")
	select {
	case <-job.Done():
	default:
		t.Fatal("done should be closed")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("load failed")
	job.AddError("store failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "load failed" {
		t.Errorf("expected first error %q, got %q", "load failed", snap.Progress.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := &Job{ID: "result-test"}
	res := &extract.Result{
		Name: "doc",
		Tables: []extract.TableResult{
			{Found: true, Skipped: 2},
			{Found: false},
		},
		Report: extract.Report{Errors: 3, Empty: 4},
	}
	job.SetResult(res)

	snap := job.Snapshot()
	if snap.Progress.TablesFound != 1 || snap.Progress.SkippedRows != 2 {
		t.Errorf("table counters = %+v", snap.Progress)
	}
	if snap.Progress.ValidationErrors != 3 || snap.Progress.EmptySections != 4 {
		t.Errorf("report counters = %+v", snap.Progress)
	}
	if job.Result() != res {
		t.Error("Result should return the recorded result")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
