package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"mixdown/internal/timeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginRecordsRunningRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	shard := timeline.Shard{StartFrame: 0, EndFrame: 300}
	run, err := store.Begin(ctx, "run-1", "/tmp/manifest.json", shard, "mp4")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if run.Status != StatusRunning {
		t.Fatalf("status = %s, want %s", run.Status, StatusRunning)
	}
	if run.ShardStart != 0 || run.ShardEnd != 300 {
		t.Fatalf("shard = %d-%d, want 0-300", run.ShardStart, run.ShardEnd)
	}
	if run.RunID != "run-1" || run.Format != "mp4" {
		t.Fatalf("run = %+v", run)
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("created_at not recorded")
	}
}

func TestCompleteTransitionsRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.Begin(ctx, "run-1", "", timeline.Shard{StartFrame: 0, EndFrame: 60}, "webm")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Complete(ctx, run.ID, "/out/shard-0.webm", 3); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s", got.Status, StatusCompleted)
	}
	if got.OutputPath != "/out/shard-0.webm" || got.SegmentCount != 3 {
		t.Fatalf("run = %+v", got)
	}
}

func TestFailRecordsMessage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.Begin(ctx, "run-1", "", timeline.Shard{StartFrame: 0, EndFrame: 60}, "mp4")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Fail(ctx, run.ID, "ffmpeg exited 1 for asset audio-theme"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	got, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, StatusFailed)
	}
	if got.ErrorMessage == "" {
		t.Fatal("error message not recorded")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	shard := timeline.Shard{StartFrame: 0, EndFrame: 60}
	a, _ := store.Begin(ctx, "run-a", "", shard, "mp4")
	b, _ := store.Begin(ctx, "run-b", "", shard, "mp4")
	if _, err := store.Begin(ctx, "run-c", "", shard, "mp4"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Complete(ctx, a.ID, "/out/a.mp4", 1); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := store.Fail(ctx, b.ID, "boom"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	failed, err := store.List(ctx, StatusFailed)
	if err != nil {
		t.Fatalf("List(failed): %v", err)
	}
	if len(failed) != 1 || failed[0].RunID != "run-b" {
		t.Fatalf("failed runs = %+v", failed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[StatusRunning] != 1 || stats[StatusCompleted] != 1 || stats[StatusFailed] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := first.Begin(context.Background(), "run-1", "", timeline.Shard{StartFrame: 0, EndFrame: 1}, "mp4"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	runs, err := second.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
}
