package compositor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mixdown/internal/timeline"
)

func TestRegistryTracksInFlightJobs(t *testing.T) {
	r := NewRegistry()
	shard := timeline.Shard{StartFrame: 0, EndFrame: 60}

	first, err := r.Register(shard)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := r.Register(timeline.Shard{StartFrame: 60, EndFrame: 120})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if first == second {
		t.Fatal("run identifiers must be unique")
	}

	jobs := r.InFlight()
	if len(jobs) != 2 {
		t.Fatalf("in flight = %d, want 2", len(jobs))
	}
	if jobs[0].RunID != first {
		t.Fatalf("jobs not ordered by start time: %+v", jobs)
	}

	r.Complete(first)
	jobs = r.InFlight()
	if len(jobs) != 1 || jobs[0].RunID != second {
		t.Fatalf("in flight after completion = %+v", jobs)
	}

	// completing twice is harmless
	r.Complete(first)
}

func TestRegistryRefusesWorkAfterClose(t *testing.T) {
	r := NewRegistry()
	r.Close()
	if _, err := r.Register(timeline.Shard{StartFrame: 0, EndFrame: 1}); !errors.Is(err, ErrRegistryClosed) {
		t.Fatalf("err = %v, want ErrRegistryClosed", err)
	}
}

func TestWorkspaceCleanupRequiresMarker(t *testing.T) {
	workDir := t.TempDir()
	shard := timeline.Shard{StartFrame: 0, EndFrame: 60}

	dir, err := newWorkspace(workDir, shard, "run-1")
	if err != nil {
		t.Fatalf("newWorkspace: %v", err)
	}
	if err := cleanupWorkspace(dir); err != nil {
		t.Fatalf("cleanupWorkspace: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("workspace %s still exists", dir)
	}

	// a directory without the marker must survive cleanup
	precious := filepath.Join(workDir, "user-data")
	if err := os.MkdirAll(precious, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(precious, "keep.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := cleanupWorkspace(precious); err == nil {
		t.Fatal("cleanup removed a directory without a run marker")
	}
	if _, err := os.Stat(filepath.Join(precious, "keep.txt")); err != nil {
		t.Fatalf("user data removed: %v", err)
	}
}
