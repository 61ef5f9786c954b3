// Package testsupport provides shared fixtures for package tests: configs
// rooted in per-test temp directories and synthetic shard manifests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mixdown/internal/config"
	"mixdown/internal/manifest"
	"mixdown/internal/timeline"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ledger.Path = filepath.Join(base, "ledger.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// ConstantFrames samples the given assets unchanged across n frames, with
// each asset's clock advancing at its playback rate.
func ConstantFrames(n int, fps float64, samples ...timeline.FrameSample) [][]timeline.FrameSample {
	frames := make([][]timeline.FrameSample, n)
	for i := range frames {
		row := make([]timeline.FrameSample, len(samples))
		for j, s := range samples {
			s.CurrentTime = s.CurrentTime + float64(i)*s.PlaybackRate/fps
			row[j] = s
		}
		frames[i] = row
	}
	return frames
}

// WriteManifest marshals a manifest into a temp file and returns its path.
func WriteManifest(t testing.TB, m manifest.Manifest) string {
	t.Helper()

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
