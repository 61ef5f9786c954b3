// Package manifest reads the per-shard render manifest handed over by the
// upstream renderer: shard bounds, frame rate, output format, and the
// frame-indexed active-asset samples the compositor folds into spans.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mixdown/internal/timeline"
)

// Supported output container formats.
const (
	FormatMP4  = "mp4"
	FormatWebM = "webm"
	FormatMOV  = "mov"
)

// Manifest is the renderer's handoff for one shard.
type Manifest struct {
	Shard  timeline.Shard           `json:"shard"`
	FPS    float64                  `json:"fps"`
	Format string                   `json:"format"`
	Frames [][]timeline.FrameSample `json:"frames"`
}

// Load reads and validates a manifest file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the manifest satisfies the input contract.
func (m Manifest) Validate() error {
	if err := m.Shard.Validate(); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if m.FPS <= 0 {
		return fmt.Errorf("manifest: fps must be positive, got %v", m.FPS)
	}
	switch strings.ToLower(m.Format) {
	case FormatMP4, FormatWebM, FormatMOV:
	default:
		return fmt.Errorf("manifest: unsupported output format %q", m.Format)
	}
	if got, want := len(m.Frames), m.Shard.FrameCount(); got != want {
		return fmt.Errorf("manifest: %d frame sample lists for a %d-frame shard", got, want)
	}
	for frame, samples := range m.Frames {
		for _, sample := range samples {
			if strings.TrimSpace(sample.Key) == "" {
				return fmt.Errorf("manifest: frame %d has a sample without an asset key", frame)
			}
			if strings.TrimSpace(sample.Source) == "" {
				return fmt.Errorf("manifest: asset %q has no source path", sample.Key)
			}
			switch sample.Kind {
			case timeline.KindAudio, timeline.KindVideo:
			default:
				return fmt.Errorf("manifest: asset %q has unknown kind %q", sample.Key, sample.Kind)
			}
		}
	}
	return nil
}

// NormalizedFormat returns the lower-cased output format.
func (m Manifest) NormalizedFormat() string {
	return strings.ToLower(m.Format)
}
