package timeline

import (
	"fmt"
	"math"
)

// AssetKind distinguishes sources that carry their own video track from
// audio-only sources. Video-kind sources may legitimately have no audio
// stream at all.
type AssetKind string

const (
	KindVideo AssetKind = "video"
	KindAudio AssetKind = "audio"
)

// FrameSample is one renderer observation of an active asset at a single
// frame. Samples are immutable once emitted.
type FrameSample struct {
	Key          string    `json:"key"`
	Source       string    `json:"source"`
	Kind         AssetKind `json:"kind"`
	CurrentTime  float64   `json:"currentTime"`
	PlaybackRate float64   `json:"playbackRate"`
	Volume       float64   `json:"volume"`
	Loop         bool      `json:"loop"`
}

// Shard is the half-open frame range [StartFrame, EndFrame) assigned to one
// parallel render worker.
type Shard struct {
	StartFrame int `json:"startFrame"`
	EndFrame   int `json:"endFrame"`
}

// FrameCount returns the number of frames the shard covers.
func (s Shard) FrameCount() int {
	return s.EndFrame - s.StartFrame
}

// DurationSeconds returns the wall-clock duration the shard covers at the
// given frame rate.
func (s Shard) DurationSeconds(fps float64) float64 {
	return float64(s.FrameCount()) / fps
}

// Validate checks the shard describes a usable frame range.
func (s Shard) Validate() error {
	if s.StartFrame < 0 {
		return fmt.Errorf("shard start frame %d is negative", s.StartFrame)
	}
	if s.EndFrame <= s.StartFrame {
		return fmt.Errorf("shard frame range [%d, %d) is empty", s.StartFrame, s.EndFrame)
	}
	return nil
}

// Unbounded is the sentinel duration meaning "derive the length from frame
// count and frame rate, not from sampled playback time". Looping assets
// always carry it because their sampled position wraps at the loop boundary.
func Unbounded() float64 {
	return math.Inf(1)
}

// IsUnbounded reports whether d is the unbounded duration sentinel.
func IsUnbounded(d float64) bool {
	return math.IsInf(d, 1)
}
