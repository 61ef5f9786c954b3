package timeline

import "math"

// VolumeEpsilon is the minimum volume delta between consecutive samples of
// the same asset that produces a new envelope breakpoint. Smaller wobble is
// treated as sampling noise.
const VolumeEpsilon = 1e-4

type spanAccumulator struct {
	span      Span
	firstTime float64
	lastTime  float64
	envelope  Envelope
}

// Reconstruct folds per-frame samples into one Span per distinct asset key.
// The outer slice is indexed by frame within the shard; inner slices may be
// empty for frames with no active assets. Spans are returned in order of
// first appearance.
func Reconstruct(frames [][]FrameSample) []Span {
	byKey := make(map[string]*spanAccumulator)
	var order []string

	for frame, samples := range frames {
		for _, sample := range samples {
			acc, ok := byKey[sample.Key]
			if !ok {
				acc = &spanAccumulator{
					span: Span{
						Key:             sample.Key,
						Source:          sample.Source,
						Kind:            sample.Kind,
						StartFrame:      frame,
						EndFrame:        frame,
						PlaybackRate:    sample.PlaybackRate,
						Volume:          sample.Volume,
						Loop:            sample.Loop,
						TrimLeftSeconds: sample.CurrentTime,
					},
					firstTime: sample.CurrentTime,
					lastTime:  sample.CurrentTime,
					envelope:  Envelope{{FrameOffset: 0, Volume: sample.Volume}},
				}
				byKey[sample.Key] = acc
				order = append(order, sample.Key)
				continue
			}

			acc.span.EndFrame = frame
			acc.lastTime = sample.CurrentTime
			if math.Abs(sample.Volume-acc.envelope.Last().Volume) > VolumeEpsilon {
				acc.envelope = append(acc.envelope, Breakpoint{
					FrameOffset: frame - acc.span.StartFrame,
					Volume:      sample.Volume,
				})
			}
		}
	}

	spans := make([]Span, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		acc.span.DurationSeconds = sampledDuration(acc)
		// A single breakpoint collapses to static volume.
		if len(acc.envelope) > 1 {
			acc.span.Envelope = acc.envelope
		}
		spans = append(spans, acc.span)
	}
	return spans
}

// sampledDuration derives the playback duration of a span from its sampled
// positions. Looping assets wrap their position at the loop boundary (e.g.
// 13.8s back to 0.1s), so the naive difference is meaningless for them and
// the unbounded sentinel is emitted instead; the synthesizer derives the true
// length from frame count and frame rate.
func sampledDuration(acc *spanAccumulator) float64 {
	if acc.span.Loop {
		return Unbounded()
	}
	var duration float64
	if acc.span.PlaybackRate != 0 {
		duration = (acc.lastTime - acc.firstTime) / acc.span.PlaybackRate
	}
	// Samples that regressed, or failed to advance across a multi-frame
	// span, indicate a broken upstream clock rather than a real duration.
	if duration < 0 {
		return Unbounded()
	}
	if duration == 0 && acc.span.DurationFrames() > 1 {
		return Unbounded()
	}
	return duration
}
