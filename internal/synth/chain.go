package synth

import (
	"fmt"
	"math"

	"mixdown/internal/filtergraph"
	"mixdown/internal/timeline"
)

const (
	// conservativeClipSeconds is the assumed worst-case source length used to
	// size aloop repetitions when the real length is unknown. Overshooting is
	// harmless because the trim stage discards surplus audio.
	conservativeClipSeconds = 5.0

	// loopSafetyBufferSeconds is extra coverage added on top of the required
	// window before dividing by the conservative clip length.
	loopSafetyBufferSeconds = 10.0

	// loopCountMargin is added to the computed repetition count.
	loopCountMargin = 2

	// fadeFloor is the terminal volume at or below which an envelope is
	// treated as a fade to silence.
	fadeFloor = 0.01
)

// TrimWindow computes the source-time trim boundaries for a span rendered
// into the given shard. Both values are in seconds of source audio after
// tempo adjustment has been applied upstream in the chain.
//
// The left edge is the span's trim offset scaled into post-tempo time. The
// right edge covers either the span's own duration or the shard's remaining
// window, whichever ends first, plus one frame of slack so boundary samples
// survive rounding.
func TrimWindow(span timeline.Span, shard timeline.Shard, fps float64) (start, end float64) {
	start = span.TrimLeftSeconds / span.PlaybackRate
	required := shard.DurationSeconds(fps)
	end = 1.0/fps + math.Min(start+span.DurationSeconds, start+required)
	return start, end
}

// PadStartSeconds is the silence inserted ahead of the asset so that it
// begins exactly at its first frame within the shard.
func PadStartSeconds(span timeline.Span, fps float64) float64 {
	return float64(span.StartFrame) / fps
}

// PadEndSamples is the trailing silence, in samples, needed to extend the
// asset to the full shard length. Negative results (the asset already fills
// or overfills the shard) clamp to zero.
func PadEndSamples(span timeline.Span, shard timeline.Shard, fps float64, sampleRate int) int {
	rate := float64(sampleRate)
	total := rate * float64(shard.FrameCount()) / fps
	own := rate * float64(span.DurationFrames()) / fps
	front := rate * PadStartSeconds(span, fps)
	pad := int(math.Round(total - own - front))
	if pad < 0 {
		return 0
	}
	return pad
}

// LoopCount sizes the aloop repetition count for a looping span. The real
// source length is not known here, so the count assumes a conservatively
// short clip and a safety buffer; the trim stage cuts the surplus.
func LoopCount(span timeline.Span, shard timeline.Shard, fps float64) int {
	start, _ := TrimWindow(span, shard, fps)
	window := start + shard.DurationSeconds(fps) + loopSafetyBufferSeconds
	return int(math.Ceil(window/conservativeClipSeconds)) + loopCountMargin
}

// volumeStage picks the volume-shaping filter for a span. Spans without an
// envelope get a constant gain. Envelopes fold to one of three shapes: a fade
// to silence when the last breakpoint lands at or below the floor, a fade in
// when volume rises, and a linear ramp otherwise.
func volumeStage(span timeline.Span, fps float64) filtergraph.Filter {
	env := span.Envelope
	if env == nil {
		return filtergraph.Volume(span.Volume)
	}
	front := PadStartSeconds(span, fps)
	first := env.First()
	last := env.Last()
	from := front + float64(first.FrameOffset)/fps
	to := front + float64(last.FrameOffset)/fps
	switch {
	case last.Volume <= fadeFloor:
		return filtergraph.FadeOut(from, to-from)
	case last.Volume > first.Volume:
		return filtergraph.FadeIn(from, to-from)
	default:
		return filtergraph.LinearRamp(from, to, first.Volume, last.Volume)
	}
}

// BuildChain assembles the full per-asset filter chain in processing order:
// loop, tempo, trim, front pad, end pad, volume shaping.
func BuildChain(span timeline.Span, shard timeline.Shard, fps float64, sampleRate int) (filtergraph.Chain, error) {
	var chain filtergraph.Chain

	if span.Loop {
		chain = append(chain, filtergraph.Loop(LoopCount(span, shard, fps)))
	}

	tempo, err := filtergraph.TempoChain(span.PlaybackRate)
	if err != nil {
		return nil, fmt.Errorf("tempo chain for %s: %w", span.Key, err)
	}
	chain = append(chain, tempo...)

	start, end := TrimWindow(span, shard, fps)
	chain = append(chain, filtergraph.Trim(start, end))

	if ms := int(math.Round(PadStartSeconds(span, fps) * 1000)); ms > 0 {
		chain = append(chain, filtergraph.DelayMilliseconds(ms))
	}
	if pad := PadEndSamples(span, shard, fps, sampleRate); pad > 0 {
		chain = append(chain, filtergraph.PadSamples(pad))
	}

	chain = append(chain, volumeStage(span, fps))
	return chain, nil
}
