package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is one key=value argument of a filter stage. Values are already in
// FFmpeg's textual form.
type Param struct {
	Key   string
	Value string
}

// Filter is a single typed stage of an audio filter chain.
type Filter struct {
	Name   string
	Params []Param
}

// String serializes the stage to FFmpeg filter syntax: name=k1=v1:k2=v2.
func (f Filter) String() string {
	if len(f.Params) == 0 {
		return f.Name
	}
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain is an ordered list of filter stages.
type Chain []Filter

// String serializes the chain for FFmpeg's -af option.
func (c Chain) String() string {
	parts := make([]string, 0, len(c))
	for _, f := range c {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// maxLoopChunkSamples is the largest sample buffer aloop accepts; with the
// source length unknown at build time the whole input must fit in one chunk.
const maxLoopChunkSamples = 2147483647

// Loop repeats the source count additional times so that enough material
// exists for a later trim, regardless of the true source duration.
func Loop(count int) Filter {
	return Filter{Name: "aloop", Params: []Param{
		{Key: "loop", Value: strconv.Itoa(count)},
		{Key: "size", Value: strconv.Itoa(maxLoopChunkSamples)},
	}}
}

// Tempo adjusts playback speed by a single bounded factor.
func Tempo(factor float64) Filter {
	return Filter{Name: "atempo", Params: []Param{
		{Key: "tempo", Value: formatFloat(factor)},
	}}
}

// Trim extracts the [start, end) window, in seconds of stream time.
func Trim(start, end float64) Filter {
	return Filter{Name: "atrim", Params: []Param{
		{Key: "start", Value: formatFloat(start)},
		{Key: "end", Value: formatFloat(end)},
	}}
}

// DelayMilliseconds silence-pads the front of every channel. adelay leaves
// channels beyond the listed delays untouched, so all=1 broadcasts the single
// delay regardless of the source layout.
func DelayMilliseconds(ms int) Filter {
	return Filter{Name: "adelay", Params: []Param{
		{Key: "delays", Value: strconv.Itoa(ms)},
		{Key: "all", Value: "1"},
	}}
}

// PadSamples appends count samples of silence.
func PadSamples(count int) Filter {
	return Filter{Name: "apad", Params: []Param{
		{Key: "pad_len", Value: strconv.Itoa(count)},
	}}
}

// Volume applies a constant linear gain.
func Volume(gain float64) Filter {
	return Filter{Name: "volume", Params: []Param{
		{Key: "volume", Value: formatFloat(gain)},
	}}
}

// fadeCurve is the smooth curve used for synthesized fades. Logistic sigmoid
// avoids the audible knee a linear ramp leaves at the fade edges.
const fadeCurve = "losi"

// FadeOut synthesizes a timed fade to silence starting at start seconds of
// stream time and lasting duration seconds.
func FadeOut(start, duration float64) Filter {
	return fade("out", start, duration)
}

// FadeIn synthesizes a timed fade from silence.
func FadeIn(start, duration float64) Filter {
	return fade("in", start, duration)
}

func fade(direction string, start, duration float64) Filter {
	return Filter{Name: "afade", Params: []Param{
		{Key: "t", Value: direction},
		{Key: "st", Value: formatFloat(start)},
		{Key: "d", Value: formatFloat(duration)},
		{Key: "curve", Value: fadeCurve},
	}}
}

// LinearRamp applies a piecewise-linear gain that holds from at stream times
// before start, interpolates linearly to to between start and end, and holds
// to afterwards. Used for partial fades that settle at a nonzero level.
func LinearRamp(start, end, from, to float64) Filter {
	expr := fmt.Sprintf(
		"'if(lt(t,%s),%s,if(gt(t,%s),%s,%s+(%s-%s)*(t-%s)/(%s-%s)))'",
		formatFloat(start), formatFloat(from),
		formatFloat(end), formatFloat(to),
		formatFloat(from), formatFloat(to), formatFloat(from),
		formatFloat(start), formatFloat(end), formatFloat(start),
	)
	return Filter{Name: "volume", Params: []Param{
		{Key: "volume", Value: expr},
		{Key: "eval", Value: "frame"},
	}}
}

// Mix combines inputs additively. Output duration follows the longest input
// and input levels are preserved as authored, never rebalanced.
func Mix(inputs int) Filter {
	return Filter{Name: "amix", Params: []Param{
		{Key: "inputs", Value: strconv.Itoa(inputs)},
		{Key: "duration", Value: "longest"},
		{Key: "normalize", Value: "0"},
	}}
}
