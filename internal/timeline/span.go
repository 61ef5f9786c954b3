package timeline

// Breakpoint is one volume automation point, expressed as a frame offset from
// the start of the owning span.
type Breakpoint struct {
	FrameOffset int
	Volume      float64
}

// Envelope is an ordered sequence of volume breakpoints. Offsets increase
// monotonically and the first breakpoint always sits at offset 0.
type Envelope []Breakpoint

// First returns the initial breakpoint.
func (e Envelope) First() Breakpoint {
	return e[0]
}

// Last returns the final breakpoint.
func (e Envelope) Last() Breakpoint {
	return e[len(e)-1]
}

// Span is the reconstructed lifetime of one media asset within a shard.
// Frame indices are inclusive on both ends and live in the shard's local
// frame-index space.
type Span struct {
	Key          string
	Source       string
	Kind         AssetKind
	StartFrame   int
	EndFrame     int
	PlaybackRate float64
	Volume       float64
	Loop         bool

	// TrimLeftSeconds is the playback position at the asset's first
	// appearance, in source seconds.
	TrimLeftSeconds float64

	// DurationSeconds is the sampled playback duration, or the unbounded
	// sentinel when the asset loops or when sampling could not produce a
	// trustworthy value.
	DurationSeconds float64

	// Envelope is non-nil only when the volume changed during the span.
	Envelope Envelope
}

// DurationFrames returns the span length in frames, inclusive of both ends.
func (s Span) DurationFrames() int {
	return s.EndFrame - s.StartFrame + 1
}
