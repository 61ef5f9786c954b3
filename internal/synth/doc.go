// Package synth turns one reconstructed asset span into a single trimmed,
// time-stretched, looped-if-needed, padded, and volume-shaped audio file by
// driving FFmpeg as an external subprocess.
//
// The filter chain is assembled from typed stages (package filtergraph) in a
// fixed order: loop materialization, tempo chain, trim, front pad, end pad,
// volume shaping. Each stage's math is exported so the chain is testable
// without FFmpeg.
//
// Spans that cannot contribute audio (zero playback rate, zero volume, or a
// video source with no audio stream) are skipped without launching a
// subprocess. A subprocess failure or a zero-byte output file is fatal for
// the shard: a missing track would desynchronize audio from video.
package synth
