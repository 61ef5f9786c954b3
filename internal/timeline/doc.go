// Package timeline reconstructs per-asset audio spans from the per-frame
// asset samples emitted by the upstream renderer.
//
// The renderer reports, once per rendered frame, which media assets were
// active together with their playback position, rate, and volume. Reconstruct
// folds those samples into one Span per distinct asset describing where the
// asset starts and ends within the shard, how far into the source it begins,
// and how its volume changed over time.
//
// All frame indices are relative to the shard owned by the calling render
// worker, never to the whole video. Two workers rendering disjoint shards
// therefore produce spans that splice without gaps when their audio fragments
// are later assembled.
package timeline
