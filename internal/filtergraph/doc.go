// Package filtergraph builds FFmpeg audio filter chains as typed stages that
// serialize to the engine's argument syntax only at the process boundary.
//
// Keeping the chain typed until serialization makes the tempo decomposition
// and fade selection logic unit-testable without launching FFmpeg.
package filtergraph
