// Package logging builds the slog loggers used across mixdown and defines
// the standardized structured field keys.
//
// Two output formats are supported: a compact console handler for operators
// and a JSON handler for machine consumption. Loggers derived with
// NewComponentLogger carry a stable component attribute; context-derived
// fields (run id, shard, asset key) are attached via WithContext.
package logging
