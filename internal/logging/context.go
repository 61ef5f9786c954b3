package logging

import (
	"context"
	"log/slog"

	"mixdown/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for compositor run identifiers.
	FieldRunID = "run_id"
	// FieldShard is the standardized structured logging key for shard frame ranges.
	FieldShard = "shard"
	// FieldAssetKey is the standardized structured logging key for media asset keys.
	FieldAssetKey = "asset_key"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator guidance on errors.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if shard, ok := services.ShardFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldShard, shard))
	}
	if key, ok := services.AssetKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAssetKey, key))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
