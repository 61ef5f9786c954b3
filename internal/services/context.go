package services

import (
	"context"
	"fmt"
)

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	shardKey    contextKey = "shard"
	assetKeyKey contextKey = "asset_key"
)

// WithRunID annotates context with the compositor run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithShard annotates context with the shard's frame range.
func WithShard(ctx context.Context, startFrame, endFrame int) context.Context {
	return context.WithValue(ctx, shardKey, fmt.Sprintf("%d-%d", startFrame, endFrame))
}

// ShardFromContext returns the shard label if present.
func ShardFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(shardKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAssetKey annotates context with the asset currently being processed.
func WithAssetKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, assetKeyKey, key)
}

// AssetKeyFromContext returns the asset key if present.
func AssetKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assetKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
