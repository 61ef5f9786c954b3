// Package config loads and validates mixdown's TOML configuration.
//
// Configuration sections:
//   - Paths: working root for shard temp directories, log directory
//   - Engine: FFmpeg/ffprobe binaries and the subprocess timeout
//   - Compositor: segment synthesis concurrency
//   - Ledger: shard-run SQLite ledger location
//   - Logging: log format and level
//
// Load resolves the config file (explicit path, ~/.config/mixdown/config.toml,
// or ./mixdown.toml), applies defaults for absent values, expands ~ in paths,
// and validates the result.
package config
