// Package file provides a TOML file-based configuration store.
//
// Configuration lives in a single config.toml under the lectern config
// directory. Nested tables are flattened to dot-notation keys, so
// [pipeline] max_context_tokens becomes "pipeline.max_context_tokens".
// An optional fsnotify watcher reloads the file when it changes on disk.
package file
