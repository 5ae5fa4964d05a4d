// Package store persists per-task crawl state as JSON files under a
// task-scoped directory. Every write replaces the target file atomically, so
// a crash leaves either the previous complete file or the new complete file,
// never a mix.
package store
