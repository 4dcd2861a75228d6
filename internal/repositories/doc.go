// Package repositories implements local device storage for the reader.
//
// The reader keeps two kinds of device-scoped state: per-book bookmark sets and global reader
// preferences. Both are plain string values under string keys, so storage is a single
// [models.KV] contract with two implementations:
//   - [KVRepository] : SQLite-backed store in the kv_store table, shared by every command on the device
//   - [MemoryKV] : process-local map used by tests and ephemeral sessions
//
// Writes are synchronous and last-writer-wins; nothing here locks across processes beyond
// what SQLite itself does.
package repositories
