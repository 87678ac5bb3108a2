// Package state defines the durable key/value contract behind a preferences
// engine, plus an in-memory implementation.
//
// Responsibilities:
//   - Store only reads and writes one flat string entry per key.
//   - Keys are opaque to stores; the engine derives them as prefix + setting name.
//   - Stores may fail at any time. The engine treats failures as degraded reads
//     and falls back to in-memory values, so adapters should report errors
//     rather than retry.
//
// Backends:
//
//	state.MemoryStore          tests and examples
//	state/badgerstore          embedded LSM key/value store
//	state/sqlitestore          single table in a SQLite database
//	state/filestore            one JSON document on disk
//
// Namespaced wraps any Store so several engines can share a backend without
// colliding keys.
package state
