// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Vectors are stored as little-endian float32 BLOBs next to the chunk text and
// its provenance. The store dimension lives in the store_meta table.
//
// # Data Location
//
// By default, the database is stored at ~/.studymate/data/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes hold an exclusive lock for the whole
// batch and commit in one transaction; queries share a read lock, and SQLite
// runs in WAL mode so readers never wait on the database file.
package sqlite
