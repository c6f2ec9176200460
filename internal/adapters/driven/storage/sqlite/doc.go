// Package sqlite provides a SQLite-based implementation of the document and
// chunk store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database connection:
//
//   - DocumentStore: document text and metadata
//   - ChunkStore: chunk text and embeddings, keyed by (document_id, chunk_index)
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.lectern/data/lectern.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. ReplaceAll runs in a single transaction, so readers see
// either the old chunk set or the new one.
package sqlite
