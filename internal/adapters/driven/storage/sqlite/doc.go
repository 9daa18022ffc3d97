// Package sqlite stores the library in a single SQLite file using the
// pure Go modernc.org/sqlite driver, so the binary builds without cgo.
//
// Documents, chunks and collections share documents.db in the data
// directory (~/.deepdocs/data by default). Embeddings are kept as
// little-endian float32 BLOBs next to the rows they describe. Removing a
// document cascades to its chunks and collection memberships.
//
// The schema is versioned by the numbered scripts under migrations/,
// which are compiled into the binary and applied in order by Open.
// Connections run in WAL mode with a busy timeout, so the CLI, the MCP
// server and a watcher can share one library.
package sqlite
