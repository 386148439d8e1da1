// Package store provides SQLite-backed persistence for game saves and
// simulation batches.
//
// Tables:
//   - saves: restorable partial snapshots, addressed by id and verified
//     against a canonical digest on load
//   - batches: one row per simulator run with the aggregate report
//   - game_results: per-game outcomes of a batch, keyed by (batch, index)
//
// Writes are idempotent: every INSERT uses ON CONFLICT DO NOTHING, so a
// retried write with the same id is a no-op.
//
// Listing order never depends on wall time. Rows carry an insertion seq
// and every multi-row query ends with ORDER BY seq ASC, id ASC COLLATE BINARY
// (or game_index for game results).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
