// Package sqlite implements the storage interface using SQLite.
//
// File layout:
//
//   - store.go: SQLiteStorage struct, New() constructor, initialization logic,
//     and database utility methods (Close, Path, IsClosed, UnderlyingDB)
//   - schema.go: database schema definition
//   - recipes.go: recipe CRUD
//   - steps.go: step row reads and the renumbering primitives (shift, swap)
//   - uses.go: step output use (dependency edge) reads and rewrites
//   - ingredients.go: ingredient use reads and rewrites
//   - events.go: audit event rows
//   - config.go: key/value configuration table
//   - transaction.go: RunInTransaction and the Transaction implementation
//   - errors.go: sentinel error wrapping helpers
//   - util.go: busy retry, shared query helpers
//
// Renumbering note: steps carry a UNIQUE (recipe_id, step_num) key, and
// SQLite enforces uniqueness per row during multi-row UPDATEs. Shift and
// swap therefore go through a negate-then-fix two-phase UPDATE so that no
// intermediate row state collides. Edge and ingredient rewrites are single
// CASE UPDATEs; their per-row results are always final values.
package sqlite
