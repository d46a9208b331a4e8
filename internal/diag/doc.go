// Package diag makes the pipeline's swallowed failures observable.
//
// Emit never propagates errors to its caller, so every degraded path (a sink
// that failed, a delivery that was spooled, a value that would not serialize)
// is recorded here instead: a named in-process counter for tests, a
// structured warning for operators, and a best-effort row in a SQLite
// journal the CLI can list. Recording itself never fails the caller.
package diag
