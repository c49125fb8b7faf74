// Package store provides SQLite-backed durable storage for issued
// assignments.
//
// Once a student has been handed an assignment for a homework set, the
// stored copy is what they see from then on, even if the dataset or the
// bounds change later. GetOrAssign returns the stored copy when there is one
// and computes and stores a new one otherwise.
//
// Each row carries the assignment as canonical JSON plus its fingerprint.
// Reads recompute the fingerprint and report ErrCorrupt on mismatch.
//
// # Ordering
//
// Rows are numbered by a logical seq assigned at insert time, never by wall
// clock time. List orders by student_id, then seq.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
