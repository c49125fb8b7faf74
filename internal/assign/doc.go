// Package assign carves a personal slice of the master dataset for each
// (student, homework set) pair.
//
// For every primary table (students, courses, lecturers) the Assigner
// derives an independent seed from a table-qualified key, resolves the
// table's configured row range to a count, and selects that many rows with
// subset.Select. Enrollments are then filtered in one pass to the rows whose
// student and course were both selected; nothing else is dropped.
//
// # Guarantees
//
//   - Determinism: the same pair always yields the same Assignment, byte for
//     byte, independent of call order, other calls or process restarts.
//   - Cardinality: each primary table has between Min and Max rows, capped
//     at the size of the master table.
//   - Referential integrity: every enrollment references a selected student
//     and a selected course, and every such master enrollment is present.
//   - Isolation: results are copies; callers may modify them freely.
//
// An Assigner holds only immutable state and is safe for concurrent use.
package assign
