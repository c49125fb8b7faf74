// Package dataset defines the relational records handed out to students and
// the master dataset every assignment is drawn from.
//
// The master has four tables: students, courses and lecturers are keyed by
// their own identifier, and enrollments link a student to a course. Master
// returns the embedded copy, decoded and validated once per process and
// never mutated afterwards. Deployments may supply their own dataset file;
// LoadFile applies the same strict decoding and validation.
//
// Validation is split in two. Validate rejects datasets that cannot be used
// at all (missing or malformed fields, duplicate primary keys). Orphans
// reports enrollments whose foreign keys do not resolve; such rows are
// tolerated because assignment never selects them.
package dataset
