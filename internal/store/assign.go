package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/dataslice/internal/assign"
)

// GetOrAssign returns the assignment already issued for the pair, or draws
// one with a, stores it and returns it. created reports whether this call
// issued it.
//
// The returned record is always read back from the database, so concurrent
// callers for the same pair observe the same assignment.
func (s *Store) GetOrAssign(ctx context.Context, a *assign.Assigner, studentID, homeworkSetID string) (rec *Record, created bool, err error) {
	rec, err = s.Get(ctx, studentID, homeworkSetID)
	if err == nil {
		s.logger.Debug("assignment found",
			"student_id", studentID,
			"homework_set_id", homeworkSetID,
			"seq", rec.Seq,
		)
		return rec, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	inserted, err := s.Put(ctx, studentID, homeworkSetID, a.Assign(studentID, homeworkSetID), a.Config())
	if err != nil {
		return nil, false, err
	}

	rec, err = s.Get(ctx, studentID, homeworkSetID)
	if err != nil {
		return nil, false, fmt.Errorf("read back assignment: %w", err)
	}

	if inserted {
		counts := rec.Assignment.Counts()
		s.logger.Info("assignment issued",
			"student_id", studentID,
			"homework_set_id", homeworkSetID,
			"students", counts.Students,
			"courses", counts.Courses,
			"lecturers", counts.Lecturers,
			"enrollments", counts.Enrollments,
		)
	}
	return rec, inserted, nil
}
