package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/dataslice/internal/assign"
)

// Put stores the assignment issued to a student for a homework set, drawn
// with cfg. Uses ON CONFLICT DO NOTHING: a pair that is already stored keeps
// its first assignment and inserted is false.
func (s *Store) Put(ctx context.Context, studentID, homeworkSetID string, a assign.Assignment, cfg assign.Config) (inserted bool, err error) {
	payload, err := a.Canonical()
	if err != nil {
		return false, fmt.Errorf("put assignment: %w", err)
	}
	bounds, err := json.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("put assignment: bounds: %w", err)
	}
	id := assign.ID(studentID, homeworkSetID)
	fingerprint := hashPayload(payload)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("put assignment: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM assignments`).Scan(&seq); err != nil {
		return false, fmt.Errorf("put assignment: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO assignments
		(id, student_id, homework_set_id, fingerprint, payload, bounds, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id.String(),
		studentID,
		homeworkSetID,
		fingerprint,
		string(payload),
		string(bounds),
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("put assignment: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("put assignment: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("put assignment: commit: %w", err)
	}

	if n > 0 {
		s.logger.Debug("assignment stored",
			"student_id", studentID,
			"homework_set_id", homeworkSetID,
			"fingerprint", fingerprint,
			"seq", seq,
		)
	}
	return n > 0, nil
}
