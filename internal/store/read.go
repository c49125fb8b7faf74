package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/canonical"
)

var (
	// ErrNotFound is returned when no assignment is stored for a pair.
	ErrNotFound = errors.New("assignment not found")

	// ErrCorrupt is returned when a stored payload no longer matches its
	// fingerprint or cannot be decoded.
	ErrCorrupt = errors.New("stored assignment is corrupt")
)

// Record is a stored assignment.
type Record struct {
	ID            uuid.UUID         `json:"id"`
	StudentID     string            `json:"student_id"`
	HomeworkSetID string            `json:"homework_set_id"`
	Fingerprint   string            `json:"fingerprint"`
	Bounds        assign.Config     `json:"bounds"`
	Seq           int64             `json:"seq"`
	Assignment    assign.Assignment `json:"assignment"`
}

const selectColumns = `id, student_id, homework_set_id, fingerprint, payload, bounds, seq`

// Get returns the assignment stored for a pair, or ErrNotFound.
func (s *Store) Get(ctx context.Context, studentID, homeworkSetID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM assignments
		WHERE homework_set_id = ? AND student_id = ?
	`, homeworkSetID, studentID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return rec, nil
}

// List returns every assignment stored for a homework set.
// Results are ordered by student_id, then seq.
func (s *Store) List(ctx context.Context, homeworkSetID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM assignments
		WHERE homework_set_id = ?
		ORDER BY student_id COLLATE BINARY ASC, seq ASC
	`, homeworkSetID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list assignments: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec     Record
		id      string
		payload string
		bounds  string
	)
	if err := row.Scan(&id, &rec.StudentID, &rec.HomeworkSetID, &rec.Fingerprint, &payload, &bounds, &rec.Seq); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q: %v", ErrCorrupt, id, err)
	}
	rec.ID = parsed

	if got := hashPayload([]byte(payload)); got != rec.Fingerprint {
		return nil, fmt.Errorf("%w: %s/%s fingerprint %s, payload hashes to %s",
			ErrCorrupt, rec.HomeworkSetID, rec.StudentID, rec.Fingerprint, got)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Assignment); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal([]byte(bounds), &rec.Bounds); err != nil {
		return nil, fmt.Errorf("%w: bounds: %v", ErrCorrupt, err)
	}
	return &rec, nil
}

func hashPayload(payload []byte) string {
	return canonical.Hash(assign.DomainAssignment, payload)
}
