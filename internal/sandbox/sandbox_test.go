package sandbox

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
)

func openTestSandbox(t *testing.T, data *dataset.Dataset) *Sandbox {
	t.Helper()
	sb, err := Open(context.Background(), data)
	require.NoError(t, err)
	t.Cleanup(func() { sb.Close() })
	return sb
}

func TestOpen_MasterCounts(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	counts, err := sb.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dataset.Master().Counts(), counts)
}

func TestOpen_AssignmentCounts(t *testing.T) {
	a := assign.Assign("student123", "hw456")
	sb := openTestSandbox(t, a.Dataset())

	counts, err := sb.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dataset.Counts{Students: 16, Courses: 17, Lecturers: 17, Enrollments: 43}, counts)
}

func TestOpen_NilDataset(t *testing.T) {
	_, err := Open(context.Background(), nil)
	require.Error(t, err)
}

func TestOpen_DuplicateKeyFails(t *testing.T) {
	data := dataset.Master().Clone()
	data.Courses = append(data.Courses, data.Courses[0])

	_, err := Open(context.Background(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert course 101")
}

func TestOpen_KeepsDuplicateEnrollments(t *testing.T) {
	data := dataset.Master().Clone()
	dup := data.Enrollments[0]
	dup.EnrollmentDate = "2025-02-01"
	dup.Grade = 77
	data.Enrollments = append(data.Enrollments, dup)

	sb := openTestSandbox(t, data)
	res, err := sb.Query(context.Background(),
		"SELECT EnrollmentDate, Grade FROM Enrollments WHERE StudentID = ? AND CourseID = ? ORDER BY EnrollmentDate",
		dup.StudentID, dup.CourseID)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []any{"2025-02-01", int64(77)}, res.Rows[1])

	counts, err := sb.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(data.Enrollments), counts.Enrollments)
}

func TestOpen_KeepsOrphanEnrollments(t *testing.T) {
	data := dataset.Master().Clone()
	data.Enrollments = append(data.Enrollments, dataset.Enrollment{
		StudentID: "nobody", CourseID: 999, EnrollmentDate: "2024-01-01", Grade: 50,
	})

	sb := openTestSandbox(t, data)
	res, err := sb.Query(context.Background(), "SELECT COUNT(*) FROM Enrollments WHERE StudentID = ?", "nobody")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}}, res.Rows)
}

func TestQuery_TypesAndColumns(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	res, err := sb.Query(context.Background(), `
		SELECT StudentID, CourseID, Grade
		FROM Enrollments
		ORDER BY rowid
		LIMIT 1`)
	require.NoError(t, err)

	assert.Equal(t, []string{"StudentID", "CourseID", "Grade"}, res.Columns)
	assert.Equal(t, [][]any{{"87369214", int64(101), int64(92)}}, res.Rows)
	assert.False(t, res.Truncated)
}

func TestQuery_Join(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	res, err := sb.Query(context.Background(), `
		SELECT s.FirstName, COUNT(*)
		FROM Students s JOIN Enrollments e ON e.StudentID = s.StudentID
		WHERE s.StudentID = '87369214'
		GROUP BY s.StudentID`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"John", int64(5)}}, res.Rows)
}

func TestQuery_EmptyResultIsNotNil(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	res, err := sb.Query(context.Background(), "SELECT * FROM Courses WHERE CourseID < 0")
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Len(t, res.Columns, 4)
}

func TestQuery_NullValue(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	res, err := sb.Query(context.Background(), "SELECT MAX(Grade) FROM Enrollments WHERE Grade > 100")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{nil}}, res.Rows)
}

func TestQuery_ReadOnly(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())
	ctx := context.Background()

	statements := []string{
		"DELETE FROM Students",
		"UPDATE Enrollments SET Grade = 100",
		"INSERT INTO Courses VALUES (999, 'x', 1, 'y')",
		"DROP TABLE Lecturers",
		"CREATE TABLE t (x INTEGER)",
	}
	for _, stmt := range statements {
		t.Run(stmt, func(t *testing.T) {
			_, err := sb.Query(ctx, stmt)
			require.Error(t, err)
		})
	}

	counts, err := sb.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, dataset.Master().Counts(), counts)
}

func TestQuery_CannotLiftReadOnly(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())
	ctx := context.Background()

	statements := []string{
		"PRAGMA query_only = OFF",
		"PRAGMA query_only = 0",
		"PRAGMA foreign_keys = ON",
		"ATTACH DATABASE ':memory:' AS other",
		"BEGIN",
		"CREATE TEMP TABLE t (x INTEGER)",
		"CREATE INDEX idx_x ON Students(City)",
		"ALTER TABLE Students ADD COLUMN x TEXT",
	}
	for _, stmt := range statements {
		t.Run(stmt, func(t *testing.T) {
			_, err := sb.Query(ctx, stmt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not authorized")
		})
	}

	// The lock still holds after the attempts.
	_, err := sb.Query(ctx, "DELETE FROM Students")
	require.Error(t, err)

	res, err := sb.Query(ctx, "PRAGMA query_only")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}}, res.Rows)

	counts, err := sb.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, dataset.Master().Counts(), counts)
}

func TestQuery_ReadsStillAllowed(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())
	ctx := context.Background()

	res, err := sb.Query(ctx, "PRAGMA table_info(Courses)")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 4)

	res, err = sb.Query(ctx, `
		WITH RECURSIVE n(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM n WHERE i < 3)
		SELECT i FROM n`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}, {int64(2)}, {int64(3)}}, res.Rows)

	res, err = sb.Query(ctx, "SELECT UPPER(City) FROM Students WHERE StudentID = ?", dataset.Master().Students[0].StudentID)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestQuery_SyntaxError(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	_, err := sb.Query(context.Background(), "SELEC * FROM Students")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query:")
}

func TestQuery_MaxRows(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())
	sb.SetMaxRows(10)

	res, err := sb.Query(context.Background(), "SELECT * FROM Enrollments")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 10)
	assert.True(t, res.Truncated)

	sb.SetMaxRows(0)
	res, err = sb.Query(context.Background(), "SELECT * FROM Enrollments")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 137)
	assert.False(t, res.Truncated)
}

func TestQuery_CanceledContext(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sb.Query(ctx, "SELECT * FROM Students")
	require.Error(t, err)
}

func TestSandboxesAreIsolated(t *testing.T) {
	a := openTestSandbox(t, assign.Assign("alice", "hw1").Dataset())
	b := openTestSandbox(t, dataset.Master())

	ca, err := a.Counts(context.Background())
	require.NoError(t, err)
	cb, err := b.Counts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, assign.Assign("alice", "hw1").Counts(), ca)
	assert.Equal(t, dataset.Master().Counts(), cb)
}

func TestQuery_Concurrent(t *testing.T) {
	sb := openTestSandbox(t, dataset.Master())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := sb.Query(context.Background(), "SELECT COUNT(*) FROM Students")
			if err == nil && res.Rows[0][0] != int64(42) {
				t.Errorf("count = %v, want 42", res.Rows[0][0])
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestClose(t *testing.T) {
	sb, err := Open(context.Background(), dataset.Master())
	require.NoError(t, err)

	require.NoError(t, sb.Close())
	require.NoError(t, sb.Close())

	_, err = sb.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = sb.Counts(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
