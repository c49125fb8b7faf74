package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/sandbox"
)

func testContext(t *testing.T) *AssertionContext {
	t.Helper()
	a := assign.Default()
	bundle := a.Assign("student123", "hw456")
	return &AssertionContext{
		Assignment: bundle,
		Dataset:    a.Dataset(),
		Bounds:     a.Config(),
		Counts:     bundle.Counts(),
		Queries: map[string]QueryOutcome{
			"cities": {Result: &sandbox.Result{
				Columns: []string{"City", "n"},
				Rows:    [][]any{{"Haifa", int64(2)}, {"Tel Aviv", int64(3)}},
			}},
			"drop": {Err: errors.New("query: attempt to write a readonly database")},
		},
	}
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"invariants hold", Assertion{Type: AssertInvariants}, ""},
		{"table rows in range", Assertion{Type: AssertTableRows, Table: "Students", Min: intPtr(16), Max: intPtr(16)}, ""},
		{"table rows unbounded", Assertion{Type: AssertTableRows, Table: "Enrollments"}, ""},
		{"table rows too few", Assertion{Type: AssertTableRows, Table: "Courses", Min: intPtr(30)},
			"assertion failed: table_rows: expected Courses rows >= 30, got 17 rows"},
		{"table rows too many", Assertion{Type: AssertTableRows, Table: "Lecturers", Max: intPtr(2)},
			"assertion failed: table_rows: expected Lecturers rows <= 2, got 17 rows"},
		{"unknown table", Assertion{Type: AssertTableRows, Table: "Teachers"}, `unknown table "Teachers"`},
		{"query rows", Assertion{Type: AssertQueryRows, Query: "cities", Min: intPtr(1), Max: intPtr(2)}, ""},
		{"query rows out of range", Assertion{Type: AssertQueryRows, Query: "cities", Min: intPtr(5), Max: intPtr(9)},
			"assertion failed: query_rows: expected query cities rows in [5, 9], got 2 rows"},
		{"query rows on failed query", Assertion{Type: AssertQueryRows, Query: "drop"},
			"assertion failed: query_rows: expected query drop to succeed, got query: attempt to write a readonly database"},
		{"query columns", Assertion{Type: AssertQueryColumns, Query: "cities", Columns: []string{"City", "n"}}, ""},
		{"query columns mismatch", Assertion{Type: AssertQueryColumns, Query: "cities", Columns: []string{"n", "City"}},
			"assertion failed: query_columns: expected columns [n City], got columns [City n]"},
		{"query columns on failed query", Assertion{Type: AssertQueryColumns, Query: "drop", Columns: []string{"x"}},
			"expected query drop to succeed"},
		{"query error", Assertion{Type: AssertQueryError, Query: "drop"}, ""},
		{"query error but succeeded", Assertion{Type: AssertQueryError, Query: "cities"},
			"assertion failed: query_error: expected query cities to fail, got 2 rows"},
		{"query not run", Assertion{Type: AssertQueryRows, Query: "other"}, `query "other" was not run`},
		{"unknown type", Assertion{Type: "trace_order"}, `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testContext(t), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertInvariants_Violation(t *testing.T) {
	actx := testContext(t)
	actx.Assignment.Students = append(actx.Assignment.Students, actx.Assignment.Students[0])

	errs := EvaluateAssertions(actx, []Assertion{{Type: AssertInvariants}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertion failed: invariants: expected no violations")
	assert.Contains(t, errs[0], "duplicate/students")
}

func TestAssertInvariants_ForeignRow(t *testing.T) {
	actx := testContext(t)
	actx.Assignment.Enrollments = append(actx.Assignment.Enrollments, dataset.Enrollment{
		StudentID: "nobody", CourseID: 999, EnrollmentDate: "2024-01-01", Grade: 50,
	})

	errs := EvaluateAssertions(actx, []Assertion{{Type: AssertInvariants}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "integrity/enrollments")
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	errs := EvaluateAssertions(testContext(t), []Assertion{
		{Type: AssertQueryError, Query: "cities"},
		{Type: AssertInvariants},
		{Type: AssertTableRows, Table: "Students", Max: intPtr(0)},
	})
	assert.Len(t, errs, 2)
}

func TestDescribeRange(t *testing.T) {
	assert.Equal(t, "in [1, 2]", describeRange(intPtr(1), intPtr(2)))
	assert.Equal(t, ">= 1", describeRange(intPtr(1), nil))
	assert.Equal(t, "<= 2", describeRange(nil, intPtr(2)))
	assert.Equal(t, "unbounded", describeRange(nil, nil))
}
