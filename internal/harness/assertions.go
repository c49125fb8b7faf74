package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/sandbox"
)

// QueryOutcome is a query's result or its error.
type QueryOutcome struct {
	Result *sandbox.Result
	Err    error
}

// AssertionContext is everything assertions can look at for one student.
type AssertionContext struct {
	Assignment assign.Assignment
	Dataset    *dataset.Dataset
	Bounds     assign.Config
	Counts     dataset.Counts
	Queries    map[string]QueryOutcome
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(actx *AssertionContext, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertInvariants:
			err = assertInvariants(actx)
		case AssertTableRows:
			err = assertTableRows(actx, a)
		case AssertQueryRows:
			err = assertQueryRows(actx, a)
		case AssertQueryColumns:
			err = assertQueryColumns(actx, a)
		case AssertQueryError:
			err = assertQueryError(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertInvariants(actx *AssertionContext) error {
	violations := assign.Verify(actx.Assignment, actx.Dataset, actx.Bounds)
	if len(violations) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertInvariants,
		Expected: "no violations",
		Actual:   fmt.Sprintf("%d violation(s), first: %s", len(violations), violations[0]),
	}
}

func assertTableRows(actx *AssertionContext, a Assertion) error {
	var n int
	switch a.Table {
	case "Students":
		n = actx.Counts.Students
	case "Courses":
		n = actx.Counts.Courses
	case "Lecturers":
		n = actx.Counts.Lecturers
	case "Enrollments":
		n = actx.Counts.Enrollments
	default:
		return fmt.Errorf("unknown table %q", a.Table)
	}

	if !inRange(n, a.Min, a.Max) {
		return &AssertionError{
			Type:     AssertTableRows,
			Expected: fmt.Sprintf("%s rows %s", a.Table, describeRange(a.Min, a.Max)),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

func assertQueryRows(actx *AssertionContext, a Assertion) error {
	out, err := lookup(actx, a.Query)
	if err != nil {
		return err
	}
	if out.Err != nil {
		return &AssertionError{
			Type:     AssertQueryRows,
			Expected: fmt.Sprintf("query %s to succeed", a.Query),
			Actual:   out.Err.Error(),
		}
	}

	if n := len(out.Result.Rows); !inRange(n, a.Min, a.Max) {
		return &AssertionError{
			Type:     AssertQueryRows,
			Expected: fmt.Sprintf("query %s rows %s", a.Query, describeRange(a.Min, a.Max)),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

func assertQueryColumns(actx *AssertionContext, a Assertion) error {
	out, err := lookup(actx, a.Query)
	if err != nil {
		return err
	}
	if out.Err != nil {
		return &AssertionError{
			Type:     AssertQueryColumns,
			Expected: fmt.Sprintf("query %s to succeed", a.Query),
			Actual:   out.Err.Error(),
		}
	}

	if !slices.Equal(out.Result.Columns, a.Columns) {
		return &AssertionError{
			Type:     AssertQueryColumns,
			Expected: fmt.Sprintf("columns %v", a.Columns),
			Actual:   fmt.Sprintf("columns %v", out.Result.Columns),
		}
	}
	return nil
}

func assertQueryError(actx *AssertionContext, a Assertion) error {
	out, err := lookup(actx, a.Query)
	if err != nil {
		return err
	}
	if out.Err == nil {
		return &AssertionError{
			Type:     AssertQueryError,
			Expected: fmt.Sprintf("query %s to fail", a.Query),
			Actual:   fmt.Sprintf("%d rows", len(out.Result.Rows)),
		}
	}
	return nil
}

func lookup(actx *AssertionContext, name string) (QueryOutcome, error) {
	out, ok := actx.Queries[name]
	if !ok {
		return QueryOutcome{}, fmt.Errorf("query %q was not run", name)
	}
	return out, nil
}

func inRange(n int, lo, hi *int) bool {
	if lo != nil && n < *lo {
		return false
	}
	if hi != nil && n > *hi {
		return false
	}
	return true
}

func describeRange(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("in [%d, %d]", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf(">= %d", *lo)
	case hi != nil:
		return fmt.Sprintf("<= %d", *hi)
	}
	return "unbounded"
}
