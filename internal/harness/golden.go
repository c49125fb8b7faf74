package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dataslice/internal/canonical"
)

// Snapshot renders a scenario's trace as canonical JSON, the golden file
// format.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	trace := make([]map[string]any, len(result.Trace))
	for i, st := range result.Trace {
		queries := make([]map[string]any, len(st.Queries))
		for j, q := range st.Queries {
			queries[j] = map[string]any{
				"name":  q.Name,
				"rows":  q.Rows,
				"error": q.Error,
			}
		}
		trace[i] = map[string]any{
			"student_id":  st.StudentID,
			"fingerprint": st.Fingerprint,
			"counts": map[string]any{
				"students":    st.Counts.Students,
				"courses":     st.Counts.Courses,
				"lecturers":   st.Counts.Lecturers,
				"enrollments": st.Counts.Enrollments,
			},
			"queries": queries,
		}
	}

	return canonical.Marshal(map[string]any{
		"scenario_name": scenario.Name,
		"homework_set":  scenario.HomeworkSet,
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check assertions.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against the golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
