package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dataslice/internal/dataset"
)

// SmallDatasetYAML is a one-row-per-table dataset with one orphan
// enrollment (student s2 does not exist).
const SmallDatasetYAML = `
students:
  - {student_id: "s1", first_name: "Dana", last_name: "Levi", birth_date: "2000-01-01", city: "Haifa", email: "dana@example.com"}
courses:
  - {course_id: 1, course_name: "Databases", credits: 3, department: "Computer Science"}
lecturers:
  - {lecturer_id: "l1", first_name: "Avi", last_name: "Cohen", city: "Haifa", hire_date: "2010-01-01", course_id: 1, seniority: "5"}
enrollments:
  - {student_id: "s1", course_id: 1, enrollment_date: "2023-09-01", grade: 90}
  - {student_id: "s2", course_id: 1, enrollment_date: "2023-09-01", grade: 80}
`

// SmallDataset parses SmallDatasetYAML.
func SmallDataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Parse([]byte(SmallDatasetYAML))
	require.NoError(t, err)
	return d
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
