package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dataslice/internal/dataset"
)

func checks(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Check + "/" + v.Table
	}
	return out
}

func TestVerifyDetectsCardinality(t *testing.T) {
	a := Assign("student123", "hw456")
	a.Students = a.Students[:3]
	a.Enrollments = filterEnrollments(dataset.Master().Enrollments, a.Students, a.Courses)

	vs := Verify(a, dataset.Master(), DefaultConfig())
	require.Len(t, vs, 1)
	assert.Equal(t, CheckCardinality, vs[0].Check)
	assert.Equal(t, "3 rows, want 15-20", vs[0].Message)
}

func TestVerifyDetectsDuplicateAndForeignRows(t *testing.T) {
	a := Assign("student123", "hw456")
	a.Courses[1] = a.Courses[0]
	a.Lecturers[0].City = "Atlantis"
	a.Enrollments = filterEnrollments(dataset.Master().Enrollments, a.Students, a.Courses)

	got := checks(Verify(a, dataset.Master(), DefaultConfig()))
	assert.Contains(t, got, "duplicate/courses")
	assert.Contains(t, got, "membership/lecturers")
}

func TestVerifyDetectsBrokenIntegrity(t *testing.T) {
	a := Assign("student123", "hw456")
	a.Enrollments = append(a.Enrollments, dataset.Enrollment{StudentID: "stranger", CourseID: 101, EnrollmentDate: "2024-01-01", Grade: 1})

	got := checks(Verify(a, dataset.Master(), DefaultConfig()))
	assert.Equal(t, []string{"integrity/enrollments", "membership/enrollments"}, got)
}

func TestVerifyDetectsMissingEnrollment(t *testing.T) {
	a := Assign("student123", "hw456")
	a.Enrollments = a.Enrollments[1:]

	vs := Verify(a, dataset.Master(), DefaultConfig())
	require.Len(t, vs, 1)
	assert.Equal(t, CheckCompleteness, vs[0].Check)
}

func TestVerifyDetectsRepeatedEnrollment(t *testing.T) {
	a := Assign("student123", "hw456")
	a.Enrollments = append(a.Enrollments, a.Enrollments[0])

	vs := Verify(a, dataset.Master(), DefaultConfig())
	require.Len(t, vs, 1)
	assert.Equal(t, CheckMembership, vs[0].Check)
	assert.Contains(t, vs[0].String(), "appears 1 more time(s)")
}
