package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterCounts(t *testing.T) {
	m := Master()
	assert.Equal(t, Counts{Students: 42, Courses: 22, Lecturers: 21, Enrollments: 137}, m.Counts())
}

func TestMasterIsValid(t *testing.T) {
	m := Master()
	require.NoError(t, Validate(m))
	assert.Empty(t, Orphans(m))
}

func TestMasterIsSingleton(t *testing.T) {
	assert.Same(t, Master(), Master())
}

func TestMasterFirstRows(t *testing.T) {
	m := Master()
	assert.Equal(t, Student{
		StudentID: "87369214",
		FirstName: "John",
		LastName:  "Doe",
		BirthDate: "1999-05-15",
		City:      "Tel Aviv",
		Email:     "john.doe@gmail.com",
	}, m.Students[0])
	assert.Equal(t, Course{CourseID: 101, CourseName: "Introduction to CS", Credits: 4, Department: "Computer Science"}, m.Courses[0])
	assert.Equal(t, Lecturer{
		LecturerID: "ABC95716",
		FirstName:  "Alice",
		LastName:   "Johnson",
		City:       "Tel Aviv",
		HireDate:   "2010-08-15",
		CourseID:   101,
		Seniority:  "14",
	}, m.Lecturers[0])
	assert.Equal(t, Enrollment{StudentID: "87369214", CourseID: 101, EnrollmentDate: "2023-09-01", Grade: 92}, m.Enrollments[0])
}

func TestCloneIsIndependent(t *testing.T) {
	c := Master().Clone()
	c.Students[0].FirstName = "Mutated"
	c.Enrollments = c.Enrollments[:1]

	assert.Equal(t, "John", Master().Students[0].FirstName)
	assert.Len(t, Master().Enrollments, 137)
}

const smallDataset = `
students:
  - {student_id: "s1", first_name: "Ada", last_name: "L", birth_date: "2000-01-02", city: "Haifa", email: "ada@example.com"}
courses:
  - {course_id: 1, course_name: "SQL", credits: 3, department: "CS"}
lecturers:
  - {lecturer_id: "l1", first_name: "Bob", last_name: "K", city: "Haifa", hire_date: "2010-05-06", course_id: 1, seniority: "D"}
enrollments:
  - {student_id: "s1", course_id: 1, enrollment_date: "2024-01-01", grade: 88}
  - {student_id: "ghost", course_id: 1, enrollment_date: "2024-01-01", grade: 70}
`

func TestParseValid(t *testing.T) {
	ds, err := Parse([]byte(smallDataset))
	require.NoError(t, err)
	assert.Equal(t, Counts{Students: 1, Courses: 1, Lecturers: 1, Enrollments: 2}, ds.Counts())
}

func TestOrphans(t *testing.T) {
	ds, err := Parse([]byte(smallDataset))
	require.NoError(t, err)

	orphans := Orphans(ds)
	require.Len(t, orphans, 1)
	assert.Equal(t, 1, orphans[0].Row)
	assert.True(t, orphans[0].MissingStudent)
	assert.False(t, orphans[0].MissingCourse)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`
students:
  - {student_id: "s1", nickname: "x"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nickname")
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseRejectsStringifiedNumber(t *testing.T) {
	_, err := Parse([]byte(`
courses:
  - {course_id: "abc", course_name: "SQL", credits: 3, department: "CS"}
`))
	require.Error(t, err)
}

func TestValidateFieldErrors(t *testing.T) {
	ds := &Dataset{
		Students: []Student{
			{StudentID: "", FirstName: "A", LastName: "B", BirthDate: "15/05/1999", City: "X", Email: "not-an-email"},
		},
		Enrollments: []Enrollment{
			{StudentID: "s1", CourseID: 1, EnrollmentDate: "2024-01-01", Grade: 101},
		},
	}

	err := Validate(ds)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	byField := make(map[string]ValidationError)
	for _, ve := range verrs {
		assert.Equal(t, ErrFieldInvalid, ve.Code)
		byField[ve.Field] = ve
	}
	assert.Contains(t, byField, "students[0].student_id")
	assert.Contains(t, byField, "students[0].birth_date")
	assert.Contains(t, byField, "students[0].email")
	assert.Contains(t, byField, "enrollments[0].grade")
	assert.Equal(t, "must be at most 100", byField["enrollments[0].grade"].Message)
}

func TestValidateRequiresNFC(t *testing.T) {
	ds := Master().Clone()
	ds.Students[0].FirstName = "Jos\u00e9" // composed
	require.NoError(t, Validate(ds))

	ds.Students[0].FirstName = "Jose\u0301" // e + combining acute
	ds.Lecturers[0].Seniority = "\u212b"    // angstrom sign, NFC is U+00C5

	err := Validate(ds)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "students[0].first_name", verrs[0].Field)
	assert.Equal(t, ErrFieldInvalid, verrs[0].Code)
	assert.Contains(t, verrs[0].Message, "is not NFC-normalized")
	assert.Equal(t, "lecturers[0].seniority", verrs[1].Field)
}

func TestValidateDuplicateKeys(t *testing.T) {
	ds := Master().Clone()
	ds.Courses = append(ds.Courses, ds.Courses[3])
	ds.Lecturers = append(ds.Lecturers, ds.Lecturers[0])

	err := Validate(ds)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, ErrDuplicateKey, verrs[0].Code)
	assert.Equal(t, "courses[22].course_id", verrs[0].Field)
	assert.Equal(t, "duplicate key 104 (first seen at row 3)", verrs[0].Message)
	assert.Equal(t, "lecturers[21].lecturer_id", verrs[1].Field)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidateEmptyDataset(t *testing.T) {
	assert.NoError(t, Validate(&Dataset{}))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallDataset), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Students, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dataset")
}
