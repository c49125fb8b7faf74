package assign

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/dataslice/internal/canonical"
)

// DomainAssignment separates assignment fingerprints from other hashes.
// The version suffix allows the encoding to change later.
const DomainAssignment = "dataslice/assignment/v1"

// Namespace is the UUIDv5 namespace for assignment ids.
var Namespace = uuid.MustParse("0b6f0c2e-52a5-4b4e-9a57-3c6de2f1a0d4")

// ID returns the deterministic UUIDv5 of the (student, homework set) pair.
// The student id is length-prefixed ("<len>:<student><homework set>") so no
// two pairs share a name, whatever bytes the ids contain.
func ID(studentID, homeworkSetID string) uuid.UUID {
	name := strconv.Itoa(len(studentID)) + ":" + studentID + homeworkSetID
	return uuid.NewSHA1(Namespace, []byte(name))
}

// Canonical encodes the assignment as canonical JSON.
func (a Assignment) Canonical() ([]byte, error) {
	data, err := canonical.Marshal(a.canonicalMap())
	if err != nil {
		return nil, fmt.Errorf("canonical assignment: %w", err)
	}
	return data, nil
}

// Fingerprint is the domain-separated SHA-256 of Canonical, hex encoded.
// Two assignments have the same fingerprint iff they hold the same rows in
// the same order.
func (a Assignment) Fingerprint() (string, error) {
	data, err := a.Canonical()
	if err != nil {
		return "", err
	}
	return canonical.Hash(DomainAssignment, data), nil
}

func (a Assignment) canonicalMap() map[string]any {
	students := make([]map[string]any, len(a.Students))
	for i, s := range a.Students {
		students[i] = map[string]any{
			"student_id": s.StudentID,
			"first_name": s.FirstName,
			"last_name":  s.LastName,
			"birth_date": s.BirthDate,
			"city":       s.City,
			"email":      s.Email,
		}
	}
	courses := make([]map[string]any, len(a.Courses))
	for i, c := range a.Courses {
		courses[i] = map[string]any{
			"course_id":   c.CourseID,
			"course_name": c.CourseName,
			"credits":     c.Credits,
			"department":  c.Department,
		}
	}
	lecturers := make([]map[string]any, len(a.Lecturers))
	for i, l := range a.Lecturers {
		lecturers[i] = map[string]any{
			"lecturer_id": l.LecturerID,
			"first_name":  l.FirstName,
			"last_name":   l.LastName,
			"city":        l.City,
			"hire_date":   l.HireDate,
			"course_id":   l.CourseID,
			"seniority":   l.Seniority,
		}
	}
	enrollments := make([]map[string]any, len(a.Enrollments))
	for i, e := range a.Enrollments {
		enrollments[i] = map[string]any{
			"student_id":      e.StudentID,
			"course_id":       e.CourseID,
			"enrollment_date": e.EnrollmentDate,
			"grade":           e.Grade,
		}
	}

	return map[string]any{
		"students":    students,
		"courses":     courses,
		"lecturers":   lecturers,
		"enrollments": enrollments,
	}
}
