package assign

import (
	"fmt"

	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/subset"
)

// Invariant checks reported by Verify.
const (
	CheckCardinality  = "cardinality"
	CheckMembership   = "membership"
	CheckDuplicate    = "duplicate"
	CheckIntegrity    = "integrity"
	CheckCompleteness = "completeness"
)

// Violation is one broken invariant.
type Violation struct {
	Check   string `json:"check"`
	Table   string `json:"table"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s/%s: %s", v.Check, v.Table, v.Message)
}

// Verify checks a against the dataset it was drawn from and the bounds it
// was drawn with. It returns nil when every invariant holds.
func Verify(a Assignment, data *dataset.Dataset, cfg Config) []Violation {
	var out []Violation

	out = append(out, checkTable(TableStudents, a.Students, data.Students, cfg.Students,
		func(s dataset.Student) string { return s.StudentID })...)
	out = append(out, checkTable(TableCourses, a.Courses, data.Courses, cfg.Courses,
		func(c dataset.Course) int { return c.CourseID })...)
	out = append(out, checkTable(TableLecturers, a.Lecturers, data.Lecturers, cfg.Lecturers,
		func(l dataset.Lecturer) string { return l.LecturerID })...)

	studentIDs := make(map[string]struct{}, len(a.Students))
	for _, s := range a.Students {
		studentIDs[s.StudentID] = struct{}{}
	}
	courseIDs := make(map[int]struct{}, len(a.Courses))
	for _, c := range a.Courses {
		courseIDs[c.CourseID] = struct{}{}
	}

	for i, e := range a.Enrollments {
		_, okS := studentIDs[e.StudentID]
		_, okC := courseIDs[e.CourseID]
		if !okS || !okC {
			out = append(out, Violation{
				Check:   CheckIntegrity,
				Table:   "enrollments",
				Message: fmt.Sprintf("row %d (%s, %d) references an unselected student or course", i, e.StudentID, e.CourseID),
			})
		}
	}

	want := filterEnrollments(data.Enrollments, a.Students, a.Courses)
	got := make(map[dataset.Enrollment]int, len(a.Enrollments))
	for _, e := range a.Enrollments {
		got[e]++
	}
	for _, e := range want {
		if got[e] == 0 {
			out = append(out, Violation{
				Check:   CheckCompleteness,
				Table:   "enrollments",
				Message: fmt.Sprintf("eligible enrollment (%s, %d) is missing", e.StudentID, e.CourseID),
			})
			continue
		}
		got[e]--
	}
	// Rows left over are either not in the dataset or repeated.
	for _, e := range a.Enrollments {
		if n := got[e]; n > 0 {
			out = append(out, Violation{
				Check:   CheckMembership,
				Table:   "enrollments",
				Message: fmt.Sprintf("enrollment (%s, %d) appears %d more time(s) than in the dataset", e.StudentID, e.CourseID, n),
			})
			got[e] = 0
		}
	}

	return out
}

func checkTable[T comparable, K comparable](table string, got, master []T, b subset.Bounds, key func(T) K) []Violation {
	var out []Violation

	lo, hi := min(b.Min, len(master)), min(b.Max, len(master))
	if n := len(got); n < lo || n > hi {
		out = append(out, Violation{
			Check:   CheckCardinality,
			Table:   table,
			Message: fmt.Sprintf("%d rows, want %d-%d", n, lo, hi),
		})
	}

	byKey := make(map[K]T, len(master))
	for _, r := range master {
		byKey[key(r)] = r
	}

	seen := make(map[K]bool, len(got))
	for _, r := range got {
		k := key(r)
		if seen[k] {
			out = append(out, Violation{
				Check:   CheckDuplicate,
				Table:   table,
				Message: fmt.Sprintf("key %v selected twice", k),
			})
		}
		seen[k] = true

		if m, ok := byKey[k]; !ok || m != r {
			out = append(out, Violation{
				Check:   CheckMembership,
				Table:   table,
				Message: fmt.Sprintf("row %v is not in the dataset", k),
			})
		}
	}

	return out
}
