package assign

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/seed"
	"github.com/roach88/dataslice/internal/subset"
)

// Table discriminators mixed into every seed key.
const (
	TableStudents  = "students"
	TableCourses   = "courses"
	TableLecturers = "lecturers"
)

// countPrefix separates the key that picks a table's row count from the key
// that picks its rows.
const countPrefix = "count/"

// Config holds the row range for each primary table.
type Config struct {
	Students  subset.Bounds `json:"students" yaml:"students"`
	Courses   subset.Bounds `json:"courses" yaml:"courses"`
	Lecturers subset.Bounds `json:"lecturers" yaml:"lecturers"`
}

// DefaultConfig returns 15-20 rows for every primary table.
func DefaultConfig() Config {
	b := subset.Bounds{Min: 15, Max: 20}
	return Config{Students: b, Courses: b, Lecturers: b}
}

// Validate checks every table's bounds.
func (c Config) Validate() error {
	var errs []error
	for _, tb := range []struct {
		name string
		b    subset.Bounds
	}{
		{TableStudents, c.Students},
		{TableCourses, c.Courses},
		{TableLecturers, c.Lecturers},
	} {
		if err := tb.b.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tb.name, err))
		}
	}
	return errors.Join(errs...)
}

// Assignment is one student's slice of the master dataset.
type Assignment struct {
	Students    []dataset.Student    `json:"students"`
	Courses     []dataset.Course     `json:"courses"`
	Lecturers   []dataset.Lecturer   `json:"lecturers"`
	Enrollments []dataset.Enrollment `json:"enrollments"`
}

// Counts returns the number of rows in each table.
func (a Assignment) Counts() dataset.Counts {
	return a.Dataset().Counts()
}

// Dataset views the assignment as a Dataset, sharing its slices.
func (a Assignment) Dataset() *dataset.Dataset {
	return &dataset.Dataset{
		Students:    a.Students,
		Courses:     a.Courses,
		Lecturers:   a.Lecturers,
		Enrollments: a.Enrollments,
	}
}

// Assigner computes assignments over a fixed dataset.
type Assigner struct {
	data *dataset.Dataset
	cfg  Config
}

// New creates an Assigner. The dataset must not be modified afterwards.
func New(data *dataset.Dataset, cfg Config) (*Assigner, error) {
	if data == nil {
		return nil, errors.New("assign: dataset is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("assign: invalid config: %w", err)
	}
	return &Assigner{data: data, cfg: cfg}, nil
}

var defaultAssigner = sync.OnceValue(func() *Assigner {
	a, err := New(dataset.Master(), DefaultConfig())
	if err != nil {
		panic(err)
	}
	return a
})

// Default returns the Assigner over the embedded master with DefaultConfig.
func Default() *Assigner {
	return defaultAssigner()
}

// Assign is shorthand for Default().Assign.
func Assign(studentID, homeworkSetID string) Assignment {
	return Default().Assign(studentID, homeworkSetID)
}

// Config returns the assigner's configuration.
func (a *Assigner) Config() Config {
	return a.cfg
}

// Dataset returns the dataset assignments are drawn from.
func (a *Assigner) Dataset() *dataset.Dataset {
	return a.data
}

// Assign returns the slice for one (student, homework set) pair.
// Any pair of strings is accepted.
func (a *Assigner) Assign(studentID, homeworkSetID string) Assignment {
	students := pick(a.data.Students, a.cfg.Students, TableStudents, studentID, homeworkSetID)
	courses := pick(a.data.Courses, a.cfg.Courses, TableCourses, studentID, homeworkSetID)
	lecturers := pick(a.data.Lecturers, a.cfg.Lecturers, TableLecturers, studentID, homeworkSetID)

	return Assignment{
		Students:    students,
		Courses:     courses,
		Lecturers:   lecturers,
		Enrollments: filterEnrollments(a.data.Enrollments, students, courses),
	}
}

func pick[T any](rows []T, b subset.Bounds, table, studentID, homeworkSetID string) []T {
	n := b.Resolve(seed.Key(countPrefix+table, studentID, homeworkSetID))
	return subset.Select(rows, n, seed.Key(table, studentID, homeworkSetID))
}

// filterEnrollments keeps, in master order, every enrollment whose student
// and course were both selected.
func filterEnrollments(all []dataset.Enrollment, students []dataset.Student, courses []dataset.Course) []dataset.Enrollment {
	studentIDs := make(map[string]struct{}, len(students))
	for _, s := range students {
		studentIDs[s.StudentID] = struct{}{}
	}
	courseIDs := make(map[int]struct{}, len(courses))
	for _, c := range courses {
		courseIDs[c.CourseID] = struct{}{}
	}

	out := make([]dataset.Enrollment, 0, len(all)/2)
	for _, e := range all {
		if _, ok := studentIDs[e.StudentID]; !ok {
			continue
		}
		if _, ok := courseIDs[e.CourseID]; !ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
