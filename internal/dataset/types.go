package dataset

// Student is a row of the Students table.
type Student struct {
	StudentID string `json:"student_id" yaml:"student_id" validate:"required,nfc"`
	FirstName string `json:"first_name" yaml:"first_name" validate:"required,nfc"`
	LastName  string `json:"last_name" yaml:"last_name" validate:"required,nfc"`
	BirthDate string `json:"birth_date" yaml:"birth_date" validate:"required,datetime=2006-01-02"`
	City      string `json:"city" yaml:"city" validate:"required,nfc"`
	Email     string `json:"email" yaml:"email" validate:"required,nfc,email"`
}

// Course is a row of the Courses table.
type Course struct {
	CourseID   int    `json:"course_id" yaml:"course_id" validate:"gt=0"`
	CourseName string `json:"course_name" yaml:"course_name" validate:"required,nfc"`
	Credits    int    `json:"credits" yaml:"credits" validate:"gte=0"`
	Department string `json:"department" yaml:"department" validate:"required,nfc"`
}

// Lecturer is a row of the Lecturers table.
// Seniority is free text in the source data ("14", "D").
type Lecturer struct {
	LecturerID string `json:"lecturer_id" yaml:"lecturer_id" validate:"required,nfc"`
	FirstName  string `json:"first_name" yaml:"first_name" validate:"required,nfc"`
	LastName   string `json:"last_name" yaml:"last_name" validate:"required,nfc"`
	City       string `json:"city" yaml:"city" validate:"required,nfc"`
	HireDate   string `json:"hire_date" yaml:"hire_date" validate:"required,datetime=2006-01-02"`
	CourseID   int    `json:"course_id" yaml:"course_id" validate:"gt=0"`
	Seniority  string `json:"seniority" yaml:"seniority" validate:"omitempty,nfc"`
}

// Enrollment links a student to a course.
// The natural key is (StudentID, CourseID); it is not enforced to be unique.
type Enrollment struct {
	StudentID      string `json:"student_id" yaml:"student_id" validate:"required,nfc"`
	CourseID       int    `json:"course_id" yaml:"course_id" validate:"gt=0"`
	EnrollmentDate string `json:"enrollment_date" yaml:"enrollment_date" validate:"required,datetime=2006-01-02"`
	Grade          int    `json:"grade" yaml:"grade" validate:"gte=0,lte=100"`
}

// Dataset holds the four tables.
type Dataset struct {
	Students    []Student    `json:"students" yaml:"students" validate:"dive"`
	Courses     []Course     `json:"courses" yaml:"courses" validate:"dive"`
	Lecturers   []Lecturer   `json:"lecturers" yaml:"lecturers" validate:"dive"`
	Enrollments []Enrollment `json:"enrollments" yaml:"enrollments" validate:"dive"`
}

// Counts holds per-table row counts.
type Counts struct {
	Students    int `json:"students"`
	Courses     int `json:"courses"`
	Lecturers   int `json:"lecturers"`
	Enrollments int `json:"enrollments"`
}

// Counts returns the number of rows in each table.
func (d *Dataset) Counts() Counts {
	return Counts{
		Students:    len(d.Students),
		Courses:     len(d.Courses),
		Lecturers:   len(d.Lecturers),
		Enrollments: len(d.Enrollments),
	}
}

// Clone returns a deep copy. Records hold only value fields, so copying the
// slices is enough.
func (d *Dataset) Clone() *Dataset {
	return &Dataset{
		Students:    append([]Student{}, d.Students...),
		Courses:     append([]Course{}, d.Courses...),
		Lecturers:   append([]Lecturer{}, d.Lecturers...),
		Enrollments: append([]Enrollment{}, d.Enrollments...),
	}
}
