package dataset

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Validation error codes (E200-E299)
const (
	ErrFieldInvalid = "E201" // a field failed its constraint
	ErrDuplicateKey = "E202" // primary key appears twice in a table
	ErrUnsupported  = "E203" // validator could not process the value
)

// ValidationError describes one problem found in a dataset.
// Field is a path such as "students[3].email".
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "no validation errors"
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  %s", len(e), strings.Join(msgs, "\n  "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml names so paths match the fixture file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// nfc: valid UTF-8 in Normalization Form C, so equal-looking text is equal
	// bytes before it reaches seeds and fingerprints.
	if err := v.RegisterValidation("nfc", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.ValidString(s) && norm.NFC.IsNormalString(s)
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks field constraints and primary-key uniqueness.
// It returns nil or a ValidationErrors listing every problem.
func Validate(ds *Dataset) error {
	var errs ValidationErrors

	if err := validate.Struct(ds); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidationErrors{{Field: "dataset", Message: err.Error(), Code: ErrUnsupported}}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Message: describe(fe),
				Code:    ErrFieldInvalid,
			})
		}
	}

	errs = append(errs, duplicates("students", "student_id", ds.Students, func(s Student) string { return s.StudentID })...)
	errs = append(errs, duplicates("courses", "course_id", ds.Courses, func(c Course) int { return c.CourseID })...)
	errs = append(errs, duplicates("lecturers", "lecturer_id", ds.Lecturers, func(l Lecturer) string { return l.LecturerID })...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func duplicates[T any, K comparable](table, field string, rows []T, key func(T) K) []ValidationError {
	var errs []ValidationError
	first := make(map[K]int, len(rows))
	for i, r := range rows {
		k := key(r)
		if j, ok := first[k]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d].%s", table, i, field),
				Message: fmt.Sprintf("duplicate key %v (first seen at row %d)", k, j),
				Code:    ErrDuplicateKey,
			})
			continue
		}
		first[k] = i
	}
	return errs
}

// fieldPath strips the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return fmt.Sprintf("%q is not a valid email address", fe.Value())
	case "datetime":
		return fmt.Sprintf("%q does not match date layout %s", fe.Value(), fe.Param())
	case "nfc":
		return fmt.Sprintf("%q is not NFC-normalized UTF-8", fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// Orphan is an enrollment whose foreign keys do not resolve in the dataset.
type Orphan struct {
	Row            int        `json:"row"`
	Enrollment     Enrollment `json:"enrollment"`
	MissingStudent bool       `json:"missing_student"`
	MissingCourse  bool       `json:"missing_course"`
}

// Orphans lists dangling enrollments in row order.
func Orphans(ds *Dataset) []Orphan {
	students := make(map[string]struct{}, len(ds.Students))
	for _, s := range ds.Students {
		students[s.StudentID] = struct{}{}
	}
	courses := make(map[int]struct{}, len(ds.Courses))
	for _, c := range ds.Courses {
		courses[c.CourseID] = struct{}{}
	}

	var out []Orphan
	for i, e := range ds.Enrollments {
		_, hasStudent := students[e.StudentID]
		_, hasCourse := courses[e.CourseID]
		if hasStudent && hasCourse {
			continue
		}
		out = append(out, Orphan{
			Row:            i,
			Enrollment:     e,
			MissingStudent: !hasStudent,
			MissingCourse:  !hasCourse,
		})
	}
	return out
}
