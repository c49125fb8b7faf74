package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
)

// AssignOptions holds flags for the assign command.
type AssignOptions struct {
	*RootOptions
	DB string
}

// AssignResult is the output of the assign command.
type AssignResult struct {
	ID            string            `json:"id"`
	StudentID     string            `json:"student_id"`
	HomeworkSetID string            `json:"homework_set_id"`
	Fingerprint   string            `json:"fingerprint"`
	Counts        dataset.Counts    `json:"counts"`
	Stored        bool              `json:"stored"`
	Created       bool              `json:"created,omitempty"`
	Assignment    assign.Assignment `json:"assignment"`
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assign <student-id> <homework-set-id>",
		Short: "Print a student's slice of the dataset",
		Long: `Print the rows assigned to a student for a homework set.

Without a store the slice is computed. With --db (or db in the config) the
assignment issued earlier is returned, and a new one is issued and stored
only when there is none.

Example:
  dataslice assign student123 hw456 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite assignment store (overrides config db)")

	return cmd
}

func runAssign(ctx context.Context, opts *AssignOptions, studentID, homeworkSetID string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	e, err := loadEnv(opts.RootOptions, f)
	if err != nil {
		return err
	}

	res, err := e.resolveAssignment(ctx, opts.DB, studentID, homeworkSetID, f)
	if err != nil {
		return err
	}

	return f.Result(res, func(w io.Writer) error {
		return writeAssignment(w, res)
	})
}

// resolveAssignment returns the student's assignment, through the store
// when one is configured.
func (e *env) resolveAssignment(ctx context.Context, dbPath, studentID, homeworkSetID string, f *OutputFormatter) (*AssignResult, error) {
	s, err := e.openStore(dbPath, f)
	if err != nil {
		return nil, err
	}

	if s == nil {
		a := e.assigner.Assign(studentID, homeworkSetID)
		fp, err := a.Fingerprint()
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
		}
		return &AssignResult{
			ID:            assign.ID(studentID, homeworkSetID).String(),
			StudentID:     studentID,
			HomeworkSetID: homeworkSetID,
			Fingerprint:   fp,
			Counts:        a.Counts(),
			Assignment:    a,
		}, nil
	}
	defer s.Close()

	rec, created, err := s.GetOrAssign(ctx, e.assigner, studentID, homeworkSetID)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err, nil)
	}
	if created {
		f.VerboseLog("Issued new assignment %s", rec.ID)
	} else {
		f.VerboseLog("Using assignment %s issued earlier (seq %d)", rec.ID, rec.Seq)
	}

	return &AssignResult{
		ID:            rec.ID.String(),
		StudentID:     rec.StudentID,
		HomeworkSetID: rec.HomeworkSetID,
		Fingerprint:   rec.Fingerprint,
		Counts:        rec.Assignment.Counts(),
		Stored:        true,
		Created:       created,
		Assignment:    rec.Assignment,
	}, nil
}

func writeAssignment(w io.Writer, res *AssignResult) error {
	fmt.Fprintf(w, "Assignment %s for %s / %s\n", res.ID, res.StudentID, res.HomeworkSetID)
	fmt.Fprintf(w, "Fingerprint %s\n", res.Fingerprint)
	fmt.Fprintf(w, "Rows: %d students, %d courses, %d lecturers, %d enrollments\n",
		res.Counts.Students, res.Counts.Courses, res.Counts.Lecturers, res.Counts.Enrollments)

	a := res.Assignment
	sections := []struct {
		title  string
		header []string
		rows   [][]any
	}{
		{"Students", []string{"StudentID", "FirstName", "LastName", "BirthDate", "City", "Email"}, rowsOf(a.Students, func(s dataset.Student) []any {
			return []any{s.StudentID, s.FirstName, s.LastName, s.BirthDate, s.City, s.Email}
		})},
		{"Courses", []string{"CourseID", "CourseName", "Credits", "Department"}, rowsOf(a.Courses, func(c dataset.Course) []any {
			return []any{c.CourseID, c.CourseName, c.Credits, c.Department}
		})},
		{"Lecturers", []string{"LecturerID", "FirstName", "LastName", "City", "HireDate", "CourseID", "Seniority"}, rowsOf(a.Lecturers, func(l dataset.Lecturer) []any {
			return []any{l.LecturerID, l.FirstName, l.LastName, l.City, l.HireDate, l.CourseID, l.Seniority}
		})},
		{"Enrollments", []string{"StudentID", "CourseID", "EnrollmentDate", "Grade"}, rowsOf(a.Enrollments, func(e dataset.Enrollment) []any {
			return []any{e.StudentID, e.CourseID, e.EnrollmentDate, e.Grade}
		})},
	}

	for _, s := range sections {
		fmt.Fprintln(w)
		if err := writeTable(w, s.title, s.header, s.rows); err != nil {
			return err
		}
	}
	return nil
}

func rowsOf[T any](records []T, row func(T) []any) [][]any {
	out := make([][]any, len(records))
	for i, r := range records {
		out[i] = row(r)
	}
	return out
}
