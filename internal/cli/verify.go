package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Students    int
	Prefix      string
	Concurrency int
}

// StudentViolation is a violation found in one student's assignment.
type StudentViolation struct {
	StudentID string `json:"student_id"`
	assign.Violation
}

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	HomeworkSetID    string             `json:"homework_set_id"`
	Students         int                `json:"students"`
	Bounds           assign.Config      `json:"bounds"`
	MinCounts        dataset.Counts     `json:"min_counts"`
	MaxCounts        dataset.Counts     `json:"max_counts"`
	Violations       []StudentViolation `json:"violations"`
	Nondeterministic []string           `json:"nondeterministic"`
}

// OK reports whether the sweep found nothing wrong.
func (r *VerifyResult) OK() bool {
	return len(r.Violations) == 0 && len(r.Nondeterministic) == 0
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <homework-set-id>",
		Short: "Check assignment invariants over many students",
		Long: `Assign a homework set to a range of synthetic student ids and check
every assignment: row counts within bounds, rows taken from the dataset,
no duplicates, enrollments consistent with the selected students and
courses. Assignments are computed twice, in opposite orders, and must
have identical fingerprints.

Exits 1 if anything is wrong.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Students, "students", 200, "number of student ids to check")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "student-", "student id prefix; ids are prefix+index")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", runtime.GOMAXPROCS(0), "parallel workers")

	return cmd
}

func runVerify(ctx context.Context, opts *VerifyOptions, homeworkSetID string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.Students < 1 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("--students must be at least 1, got %d", opts.Students), nil)
	}
	if opts.Concurrency < 1 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("--concurrency must be at least 1, got %d", opts.Concurrency), nil)
	}

	e, err := loadEnv(opts.RootOptions, f)
	if err != nil {
		return err
	}

	ids := make([]string, opts.Students)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", opts.Prefix, i)
	}

	res, err := e.sweep(ctx, ids, homeworkSetID, opts.Concurrency, f)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	if !res.OK() {
		msg := fmt.Sprintf("%d violation(s), %d nondeterministic assignment(s)", len(res.Violations), len(res.Nondeterministic))
		if f.Format == "json" {
			if err := f.Error(ErrCodeViolation, msg, res); err != nil {
				return err
			}
		} else if err := writeVerify(f.Writer, res); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	return f.Result(res, func(w io.Writer) error {
		return writeVerify(w, res)
	})
}

// sweep checks every id. The first pass runs in id order and the second in
// reverse; fingerprints from both must agree.
func (e *env) sweep(ctx context.Context, ids []string, homeworkSetID string, workers int, f *OutputFormatter) (*VerifyResult, error) {
	cfg := e.assigner.Config()
	n := len(ids)

	first := make([]string, n)
	counts := make([]dataset.Counts, n)
	found := make([][]assign.Violation, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sid := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := e.assigner.Assign(sid, homeworkSetID)
			fp, err := a.Fingerprint()
			if err != nil {
				return fmt.Errorf("%s: %w", sid, err)
			}
			first[i] = fp
			counts[i] = a.Counts()
			found[i] = assign.Verify(a, e.data, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	f.VerboseLog("First pass: %d assignments", n)

	second := make([]string, n)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := n - 1; i >= 0; i-- {
		sid := ids[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fp, err := e.assigner.Assign(sid, homeworkSetID).Fingerprint()
			if err != nil {
				return fmt.Errorf("%s: %w", sid, err)
			}
			second[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	f.VerboseLog("Second pass: %d assignments", n)

	res := &VerifyResult{
		HomeworkSetID:    homeworkSetID,
		Students:         n,
		Bounds:           cfg,
		MinCounts:        counts[0],
		MaxCounts:        counts[0],
		Violations:       []StudentViolation{},
		Nondeterministic: []string{},
	}
	for i, sid := range ids {
		for _, v := range found[i] {
			res.Violations = append(res.Violations, StudentViolation{StudentID: sid, Violation: v})
		}
		if first[i] != second[i] {
			res.Nondeterministic = append(res.Nondeterministic, sid)
		}
		res.MinCounts = foldCounts(res.MinCounts, counts[i], func(x, y int) int { return min(x, y) })
		res.MaxCounts = foldCounts(res.MaxCounts, counts[i], func(x, y int) int { return max(x, y) })
	}
	return res, nil
}

func foldCounts(a, b dataset.Counts, pick func(x, y int) int) dataset.Counts {
	return dataset.Counts{
		Students:    pick(a.Students, b.Students),
		Courses:     pick(a.Courses, b.Courses),
		Lecturers:   pick(a.Lecturers, b.Lecturers),
		Enrollments: pick(a.Enrollments, b.Enrollments),
	}
}

func writeVerify(w io.Writer, res *VerifyResult) error {
	for _, v := range res.Violations {
		if _, err := fmt.Fprintf(w, "✗ %s: %s\n", v.StudentID, v.Violation); err != nil {
			return err
		}
	}
	for _, sid := range res.Nondeterministic {
		if _, err := fmt.Fprintf(w, "✗ %s: fingerprint changed between passes\n", sid); err != nil {
			return err
		}
	}

	rows := [][]any{
		{"students", res.Bounds.Students, res.MinCounts.Students, res.MaxCounts.Students},
		{"courses", res.Bounds.Courses, res.MinCounts.Courses, res.MaxCounts.Courses},
		{"lecturers", res.Bounds.Lecturers, res.MinCounts.Lecturers, res.MaxCounts.Lecturers},
		{"enrollments", "-", res.MinCounts.Enrollments, res.MaxCounts.Enrollments},
	}
	if err := writeTable(w, "", []string{"Table", "Bounds", "Min", "Max"}, rows); err != nil {
		return err
	}

	if res.OK() {
		_, err := fmt.Fprintf(w, "✓ %d assignments for %s verified\n", res.Students, res.HomeworkSetID)
		return err
	}
	_, err := fmt.Fprintf(w, "✗ %d violation(s), %d nondeterministic assignment(s) in %d assignments\n",
		len(res.Violations), len(res.Nondeterministic), res.Students)
	return err
}
