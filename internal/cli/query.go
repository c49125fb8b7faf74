package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/sandbox"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DB      string
	Master  bool
	MaxRows int
}

// QueryResult is the output of the query command.
type QueryResult struct {
	StudentID     string `json:"student_id,omitempty"`
	HomeworkSetID string `json:"homework_set_id,omitempty"`
	Master        bool   `json:"master,omitempty"`
	*sandbox.Result
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [<student-id> <homework-set-id>] <sql>",
		Short: "Run SQL against a student's slice",
		Long: `Run one read-only SQL statement against the tables assigned to a
student, or against the whole dataset with --master.

Tables: Students, Courses, Lecturers, Enrollments.

Example:
  dataslice query student123 hw456 "SELECT City, COUNT(*) FROM Students GROUP BY City"
  dataslice query --master "SELECT COUNT(*) FROM Enrollments"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Master {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite assignment store (overrides config db)")
	cmd.Flags().BoolVar(&opts.Master, "master", false, "query the whole dataset instead of a slice")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", sandbox.DefaultMaxRows, "row cap (0 for none)")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	e, err := loadEnv(opts.RootOptions, f)
	if err != nil {
		return err
	}

	out := &QueryResult{Master: opts.Master}
	var data *dataset.Dataset
	query := args[len(args)-1]

	if opts.Master {
		data = e.data
	} else {
		out.StudentID, out.HomeworkSetID = args[0], args[1]
		res, err := e.resolveAssignment(ctx, opts.DB, out.StudentID, out.HomeworkSetID, f)
		if err != nil {
			return err
		}
		data = res.Assignment.Dataset()
	}

	sb, err := sandbox.Open(ctx, data)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}
	defer sb.Close()
	sb.SetMaxRows(opts.MaxRows)

	f.VerboseLog("Running query: %s", query)
	out.Result, err = sb.Query(ctx, query)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeQuery, err, nil)
	}

	return f.Result(out, func(w io.Writer) error {
		if err := writeTable(w, "", out.Columns, out.Rows); err != nil {
			return err
		}
		fmt.Fprintf(w, "(%d rows)\n", len(out.Rows))
		if out.Truncated {
			fmt.Fprintf(w, "(truncated at %d rows)\n", opts.MaxRows)
		}
		return nil
	})
}
