package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dataslice/internal/dataset"
)

// errNoStore is reported when list runs without --db or a configured db.
var errNoStore = errors.New("no assignment store: pass --db or set db in the config")

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	DB string
}

// ListEntry is one issued assignment in list output.
type ListEntry struct {
	StudentID   string         `json:"student_id"`
	ID          string         `json:"id"`
	Seq         int64          `json:"seq"`
	Fingerprint string         `json:"fingerprint"`
	Counts      dataset.Counts `json:"counts"`
}

// ListResult is the output of the list command.
type ListResult struct {
	HomeworkSetID string      `json:"homework_set_id"`
	Assignments   []ListEntry `json:"assignments"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <homework-set-id>",
		Short: "List the assignments issued for a homework set",
		Long: `List every assignment the store has issued for a homework set, ordered
by student id. Requires --db or db in the config.

Example:
  dataslice list hw456 --db assignments.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite assignment store (overrides config db)")

	return cmd
}

func runList(ctx context.Context, opts *ListOptions, homeworkSetID string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	e, err := loadEnv(opts.RootOptions, f)
	if err != nil {
		return err
	}

	s, err := e.openStore(opts.DB, f)
	if err != nil {
		return err
	}
	if s == nil {
		return f.Fail(ExitCommandError, ErrCodeStore, errNoStore, nil)
	}
	defer s.Close()

	recs, err := s.List(ctx, homeworkSetID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err, nil)
	}

	res := &ListResult{HomeworkSetID: homeworkSetID, Assignments: make([]ListEntry, len(recs))}
	for i, r := range recs {
		res.Assignments[i] = ListEntry{
			StudentID:   r.StudentID,
			ID:          r.ID.String(),
			Seq:         r.Seq,
			Fingerprint: r.Fingerprint,
			Counts:      r.Assignment.Counts(),
		}
	}

	return f.Result(res, func(w io.Writer) error {
		return writeTable(w, "Assignments for "+homeworkSetID,
			[]string{"Student", "ID", "Seq", "Fingerprint"},
			rowsOf(res.Assignments, func(a ListEntry) []any {
				return []any{a.StudentID, a.ID, a.Seq, a.Fingerprint}
			}))
	})
}
