package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dataslice/internal/dataset"
)

// DatasetOptions holds flags for the dataset command.
type DatasetOptions struct {
	*RootOptions
	File string
}

// DatasetResult is the output of the dataset command.
type DatasetResult struct {
	Source  string           `json:"source"`
	Counts  dataset.Counts   `json:"counts"`
	Orphans []dataset.Orphan `json:"orphans"`
}

// NewDatasetCommand creates the dataset command.
func NewDatasetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatasetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Validate a dataset and summarize it",
		Long: `Validate a master dataset and print its table sizes.

The dataset is --file if given, else the dataset named in the config, else
the built-in one. Enrollments pointing at missing students or courses are
listed; they are never assigned to anyone.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataset(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML dataset to validate")

	return cmd
}

func runDataset(opts *DatasetOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	path := opts.File
	if path == "" {
		cfg, err := loadConfig(opts.RootOptions, f)
		if err != nil {
			return err
		}
		path = cfg.Dataset
	}

	data, err := loadDataset(path, f)
	if err != nil {
		// A dataset that parses but breaks constraints is a check failure.
		if details := validationDetails(err); details != nil {
			return &ExitError{Code: ExitFailure, Message: ErrCodeDataset, Err: err}
		}
		return err
	}

	res := &DatasetResult{
		Source:  path,
		Counts:  data.Counts(),
		Orphans: dataset.Orphans(data),
	}
	if res.Source == "" {
		res.Source = "built-in"
	}
	if res.Orphans == nil {
		res.Orphans = []dataset.Orphan{}
	}

	return f.Result(res, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Dataset %s is valid\n", res.Source)
		writeTable(w, "", []string{"Table", "Rows"}, [][]any{
			{"Students", res.Counts.Students},
			{"Courses", res.Counts.Courses},
			{"Lecturers", res.Counts.Lecturers},
			{"Enrollments", res.Counts.Enrollments},
		})
		if len(res.Orphans) == 0 {
			return nil
		}

		fmt.Fprintf(w, "\n%d orphan enrollment(s), never assigned:\n", len(res.Orphans))
		for _, o := range res.Orphans {
			var missing string
			switch {
			case o.MissingStudent && o.MissingCourse:
				missing = "student and course"
			case o.MissingStudent:
				missing = "student"
			default:
				missing = "course"
			}
			fmt.Fprintf(w, "  row %d (%s, %d): missing %s\n", o.Row, o.Enrollment.StudentID, o.Enrollment.CourseID, missing)
		}
		return nil
	})
}
