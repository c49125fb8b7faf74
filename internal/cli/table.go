package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// writeTable prints a titled, column-aligned table.
func writeTable(w io.Writer, title string, header []string, rows [][]any) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", title, len(rows)); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)

	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				fmt.Fprint(tw, "NULL")
				continue
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
