package formatter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"hrclean/internal/report"
)

// TextFormatter renders results as bordered console tables.
type TextFormatter struct{}

// Extension implements Formatter.
func (f *TextFormatter) Extension() string { return "txt" }

// Render implements Formatter.
func (f *TextFormatter) Render(w io.Writer, doc *Document) error {
	if _, err := fmt.Fprintf(w, "%s\nreference date: %s, employees: %d\n", doc.Title, doc.ReferenceDate, doc.Rows); err != nil {
		return err
	}

	for _, res := range doc.Results {
		if _, err := fmt.Fprintf(w, "\n%d. %s [%s]\n", res.Number, res.Title, res.Cohort); err != nil {
			return err
		}

		if res.Failed() {
			if _, err := fmt.Fprintf(w, "error: %v\n", res.Err); err != nil {
				return err
			}

			continue
		}

		if err := f.renderTable(w, res); err != nil {
			return err
		}
	}

	return nil
}

// renderTable writes a single result table.
func (f *TextFormatter) renderTable(w io.Writer, res *report.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)

	align := make([]int, len(res.Columns))
	for i, numeric := range numericColumns(res) {
		align[i] = tablewriter.ALIGN_LEFT
		if numeric {
			align[i] = tablewriter.ALIGN_RIGHT
		}
	}

	table.SetColumnAlignment(align)

	for _, row := range res.Rows {
		table.Append(cells(row, NullCell))
	}

	table.Render()

	return nil
}
