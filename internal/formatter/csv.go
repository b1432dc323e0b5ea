package formatter

import (
	"encoding/csv"
	"fmt"
	"io"

	"hrclean/internal/report"
)

// CSVFormatter renders each result as a CSV table. Undefined cells are NULL.
type CSVFormatter struct{}

// Extension implements Formatter.
func (f *CSVFormatter) Extension() string { return "csv" }

// Render writes every successful result as its own CSV block, preceded by a
// "# <number> <name>" line and separated by blank lines.
func (f *CSVFormatter) Render(w io.Writer, doc *Document) error {
	first := true

	for _, res := range doc.Results {
		if res.Failed() {
			continue
		}

		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		first = false

		if _, err := fmt.Fprintf(w, "# %d %s\n", res.Number, res.Name); err != nil {
			return err
		}

		if err := f.RenderResult(w, res); err != nil {
			return err
		}
	}

	return nil
}

// RenderResult implements ResultFormatter.
func (f *CSVFormatter) RenderResult(w io.Writer, res *report.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(res.Columns); err != nil {
		return err
	}

	for _, row := range res.Rows {
		if err := cw.Write(cells(row, NullCell)); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
