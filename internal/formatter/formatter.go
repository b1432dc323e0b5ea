// Package formatter renders report results as console text, markdown, JSON or CSV.
package formatter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"hrclean/internal/config"
	"hrclean/internal/report"
)

// ErrUnknownFormat is returned for an output format with no formatter.
var ErrUnknownFormat = errors.New("unknown output format")

// Document is everything a formatter renders for one run.
type Document struct {
	Generated     time.Time
	RunID         string
	Title         string
	ReferenceDate string
	Results       []*report.Result
	Rows          int
}

// Formatter renders a document.
type Formatter interface {
	Render(w io.Writer, doc *Document) error
	Extension() string
}

// ResultFormatter is implemented by formatters that write one file per query
// when rendering to a directory.
type ResultFormatter interface {
	RenderResult(w io.Writer, res *report.Result) error
}

// New returns the formatter for format. sign only affects markdown.
func New(format string, sign bool) (Formatter, error) {
	switch format {
	case config.FormatText:
		return &TextFormatter{}, nil
	case config.FormatMarkdown:
		return &MarkdownFormatter{Sign: sign}, nil
	case config.FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	case config.FormatCSV:
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteDir renders doc into dir and returns the files written. Formatters
// implementing ResultFormatter get one file per query, named
// <number>_<name>.<ext>; the others write a single report.<ext>.
func WriteDir(dir string, doc *Document, f Formatter) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if rf, ok := f.(ResultFormatter); ok {
		var written []string

		for _, res := range doc.Results {
			if res.Failed() {
				continue
			}

			path := filepath.Join(dir, fmt.Sprintf("%02d_%s.%s", res.Number, res.Name, f.Extension()))
			if err := writeFile(path, func(w io.Writer) error { return rf.RenderResult(w, res) }); err != nil {
				return written, err
			}

			written = append(written, path)
		}

		return written, nil
	}

	path := filepath.Join(dir, "report."+f.Extension())
	if err := writeFile(path, func(w io.Writer) error { return f.Render(w, doc) }); err != nil {
		return nil, err
	}

	return []string{path}, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := render(file); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	return nil
}

// NullCell is how text, markdown and CSV reports render an undefined value.
const NullCell = "NULL"

func cells(row []report.Value, null string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = v.Text(null)
	}

	return out
}

// numericColumns reports, per column, whether every defined cell is a number.
func numericColumns(res *report.Result) []bool {
	numeric := make([]bool, len(res.Columns))
	for i := range numeric {
		numeric[i] = len(res.Rows) > 0
	}

	for _, row := range res.Rows {
		for i, v := range row {
			if i < len(numeric) && !v.IsNull() && !v.Numeric() {
				numeric[i] = false
			}
		}
	}

	return numeric
}
