// Package validator checks the structure of rendered markdown reports.
package validator

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"hrclean/internal/formatter"
	"hrclean/pkg/metadata"
)

var (
	sectionPattern   = regexp.MustCompile(`^##\s+(\d+)\.\s+(.+)$`)
	separatorPattern = regexp.MustCompile(`^:?-+:?$`)
)

const failedPrefix = "> query failed:"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Line    int
	Column  int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	Sections       int
	FailedSections int
	TotalRows      int
	ValidRows      int
	InvalidRows    int
}

// Options controls what a MarkdownValidator requires of a report.
type Options struct {
	// ExpectedSections is the number of query sections; zero accepts any.
	ExpectedSections int
}

// MarkdownValidator validates the layout of a markdown report: numbered
// query sections, each with a well-formed table or a failure note.
type MarkdownValidator struct {
	opts Options
}

// NewMarkdownValidator creates a new validator.
func NewMarkdownValidator(opts Options) *MarkdownValidator {
	return &MarkdownValidator{opts: opts}
}

type section struct {
	number int
	line   int
	table  bool
	failed bool
}

type table struct {
	columns []string
	numeric []bool
	line    int
	rows    int
}

// ValidateMarkdown validates every query section and table in content.
// A trailing metadata block is ignored.
func (v *MarkdownValidator) ValidateMarkdown(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	_, content = metadata.Extract(content)

	var (
		current *section
		tbl     *table
		last    int
	)

	closeSection := func() {
		if current == nil {
			return
		}

		if !current.table && !current.failed {
			result.addError(ValidationError{
				Line:    current.line,
				Message: fmt.Sprintf("section %d has neither a table nor a failure note", current.number),
			})
		}
	}

	for i, raw := range strings.Split(content, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(raw)

		isRow := len(line) > 1 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
		if !isRow {
			tbl = nil
		}

		switch {
		case sectionPattern.MatchString(line):
			closeSection()

			n, _ := strconv.Atoi(sectionPattern.FindStringSubmatch(line)[1])
			if n <= last {
				result.addError(ValidationError{
					Line:    lineNum,
					Field:   "section",
					Value:   strconv.Itoa(n),
					Message: fmt.Sprintf("section %d follows section %d", n, last),
				})
			}

			last = n
			current = &section{number: n, line: lineNum}
			result.Stats.Sections++

		case strings.HasPrefix(line, failedPrefix):
			if current == nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: failure note outside a query section", lineNum))
				continue
			}

			current.failed = true
			result.Stats.FailedSections++
			result.Warnings = append(result.Warnings, fmt.Sprintf("section %d failed:%s", current.number, strings.TrimPrefix(line, failedPrefix)))

		case isRow && tbl == nil:
			if current == nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: table outside a query section", lineNum))
			} else {
				current.table = true
			}

			tbl = &table{columns: formatter.SplitRow(line), line: lineNum}

		case isRow && tbl.numeric == nil:
			numeric, ok := v.parseSeparator(line, len(tbl.columns))
			if !ok {
				result.addError(ValidationError{
					Line:    lineNum,
					Message: fmt.Sprintf("table at line %d has no valid separator row", tbl.line),
				})

				numeric = make([]bool, len(tbl.columns))
			}

			tbl.numeric = numeric

		case isRow:
			tbl.rows++
			result.Stats.TotalRows++

			if errs := v.validateRow(tbl, line, lineNum); len(errs) > 0 {
				result.Stats.InvalidRows++
				for _, err := range errs {
					result.addError(err)
				}
			} else {
				result.Stats.ValidRows++
			}
		}
	}

	closeSection()

	if v.opts.ExpectedSections > 0 && result.Stats.Sections != v.opts.ExpectedSections {
		result.addError(ValidationError{
			Message: fmt.Sprintf("expected %d query sections, got %d", v.opts.ExpectedSections, result.Stats.Sections),
		})
	}

	return result
}

// ValidateIntegrity checks the integrity of the markdown content using the metadata block.
func (v *MarkdownValidator) ValidateIntegrity(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if _, err := metadata.Verify(content); err != nil {
		result.addError(ValidationError{
			Message: fmt.Sprintf("integrity check failed: %v", err),
		})
	}

	return result
}

func (v *MarkdownValidator) parseSeparator(line string, width int) ([]bool, bool) {
	cells := formatter.SplitRow(line)
	if len(cells) != width {
		return nil, false
	}

	numeric := make([]bool, width)

	for i, cell := range cells {
		if !separatorPattern.MatchString(cell) {
			return nil, false
		}

		numeric[i] = strings.HasSuffix(cell, ":") && !strings.HasPrefix(cell, ":")
	}

	return numeric, true
}

// validateRow validates a single table row.
func (v *MarkdownValidator) validateRow(tbl *table, line string, lineNum int) []ValidationError {
	values := formatter.SplitRow(line)

	if len(values) != len(tbl.columns) {
		return []ValidationError{{
			Line:    lineNum,
			Column:  1,
			Message: fmt.Sprintf("expected %d columns, got %d", len(tbl.columns), len(values)),
		}}
	}

	var errs []ValidationError

	for i, value := range values {
		if !tbl.numeric[i] || value == "" || value == formatter.NullCell {
			continue
		}

		if _, err := decimal.NewFromString(value); err != nil {
			errs = append(errs, ValidationError{
				Line:    lineNum,
				Column:  i + 1,
				Field:   tbl.columns[i],
				Value:   truncate(value, 50),
				Message: "numeric column holds a non-numeric value",
			})
		}
	}

	return errs
}

func (r *ValidationResult) addError(err ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, err)
}

// truncate truncates string to max length.
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}

	return s
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Sections: %d | Failed: %d | Rows: %d | Invalid: %d | Warnings: %d",
		status,
		r.Stats.Sections,
		r.Stats.FailedSections,
		r.Stats.TotalRows,
		r.Stats.InvalidRows,
		len(r.Warnings),
	)
}

// WriteErrors prints validation errors in readable format.
func (r *ValidationResult) WriteErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line == 0 {
			fmt.Fprintf(w, "  %s\n", err.Message)
			continue
		}

		fmt.Fprintf(w, "  Line %d, Col %d", err.Line, err.Column)

		if err.Field != "" {
			fmt.Fprintf(w, " [%s]", err.Field)
		}

		fmt.Fprintf(w, ": %s\n", err.Message)

		if err.Value != "" {
			fmt.Fprintf(w, "    Found: %q\n", err.Value)
		}
	}
}

// WriteWarnings prints validation warnings.
func (r *ValidationResult) WriteWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
