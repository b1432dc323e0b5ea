package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"hrclean/internal/report"
	"hrclean/pkg/metadata"
)

// MarkdownFormatter renders results as a markdown document with aligned tables.
// When Sign is set a metadata block with the content hash is appended.
type MarkdownFormatter struct {
	Sign bool
}

// Extension implements Formatter.
func (f *MarkdownFormatter) Extension() string { return "md" }

// Render implements Formatter.
func (f *MarkdownFormatter) Render(w io.Writer, doc *Document) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	fmt.Fprintf(&sb, "Reference date: %s. Employees: %d.\n", doc.ReferenceDate, doc.Rows)

	for _, res := range doc.Results {
		fmt.Fprintf(&sb, "\n## %d. %s\n\n", res.Number, res.Title)
		fmt.Fprintf(&sb, "Cohort: `%s`\n\n", res.Cohort)

		if res.Failed() {
			fmt.Fprintf(&sb, "> query failed: %s\n", escapeCell(res.Err.Error()))
			continue
		}

		writeTable(&sb, res)
	}

	content := AlignTables(sb.String())

	if f.Sign {
		content = metadata.Sign(content, metadata.Metadata{
			Generated:     doc.Generated,
			RunID:         doc.RunID,
			ReferenceDate: doc.ReferenceDate,
			Rows:          doc.Rows,
		})
	}

	_, err := io.WriteString(w, content)

	return err
}

func writeTable(sb *strings.Builder, res *report.Result) {
	header := make([]string, len(res.Columns))
	separator := make([]string, len(res.Columns))

	for i, c := range res.Columns {
		header[i] = escapeCell(c)
		separator[i] = "---"
	}

	for i, numeric := range numericColumns(res) {
		if numeric {
			separator[i] = "---:"
		}
	}

	writeRow(sb, header)
	writeRow(sb, separator)

	for _, row := range res.Rows {
		values := cells(row, NullCell)
		for i := range values {
			values[i] = escapeCell(values[i])
		}

		writeRow(sb, values)
	}
}

func writeRow(sb *strings.Builder, values []string) {
	sb.WriteString("| ")
	sb.WriteString(strings.Join(values, " | "))
	sb.WriteString(" |\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// FormatMarkdown realigns every table in a markdown document. If the
// document carries a metadata block it is re-signed with the same run details.
func FormatMarkdown(content string) (string, error) {
	meta, cleanContent := metadata.Extract(content)
	if meta == nil {
		return AlignTables(content), nil
	}

	return metadata.Sign(AlignTables(cleanContent), *meta), nil
}

// AlignTables pads the cells of every markdown table to equal display width.
func AlignTables(content string) string {
	lines := strings.Split(content, "\n")

	var formattedLines []string

	var tableBuffer []string

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		// Simple heuristic: a table row starts and ends with |
		if len(trimmedLine) > 1 && strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	return strings.Join(formattedLines, "\n")
}

type alignment int

const (
	alignNone alignment = iota
	alignLeft
	alignRight
	alignCenter
)

func parseAlignment(cell string) (alignment, bool) {
	trim := strings.ReplaceAll(strings.TrimSpace(cell), " ", "")
	if strings.Trim(trim, ":-") != "" || !strings.Contains(trim, "-") {
		return alignNone, false
	}

	left := strings.HasPrefix(trim, ":")
	right := strings.HasSuffix(trim, ":")

	switch {
	case left && right:
		return alignCenter, true
	case right:
		return alignRight, true
	case left:
		return alignLeft, true
	default:
		return alignNone, true
	}
}

// SplitRow splits a table row on unescaped pipes.
func SplitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")

	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = row[:len(row)-1]
	}

	var (
		out []string
		sb  strings.Builder
	)

	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			sb.WriteString(`\|`)
			i++
		case row[i] == '|':
			out = append(out, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(row[i])
		}
	}

	return append(out, strings.TrimSpace(sb.String()))
}

func processTable(rows []string) []string {
	// A single line has no header/separator pair to align against.
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, SplitRow(row))
	}

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// The separator is the second row when every cell is dashes and colons.
	separatorRowIdx := -1
	aligns := make([]alignment, colCount)

	isSep := true

	for i, cell := range table[1] {
		a, ok := parseAlignment(cell)
		if !ok {
			isSep = false
			break
		}

		aligns[i] = a
	}

	if isSep {
		separatorRowIdx = 1
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			content := ""
			if j < len(row) {
				content = row[j]
			}

			if i == separatorRowIdx {
				sb.WriteString(separatorCell(aligns[j], colWidths[j]))
			} else {
				sb.WriteString(pad(content, colWidths[j], aligns[j]))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

func separatorCell(a alignment, width int) string {
	switch a {
	case alignLeft:
		return ":" + strings.Repeat("-", width-1)
	case alignRight:
		return strings.Repeat("-", width-1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}

// pad fills content to width display columns.
func pad(content string, width int, a alignment) string {
	padding := width - runewidth.StringWidth(content)
	if padding <= 0 {
		return content
	}

	switch a {
	case alignRight:
		return strings.Repeat(" ", padding) + content
	case alignCenter:
		left := padding / 2
		return strings.Repeat(" ", left) + content + strings.Repeat(" ", padding-left)
	default:
		return content + strings.Repeat(" ", padding)
	}
}
