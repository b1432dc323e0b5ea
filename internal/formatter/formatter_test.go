package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrclean/internal/report"
	"hrclean/pkg/metadata"
)

func testDocument() *Document {
	return &Document{
		Generated:     time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC),
		RunID:         "run-1",
		Title:         "HR report",
		ReferenceDate: "2024-06-15",
		Rows:          42,
		Results: []*report.Result{
			{
				Number:  3,
				Name:    "gender_breakdown",
				Title:   "Gender breakdown",
				Cohort:  report.CohortActiveAdult,
				Columns: []string{"gender", "count"},
				Rows: [][]report.Value{
					{report.String("Female"), report.Int(12)},
					{report.String("Non-Conforming"), report.Int(3)},
				},
			},
			{
				Number:  12,
				Name:    "department_turnover",
				Title:   "Turnover rate by department",
				Cohort:  report.CohortAdult,
				Columns: []string{"department", "termination_rate"},
				Rows: [][]report.Value{
					{report.String("Sales"), report.Decimal(decimal.RequireFromString("0.3"))},
					{report.String("Legal"), report.Null},
				},
			},
			{
				Number:  9,
				Name:    "avg_tenure_terminated",
				Title:   "Average tenure",
				Cohort:  report.CohortTerminated,
				Columns: []string{"avg_tenure_years"},
				Err:     errors.New("boom"),
			},
		},
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"text", "markdown", "json", "csv"} {
		f, err := New(format, false)
		require.NoError(t, err, format)
		assert.NotEmpty(t, f.Extension())
	}

	_, err := New("xml", false)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTextFormatter_Render(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, (&TextFormatter{}).Render(&buf, testDocument()))

	out := buf.String()
	assert.Contains(t, out, "3. Gender breakdown [active_adult]")
	assert.Contains(t, out, "Non-Conforming")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "error: boom")
	assert.Contains(t, out, "termination_rate")
}

func TestMarkdownFormatter_Render(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, (&MarkdownFormatter{Sign: true}).Render(&buf, testDocument()))

	out := buf.String()
	assert.Contains(t, out, "## 3. Gender breakdown")
	assert.Contains(t, out, "| gender         | count |")
	assert.Contains(t, out, "| -------------- | ----: |")
	assert.Contains(t, out, "| Non-Conforming |     3 |")
	assert.Contains(t, out, "| Legal      |             NULL |")
	assert.Contains(t, out, "> query failed: boom")

	meta, err := metadata.Verify(out)
	require.NoError(t, err)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, 42, meta.Rows)
}

func TestFormatMarkdown_ResignsSignedReport(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, (&MarkdownFormatter{Sign: true}).Render(&buf, testDocument()))

	messy := strings.Replace(buf.String(), "| Non-Conforming |     3 |", "| Non-Conforming | 3 |", 1)

	_, err := metadata.Verify(messy)
	require.ErrorIs(t, err, metadata.ErrHashMismatch)

	formatted, err := FormatMarkdown(messy)
	require.NoError(t, err)

	meta, err := metadata.Verify(formatted)
	require.NoError(t, err)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Contains(t, formatted, "| Non-Conforming |     3 |")
}

func TestJSONFormatter_Render(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, (&JSONFormatter{}).Render(&buf, testDocument()))

	var decoded struct {
		RunID   string `json:"runId"`
		Results []struct {
			Name  string              `json:"name"`
			Error string              `json:"error"`
			Rows  [][]json.RawMessage `json:"rows"`
		} `json:"results"`
		Employees int `json:"employees"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 42, decoded.Employees)
	require.Len(t, decoded.Results, 3)

	assert.Equal(t, `12`, string(decoded.Results[0].Rows[0][1]))
	assert.Equal(t, `0.3`, string(decoded.Results[1].Rows[0][1]))
	assert.Equal(t, `null`, string(decoded.Results[1].Rows[1][1]))
	assert.Equal(t, "boom", decoded.Results[2].Error)
	assert.Empty(t, decoded.Results[2].Rows)
}

func TestCSVFormatter_Render(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, (&CSVFormatter{}).Render(&buf, testDocument()))

	want := "# 3 gender_breakdown\n" +
		"gender,count\nFemale,12\nNon-Conforming,3\n" +
		"\n# 12 department_turnover\n" +
		"department,termination_rate\nSales,0.3\nLegal,NULL\n"

	assert.Equal(t, want, buf.String())
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteDir(filepath.Join(dir, "csv"), testDocument(), &CSVFormatter{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "csv", "03_gender_breakdown.csv"),
		filepath.Join(dir, "csv", "12_department_turnover.csv"),
	}, written)

	data, err := os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Equal(t, "department,termination_rate\nSales,0.3\nLegal,NULL\n", string(data))

	written, err = WriteDir(dir, testDocument(), &MarkdownFormatter{Sign: true})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "report.md")}, written)

	data, err = os.ReadFile(written[0])
	require.NoError(t, err)

	_, err = metadata.Verify(string(data))
	require.NoError(t, err)
}
