package formatter

import (
	"encoding/json"
	"io"
	"time"

	"hrclean/internal/report"
)

// JSONFormatter renders the document as a single JSON object.
type JSONFormatter struct {
	Indent string
}

type jsonDocument struct {
	Generated     time.Time    `json:"generated"`
	RunID         string       `json:"runId"`
	Title         string       `json:"title"`
	ReferenceDate string       `json:"referenceDate"`
	Results       []jsonResult `json:"results"`
	Employees     int          `json:"employees"`
}

type jsonResult struct {
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	Cohort     string           `json:"cohort"`
	Error      string           `json:"error,omitempty"`
	Columns    []string         `json:"columns"`
	Rows       [][]report.Value `json:"rows"`
	Number     int              `json:"number"`
	DurationMS float64          `json:"durationMs"`
}

// Extension implements Formatter.
func (f *JSONFormatter) Extension() string { return "json" }

// Render implements Formatter.
func (f *JSONFormatter) Render(w io.Writer, doc *Document) error {
	out := jsonDocument{
		Generated:     doc.Generated.UTC(),
		RunID:         doc.RunID,
		Title:         doc.Title,
		ReferenceDate: doc.ReferenceDate,
		Employees:     doc.Rows,
		Results:       make([]jsonResult, 0, len(doc.Results)),
	}

	for _, res := range doc.Results {
		jr := jsonResult{
			Number:     res.Number,
			Name:       res.Name,
			Title:      res.Title,
			Cohort:     string(res.Cohort),
			Columns:    res.Columns,
			Rows:       res.Rows,
			DurationMS: float64(res.Duration.Microseconds()) / 1000,
		}

		if jr.Rows == nil {
			jr.Rows = [][]report.Value{}
		}

		if res.Err != nil {
			jr.Error = res.Err.Error()
		}

		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)

	return enc.Encode(out)
}
