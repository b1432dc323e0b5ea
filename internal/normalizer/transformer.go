package normalizer

import (
	"database/sql"
	"errors"
	"strings"

	"hrclean/internal/models"
)

// ErrMissingEmpID is returned for rows whose identifier is NULL or blank.
var ErrMissingEmpID = errors.New("emp_id is empty")

// Transformer converts one raw row into an Employee.
type Transformer struct {
	index             map[string]int
	referenceDate     models.Date
	activeSentinel    string
	strictTermination bool
}

// NewTransformer creates a transformer for rows laid out according to index.
func NewTransformer(index map[string]int, opts Options) *Transformer {
	return &Transformer{
		index:             index,
		referenceDate:     opts.ReferenceDate,
		activeSentinel:    opts.ActiveSentinel,
		strictTermination: opts.StrictTermination,
	}
}

// Outcome is what transforming one row produced. Rejection is set when
// the row must be excluded from the output.
type Outcome struct {
	Rejection *Rejection
	Issues    []Issue
	Employee  models.Employee
}

// Transform converts row number n. Bad dates become absent with an issue;
// a missing identifier, and in strict mode a malformed termination,
// reject the row.
func (t *Transformer) Transform(n int, row []sql.NullString) Outcome {
	var out Outcome

	e := &out.Employee
	e.EmpID = t.text(row, models.ColEmpID)

	if strings.TrimSpace(e.EmpID) == "" {
		out.Rejection = &Rejection{
			Err:   ErrMissingEmpID,
			Issue: Issue{Kind: IssueMissingIdentifier, Column: models.ColEmpID, Row: n},
		}

		return out
	}

	e.FirstName = t.text(row, models.ColFirstName)
	e.LastName = t.text(row, models.ColLastName)
	e.Gender = t.text(row, models.ColGender)
	e.Race = t.text(row, models.ColRace)
	e.Department = t.text(row, models.ColDepartment)
	e.JobTitle = t.text(row, models.ColJobTitle)
	e.Location = t.text(row, models.ColLocation)
	e.LocationCity = t.text(row, models.ColLocationCity)
	e.LocationState = t.text(row, models.ColLocationState)

	e.Birthdate = t.date(&out, n, row, models.ColBirthdate)
	e.HireDate = t.date(&out, n, row, models.ColHireDate)

	termCell := t.cell(row, models.ColTermDate)

	term, err := ParseTermination(termCell, t.activeSentinel)
	if err != nil {
		issue := Issue{
			Kind:   IssueMalformedTermination,
			Column: models.ColTermDate,
			Value:  termCell.String,
			EmpID:  e.EmpID,
			Row:    n,
		}

		if t.strictTermination {
			out.Rejection = &Rejection{Err: err, Issue: issue}
			return out
		}

		out.Issues = append(out.Issues, issue)
	}

	if d, terminated := term.Date(); terminated && d.After(t.referenceDate) {
		out.Issues = append(out.Issues, Issue{
			Kind:   IssueFutureTermination,
			Column: models.ColTermDate,
			Value:  d.String(),
			EmpID:  e.EmpID,
			Row:    n,
		})
	}

	e.Termination = term
	e.Age = AgeAt(e.Birthdate, t.referenceDate)

	return out
}

func (t *Transformer) date(out *Outcome, n int, row []sql.NullString, col string) models.NullDate {
	cell := t.cell(row, col)

	d, err := ParseDate(cell)
	if err != nil {
		out.Issues = append(out.Issues, Issue{
			Kind:   IssueUnparseableDate,
			Column: col,
			Value:  cell.String,
			EmpID:  out.Employee.EmpID,
			Row:    n,
		})
	}

	return d
}

func (t *Transformer) cell(row []sql.NullString, col string) sql.NullString {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return sql.NullString{}
	}

	return row[i]
}

// text returns the cell as-is; categorical values pass through unchanged.
func (t *Transformer) text(row []sql.NullString, col string) string {
	return t.cell(row, col).String
}
