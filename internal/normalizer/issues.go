package normalizer

import (
	"fmt"

	"hrclean/internal/models"
)

// IssueKind classifies a data-quality finding.
type IssueKind string

// Issue kinds reported by the normalizer.
const (
	IssueUnparseableDate      IssueKind = "unparseable_date"
	IssueMalformedTermination IssueKind = "malformed_termination"
	IssueFutureTermination    IssueKind = "future_termination"
	IssueMissingIdentifier    IssueKind = "missing_identifier"
)

// Issue is a single data-quality finding on one cell.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Column string    `json:"column"`
	Value  string    `json:"value"`
	EmpID  string    `json:"empId"`
	Row    int       `json:"row"`
}

// String returns a one-line description of the issue.
func (i Issue) String() string {
	return fmt.Sprintf("row %d (emp_id %q): %s %s=%q", i.Row, i.EmpID, i.Kind, i.Column, i.Value)
}

// Rejection is a row excluded from the normalized output.
type Rejection struct {
	Err   error `json:"-"`
	Issue Issue `json:"issue"`
}

// Error implements error.
func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.Issue, r.Err)
}

// Unwrap returns the underlying cause.
func (r Rejection) Unwrap() error {
	return r.Err
}

// Stats summarizes a normalization run.
type Stats struct {
	Processed       int               `json:"processed"`
	Kept            int               `json:"kept"`
	Rejected        int               `json:"rejected"`
	NullBirthdates  int               `json:"nullBirthdates"`
	NullHireDates   int               `json:"nullHireDates"`
	Active          int               `json:"active"`
	Terminated      int               `json:"terminated"`
	IssuesByKind    map[IssueKind]int `json:"issuesByKind"`
	IdentifierFixed bool              `json:"identifierFixed"`
}

// Result is the output of a normalization run.
type Result struct {
	ReferenceDate models.Date       `json:"referenceDate"`
	Employees     []models.Employee `json:"-"`
	Issues        []Issue           `json:"issues"`
	Rejected      []Rejection       `json:"rejected"`
	Stats         Stats             `json:"stats"`
}
