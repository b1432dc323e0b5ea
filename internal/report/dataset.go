// Package report runs the fixed battery of HR summary queries over
// normalized employee records.
package report

import (
	"hrclean/internal/models"
)

// Cohort is the row filter a query applies before aggregating.
type Cohort string

// Cohorts.
const (
	// CohortAll applies no filter.
	CohortAll Cohort = "all"
	// CohortActiveAdult keeps adults without a termination date.
	CohortActiveAdult Cohort = "active_adult"
	// CohortTerminated keeps employees whose termination date is on or before the reference date.
	CohortTerminated Cohort = "terminated"
	// CohortAdult keeps adults regardless of termination.
	CohortAdult Cohort = "adult"
)

// DefaultAdultAge is the minimum age of the adult cohorts.
const DefaultAdultAge = 18

// Dataset is an immutable snapshot of normalized employees.
// Queries only read it, so any number may run concurrently.
type Dataset struct {
	employees     []models.Employee
	referenceDate models.Date
	adultAge      int
}

// NewDataset wraps employees normalized as of ref. The slice must not be
// modified afterwards.
func NewDataset(employees []models.Employee, ref models.Date, adultAge int) *Dataset {
	return &Dataset{
		employees:     employees,
		referenceDate: ref,
		adultAge:      adultAge,
	}
}

// Len returns the number of employees.
func (d *Dataset) Len() int {
	return len(d.employees)
}

// ReferenceDate returns the date the snapshot was normalized at.
func (d *Dataset) ReferenceDate() models.Date {
	return d.referenceDate
}

// AdultAge returns the minimum age of the adult cohorts.
func (d *Dataset) AdultAge() int {
	return d.adultAge
}

// Matches reports whether e belongs to cohort c.
func (d *Dataset) Matches(e *models.Employee, c Cohort) bool {
	switch c {
	case CohortActiveAdult:
		return e.IsAdult(d.adultAge) && e.Termination.IsActive()
	case CohortTerminated:
		return e.Termination.TerminatedBy(d.referenceDate)
	case CohortAdult:
		return e.IsAdult(d.adultAge)
	default:
		return true
	}
}

// Filter returns pointers to the employees in cohort c, in snapshot order.
func (d *Dataset) Filter(c Cohort) []*models.Employee {
	out := make([]*models.Employee, 0, len(d.employees))

	for i := range d.employees {
		if d.Matches(&d.employees[i], c) {
			out = append(out, &d.employees[i])
		}
	}

	return out
}
