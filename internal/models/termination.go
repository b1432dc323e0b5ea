package models

// DefaultActiveSentinel is the legacy termdate value meaning "not terminated".
const DefaultActiveSentinel = "0000-00-00"

// Termination records whether an employee has left, and when.
// The zero value is Active.
type Termination struct {
	date       Date
	terminated bool
}

// Active returns the termination state of a current employee.
func Active() Termination {
	return Termination{}
}

// TerminatedOn returns the termination state of an employee who left on d.
func TerminatedOn(d Date) Termination {
	return Termination{date: d, terminated: true}
}

// IsActive reports whether the employee has no termination date.
func (t Termination) IsActive() bool {
	return !t.terminated
}

// Date returns the termination date and true, or false for active employees.
func (t Termination) Date() (Date, bool) {
	return t.date, t.terminated
}

// TerminatedBy reports whether the employee left on or before ref.
func (t Termination) TerminatedBy(ref Date) bool {
	return t.terminated && !t.date.After(ref)
}

// Legacy renders the termination the way the source table stores it:
// the date, or sentinel for active employees.
func (t Termination) Legacy(sentinel string) string {
	if !t.terminated {
		return sentinel
	}

	return t.date.String()
}

// String renders the termination date or "active".
func (t Termination) String() string {
	if !t.terminated {
		return "active"
	}

	return t.date.String()
}
