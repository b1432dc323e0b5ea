// Package models defines the employee records moved through the cleaning pipeline.
package models

import "database/sql"

// Column names of the employee table.
const (
	ColEmpID         = "emp_id"
	ColFirstName     = "first_name"
	ColLastName      = "last_name"
	ColBirthdate     = "birthdate"
	ColGender        = "gender"
	ColRace          = "race"
	ColDepartment    = "department"
	ColJobTitle      = "jobtitle"
	ColLocation      = "location"
	ColHireDate      = "hire_date"
	ColTermDate      = "termdate"
	ColLocationCity  = "location_city"
	ColLocationState = "location_state"
	ColAge           = "age"
)

// RequiredColumns must be present in a raw table once the identifier is repaired.
var RequiredColumns = []string{
	ColEmpID,
	ColBirthdate,
	ColHireDate,
	ColTermDate,
	ColGender,
	ColRace,
	ColDepartment,
	ColJobTitle,
	ColLocation,
	ColLocationState,
}

// CleanColumns is the column order of a normalized employee table.
var CleanColumns = []string{
	ColEmpID,
	ColFirstName,
	ColLastName,
	ColBirthdate,
	ColGender,
	ColRace,
	ColDepartment,
	ColJobTitle,
	ColLocation,
	ColHireDate,
	ColTermDate,
	ColLocationCity,
	ColLocationState,
	ColAge,
}

// Employee is a normalized employee record.
type Employee struct {
	EmpID         string      `json:"empId"`
	FirstName     string      `json:"firstName,omitempty"`
	LastName      string      `json:"lastName,omitempty"`
	Birthdate     NullDate    `json:"-"`
	HireDate      NullDate    `json:"-"`
	Termination   Termination `json:"-"`
	Age           NullInt     `json:"-"`
	Gender        string      `json:"gender"`
	Race          string      `json:"race"`
	Department    string      `json:"department"`
	JobTitle      string      `json:"jobTitle"`
	Location      string      `json:"location"`
	LocationCity  string      `json:"locationCity,omitempty"`
	LocationState string      `json:"locationState"`
}

// IsAdult reports whether the employee's age is known and at least minAge.
func (e *Employee) IsAdult(minAge int) bool {
	return e.Age.Valid && e.Age.Int >= minAge
}

// RawTable is a table exactly as loaded from the source.
// Cells keep SQL NULL distinct from empty text.
type RawTable struct {
	Name    string
	Columns []string
	Rows    [][]sql.NullString
}

// Index returns the position of column name, or -1.
func (t *RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}

	return -1
}

// Cell returns the value of column col in row, or a NULL cell when
// the column is out of range.
func (t *RawTable) Cell(row []sql.NullString, col int) sql.NullString {
	if col < 0 || col >= len(row) {
		return sql.NullString{}
	}

	return row[col]
}

// Text builds a non-NULL cell.
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// Null builds a NULL cell.
func Null() sql.NullString {
	return sql.NullString{}
}
