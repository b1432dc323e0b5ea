package normalizer

import (
	"database/sql"
	"strconv"

	"hrclean/internal/models"
)

// Encode renders employees as a canonical raw table: dates as YYYY-MM-DD,
// absent dates and ages as NULL, and active employees' termdate as sentinel.
// Processing the result again yields the same employees.
func Encode(name string, employees []models.Employee, sentinel string) *models.RawTable {
	table := &models.RawTable{
		Name:    name,
		Columns: append([]string(nil), models.CleanColumns...),
		Rows:    make([][]sql.NullString, 0, len(employees)),
	}

	for i := range employees {
		table.Rows = append(table.Rows, EncodeRow(&employees[i], sentinel))
	}

	return table
}

// EncodeRow renders one employee in CleanColumns order.
func EncodeRow(e *models.Employee, sentinel string) []sql.NullString {
	return []sql.NullString{
		models.Text(e.EmpID),
		models.Text(e.FirstName),
		models.Text(e.LastName),
		nullDate(e.Birthdate),
		models.Text(e.Gender),
		models.Text(e.Race),
		models.Text(e.Department),
		models.Text(e.JobTitle),
		models.Text(e.Location),
		nullDate(e.HireDate),
		models.Text(e.Termination.Legacy(sentinel)),
		models.Text(e.LocationCity),
		models.Text(e.LocationState),
		nullInt(e.Age),
	}
}

func nullDate(d models.NullDate) sql.NullString {
	if !d.Valid {
		return models.Null()
	}

	return models.Text(d.Date.String())
}

func nullInt(n models.NullInt) sql.NullString {
	if !n.Valid {
		return models.Null()
	}

	return models.Text(strconv.Itoa(n.Int))
}
