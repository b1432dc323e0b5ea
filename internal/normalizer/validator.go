package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"hrclean/internal/models"
)

// Schema errors. Both abort the whole batch.
var (
	ErrNilTable          = errors.New("raw table is nil")
	ErrMissingIdentifier = errors.New("identifier column not found")
	ErrMissingColumn     = errors.New("required column missing")
)

// encodingArtifacts are prefixes left on the first header by a UTF-8 byte
// order mark, either raw or decoded as Latin-1.
var encodingArtifacts = []string{"\ufeff", "ï»¿"}

// Validator checks the raw table's shape and repairs its identifier column.
type Validator struct {
	identifierColumn string
}

// NewValidator creates a validator that expects the identifier under
// identifierColumn before repair.
func NewValidator(identifierColumn string) *Validator {
	return &Validator{identifierColumn: identifierColumn}
}

// RepairIdentifier renames the corrupted identifier column to emp_id.
// It reports whether a rename happened; a table that already has emp_id
// is left alone.
func (v *Validator) RepairIdentifier(table *models.RawTable) (bool, error) {
	if table == nil {
		return false, ErrNilTable
	}

	if table.Index(models.ColEmpID) >= 0 {
		return false, nil
	}

	want := canonicalColumn(v.identifierColumn)

	for i, col := range table.Columns {
		if col == v.identifierColumn || canonicalColumn(col) == want {
			table.Columns[i] = models.ColEmpID
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: expected %q in %v", ErrMissingIdentifier, v.identifierColumn, table.Columns)
}

// Validate checks that every required column is present and returns the
// position of each canonical column name.
func (v *Validator) Validate(table *models.RawTable) (map[string]int, error) {
	if table == nil {
		return nil, ErrNilTable
	}

	index := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		key := canonicalColumn(col)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string

	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return index, nil
}

// canonicalColumn strips encoding artifacts and whitespace and lower-cases a header.
func canonicalColumn(name string) string {
	s := strings.TrimSpace(name)
	for _, a := range encodingArtifacts {
		s = strings.TrimPrefix(s, a)
	}

	return strings.ToLower(strings.TrimSpace(s))
}
