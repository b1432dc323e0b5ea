package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hrclean/internal/models"
)

// CSVStore reads a CSV file and writes tables as sibling CSV files.
// CSV has no NULL, so loaded cells are always valid text and NULL cells
// are written as empty fields.
type CSVStore struct {
	path  string
	table string
}

// NewCSVStore creates a store over path. table names the loaded table.
func NewCSVStore(path, table string) *CSVStore {
	return &CSVStore{path: path, table: table}
}

// Load implements Store.
func (s *CSVStore) Load(ctx context.Context) (*models.RawTable, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer file.Close()

	table, err := ReadCSV(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	table.Name = s.table

	return table, nil
}

// ReadCSV parses a CSV stream whose first record is the header. Short and
// long records are padded or truncated to the header width.
func ReadCSV(ctx context.Context, r io.Reader) (*models.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}

	if err != nil {
		return nil, err
	}

	table := &models.RawTable{Columns: append([]string(nil), header...)}

	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]sql.NullString, len(table.Columns))
		for i := range row {
			if i < len(record) {
				row[i] = models.Text(record[i])
			} else {
				row[i] = models.Text("")
			}
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteCSV writes table with a header record.
func WriteCSV(w io.Writer, table *models.RawTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))

	for _, row := range table.Rows {
		for i := range record {
			record[i] = table.Cell(row, i).String
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// Path returns where a table named name is written.
func (s *CSVStore) Path(name string) string {
	return filepath.Join(filepath.Dir(s.path), name+".csv")
}

// Save implements Store. The schema is ignored.
func (s *CSVStore) Save(ctx context.Context, table *models.RawTable, _ Schema) (err error) {
	if err := validateName(table.Name); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(table.Name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := WriteCSV(file, table); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Close implements Store.
func (s *CSVStore) Close() error { return nil }
