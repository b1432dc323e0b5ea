// Package store loads raw employee tables and persists normalized ones.
//
// A source is a CSV file, a SQLite database or a Postgres database. Every
// store returns cells as sql.NullString so that SQL NULL stays distinct from
// empty text until the normalizer decides what each means.
package store

import (
	"context"
	"errors"
	"fmt"

	"hrclean/internal/config"
	"hrclean/internal/models"
)

// Store errors.
var (
	ErrUnsupportedSource = errors.New("unsupported source kind")
	ErrEmptyTable        = errors.New("table has no header")
	ErrInvalidTableName  = errors.New("invalid table name")
)

// ColumnType is the storage type of a persisted column.
type ColumnType string

// Column types.
const (
	TypeText    ColumnType = "TEXT"
	TypeDate    ColumnType = "DATE"
	TypeInteger ColumnType = "INTEGER"
)

// Schema maps column names to storage types. Columns not listed are TEXT.
type Schema map[string]ColumnType

// Type returns the storage type of column.
func (s Schema) Type(column string) ColumnType {
	if t, ok := s[column]; ok {
		return t
	}

	return TypeText
}

// RawSchema stores every column as text.
var RawSchema = Schema{}

// NormalizedSchema types the canonical date and age columns. termdate stays
// text because it may hold the active sentinel.
var NormalizedSchema = Schema{
	models.ColBirthdate: TypeDate,
	models.ColHireDate:  TypeDate,
	models.ColAge:       TypeInteger,
}

// Store is a tabular source and sink.
type Store interface {
	// Load reads the configured source table.
	Load(ctx context.Context) (*models.RawTable, error)
	// Save replaces the table named table.Name with table's contents.
	Save(ctx context.Context, table *models.RawTable, schema Schema) error
	Close() error
}

// Open returns the store for the configured source.
func Open(ctx context.Context, cfg config.SourceConfig) (Store, error) {
	switch cfg.Kind {
	case config.SourceCSV:
		return NewCSVStore(cfg.Path, cfg.Table), nil
	case config.SourceSQLite, config.SourcePostgres:
		dialect, dsn := DialectSQLite, cfg.Path
		if cfg.Kind == config.SourcePostgres {
			dialect, dsn = DialectPostgres, cfg.DSN
		}

		s, err := OpenSQL(ctx, dialect, dsn, cfg.Table)
		if err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, cfg.Kind)
	}
}
