package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // register the pure-Go sqlite driver

	"hrclean/internal/models"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name   string
	Driver string
	// Placeholder returns the bind marker for the n-th argument, starting at 1.
	Placeholder func(n int) string
}

// Supported dialects.
var (
	DialectSQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Placeholder: func(int) string { return "?" },
	}
	DialectPostgres = Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}

	return nil
}

// quoteIdent quotes a column name, which may carry encoding artifacts.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SQLStore reads and writes tables through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// OpenSQL opens and pings the database at dsn.
func OpenSQL(ctx context.Context, dialect Dialect, dsn, table string) (*SQLStore, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}

	return NewSQLStore(db, dialect, table), nil
}

// NewSQLStore wraps an open database. table names the source table.
func NewSQLStore(db *sql.DB, dialect Dialect, table string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, table: table}
}

// DB exposes the underlying connection pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context) (*models.RawTable, error) {
	if err := validateName(s.table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table))
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", s.table, err)
	}

	table := &models.RawTable{Name: s.table, Columns: columns}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))

	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}

		row := make([]sql.NullString, len(columns))
		for i, v := range values {
			row[i] = toNullString(v)
		}

		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}

	return table, nil
}

// toNullString renders a driver value as text. Dates arrive as time.Time
// from typed columns and are rendered as YYYY-MM-DD when they carry no time.
func toNullString(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return models.Null()
	case string:
		return models.Text(x)
	case []byte:
		return models.Text(string(x))
	case int64:
		return models.Text(strconv.FormatInt(x, 10))
	case float64:
		return models.Text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		return models.Text(strconv.FormatBool(x))
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return models.Text(x.Format(models.DateLayout))
		}

		return models.Text(x.UTC().Format("2006-01-02 15:04:05 UTC"))
	default:
		return models.Text(fmt.Sprint(x))
	}
}

// Save implements Store. The table is dropped and recreated inside one
// transaction.
func (s *SQLStore) Save(ctx context.Context, table *models.RawTable, schema Schema) error {
	if err := validateName(table.Name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	name := quoteIdent(table.Name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", table.Name, err)
	}

	defs := make([]string, len(table.Columns))
	quoted := make([]string, len(table.Columns))
	marks := make([]string, len(table.Columns))

	for i, c := range table.Columns {
		quoted[i] = quoteIdent(c)
		defs[i] = quoted[i] + " " + string(schema.Type(c))
		marks[i] = s.dialect.Placeholder(i + 1)
	}

	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+name+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("create %s: %w", table.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+name+" ("+strings.Join(quoted, ", ")+") VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns))

	for n, row := range table.Rows {
		for i, c := range table.Columns {
			args[i], err = bindValue(table.Cell(row, i), schema.Type(c))
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", n, c, err)
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", n, table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	committed = true

	return nil
}

func bindValue(cell sql.NullString, t ColumnType) (any, error) {
	if !cell.Valid {
		return nil, nil
	}

	switch t {
	case TypeInteger:
		return strconv.ParseInt(cell.String, 10, 64)
	case TypeDate:
		d, err := models.ParseISODate(cell.String)
		if err != nil {
			return nil, err
		}

		return d.String(), nil
	default:
		return cell.String, nil
	}
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
