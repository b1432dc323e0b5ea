package normalizer

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hrclean/internal/models"
)

// Date parsing errors.
var (
	ErrUnparseableDate      = errors.New("date matches no known format")
	ErrMalformedTermination = errors.New("termination timestamp is malformed")
)

const (
	slashLayout = "1/2/2006"
	dashLayout  = "1-2-2006"

	// terminationLayout is the source timestamp format; the zone marker is always UTC.
	terminationLayout = "2006-01-02 15:04:05 UTC"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate converts a month/day/year cell into a canonical date.
// The separator present in the value selects the layout. Values that are
// already canonical are returned unchanged, so parsing is idempotent.
// NULL and blank cells yield an absent date without error; any other
// value that fits no layout yields an absent date and ErrUnparseableDate.
func ParseDate(cell sql.NullString) (models.NullDate, error) {
	if !cell.Valid {
		return models.NullDate{}, nil
	}

	s := strings.TrimSpace(cell.String)
	if s == "" {
		return models.NullDate{}, nil
	}

	var layout string

	switch {
	case strings.Contains(s, "/"):
		layout = slashLayout
	case isoDatePattern.MatchString(s):
		layout = models.DateLayout
	case strings.Contains(s, "-"):
		layout = dashLayout
	default:
		return models.NullDate{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return models.NullDate{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
	}

	return models.SomeDate(models.DateOf(t)), nil
}

// ParseTermination converts a termdate cell into a Termination.
// NULL, blank and sentinel cells mean the employee is active. A
// "YYYY-MM-DD HH:MM:SS UTC" timestamp or a canonical date means the
// employee left on that date. Anything else is ErrMalformedTermination.
func ParseTermination(cell sql.NullString, sentinel string) (models.Termination, error) {
	if !cell.Valid {
		return models.Active(), nil
	}

	s := strings.TrimSpace(cell.String)
	if s == "" || s == sentinel {
		return models.Active(), nil
	}

	if t, err := time.Parse(terminationLayout, s); err == nil {
		return models.TerminatedOn(models.DateOf(t)), nil
	}

	if isoDatePattern.MatchString(s) {
		if d, err := models.ParseISODate(s); err == nil {
			return models.TerminatedOn(d), nil
		}
	}

	return models.Active(), fmt.Errorf("%w: %q", ErrMalformedTermination, s)
}

// AgeAt returns the whole years between birthdate and ref, or an absent
// age when the birthdate is unknown.
func AgeAt(birthdate models.NullDate, ref models.Date) models.NullInt {
	if !birthdate.Valid {
		return models.NullInt{}
	}

	return models.SomeInt(models.YearsBetween(birthdate.Date, ref))
}
