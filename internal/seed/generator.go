// Package seed generates synthetic raw HR tables with the quirks of the real
// export: a mis-encoded identifier header, mixed date formats, UTC
// termination timestamps and the occasional unusable cell.
package seed

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jaswdr/faker"

	"hrclean/internal/models"
)

// Options controls generation.
type Options struct {
	Reference        models.Date
	IdentifierColumn string
	Rows             int
	Seed             int64
	// TerminatedPercent is the share of rows with a termination timestamp.
	TerminatedPercent int
	// GarbagePercent is the share of date cells replaced by blanks or junk.
	GarbagePercent int
}

// DefaultOptions returns options for rows rows as of ref.
func DefaultOptions(rows int, ref models.Date) Options {
	return Options{
		Reference:         ref,
		IdentifierColumn:  "ï»¿id",
		Rows:              rows,
		Seed:              1,
		TerminatedPercent: 15,
		GarbagePercent:    2,
	}
}

var (
	genders = []string{"Male", "Female", "Non-Conforming"}
	races   = []string{
		"White",
		"Black or African American",
		"Two or More Races",
		"Asian",
		"Hispanic or Latino",
		"American Indian or Alaska Native",
		"Native Hawaiian or Other Pacific Islander",
	}
	jobTitles = map[string][]string{
		"Engineering":              {"Software Engineer I", "Software Engineer II", "Systems Administrator", "VP of Engineering"},
		"Accounting":               {"Accountant I", "Staff Accountant", "Accounting Assistant"},
		"Sales":                    {"Sales Representative", "Account Executive"},
		"Services":                 {"Service Tech", "Field Engineer"},
		"Legal":                    {"Paralegal", "Legal Assistant"},
		"Research and Development": {"Research Assistant I", "Research Associate"},
		"Human Resources":          {"Human Resources Analyst", "Recruiter"},
		"Marketing":                {"Marketing Manager", "Content Strategist"},
		"Training":                 {"Trainer", "Training Coordinator"},
		"Support":                  {"Support Specialist", "Help Desk Operator"},
		"Business Development":     {"Business Analyst", "Partnerships Manager"},
		"Product Management":       {"Product Manager", "Associate Product Manager"},
		"Auditing":                 {"Internal Auditor", "Compliance Auditor"},
	}
	departments = sortedKeys(jobTitles)
	locations   = []string{"Headquarters", "Headquarters", "Headquarters", "Remote"}
	junk        = []string{"", "n/a", "unknown", "13/45/2001"}
)

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Columns returns the raw header for identifier.
func Columns(identifier string) []string {
	return []string{
		identifier,
		models.ColFirstName,
		models.ColLastName,
		models.ColBirthdate,
		models.ColGender,
		models.ColRace,
		models.ColDepartment,
		models.ColJobTitle,
		models.ColLocation,
		models.ColHireDate,
		models.ColTermDate,
		models.ColLocationCity,
		models.ColLocationState,
	}
}

// Generator produces raw employee rows. It is deterministic for a given seed.
type Generator struct {
	fake faker.Faker
	opts Options
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{
		fake: faker.NewWithSeed(rand.NewSource(opts.Seed)),
		opts: opts,
	}
}

// Table generates a raw table named name.
func (g *Generator) Table(name string) *models.RawTable {
	table := &models.RawTable{
		Name:    name,
		Columns: Columns(g.opts.IdentifierColumn),
		Rows:    make([][]sql.NullString, 0, g.opts.Rows),
	}

	for i := 0; i < g.opts.Rows; i++ {
		table.Rows = append(table.Rows, g.Row(i))
	}

	return table
}

// Row generates the i-th row.
func (g *Generator) Row(i int) []sql.NullString {
	f := g.fake
	ref := g.opts.Reference.Time()

	gender := f.RandomStringElement(genders)

	first := f.Person().FirstNameFemale()
	if gender == "Male" || (gender == "Non-Conforming" && f.IntBetween(0, 1) == 0) {
		first = f.Person().FirstNameMale()
	}

	// Ages 16 to 80 at the reference date; minors exist in the real export.
	birth := ref.AddDate(-f.IntBetween(16, 80), 0, -f.IntBetween(0, 364))

	// Hired on or after the 18th birthday, up to the reference date.
	earliest := birth.AddDate(18, 0, 0)
	if earliest.Before(ref.AddDate(-30, 0, 0)) {
		earliest = ref.AddDate(-30, 0, 0)
	}

	if !earliest.Before(ref) {
		earliest = ref.AddDate(0, 0, -30)
	}

	hire := earliest.AddDate(0, 0, f.IntBetween(0, max(1, int(ref.Sub(earliest).Hours()/24))))

	term := ""
	if f.IntBetween(1, 100) <= g.opts.TerminatedPercent {
		// A few terminations are scheduled after the reference date.
		end := hire.AddDate(0, 0, f.IntBetween(30, 365*12))
		term = end.UTC().Format("2006-01-02") + " 00:00:00 UTC"
	}

	department := f.RandomStringElement(departments)

	return []sql.NullString{
		models.Text(fmt.Sprintf("00-%07d", i+1)),
		models.Text(first),
		models.Text(f.Person().LastName()),
		models.Text(g.rawDate(birth)),
		models.Text(gender),
		models.Text(f.RandomStringElement(races)),
		models.Text(department),
		models.Text(f.RandomStringElement(jobTitles[department])),
		models.Text(f.RandomStringElement(locations)),
		models.Text(g.rawDate(hire)),
		models.Text(term),
		models.Text(f.Address().City()),
		models.Text(f.Address().State()),
	}
}

// rawDate renders t the way the source system did: slash or dash separated
// month/day/year, or junk for a small share of cells.
func (g *Generator) rawDate(t time.Time) string {
	f := g.fake

	if f.IntBetween(1, 100) <= g.opts.GarbagePercent {
		return f.RandomStringElement(junk)
	}

	if f.IntBetween(0, 1) == 0 {
		return fmt.Sprintf("%02d/%02d/%d", int(t.Month()), t.Day(), t.Year())
	}

	return fmt.Sprintf("%02d-%02d-%d", int(t.Month()), t.Day(), t.Year())
}
