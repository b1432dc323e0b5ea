package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hrclean/internal/models"
)

// ErrUnknownQuery is returned when a selector matches no query.
var ErrUnknownQuery = errors.New("unknown query")

// Query is one summary in the report battery.
type Query struct {
	Run     func(*Dataset) ([][]Value, error)
	Name    string
	Title   string
	Cohort  Cohort
	Columns []string
	Number  int
}

// Catalogue lists every query in report order.
var Catalogue = []Query{
	{
		Number: 1, Name: "age_range", Title: "Overall age range",
		Cohort: CohortAll, Columns: []string{"youngest", "oldest"},
		Run: queryAgeRange(CohortAll),
	},
	{
		Number: 2, Name: "minor_count", Title: "Employees under the adult age",
		Cohort: CohortAll, Columns: []string{"count"},
		Run: queryMinorCount,
	},
	{
		Number: 3, Name: "gender_breakdown", Title: "Gender breakdown",
		Cohort: CohortActiveAdult, Columns: []string{"gender", "count"},
		Run: queryCountBy(CohortActiveAdult, byCountDesc, func(e *models.Employee) []string { return []string{e.Gender} }),
	},
	{
		Number: 4, Name: "race_breakdown", Title: "Race/ethnicity breakdown",
		Cohort: CohortActiveAdult, Columns: []string{"race", "count"},
		Run: queryCountBy(CohortActiveAdult, byCountDesc, func(e *models.Employee) []string { return []string{e.Race} }),
	},
	{
		Number: 5, Name: "active_age_range", Title: "Age range of active adult employees",
		Cohort: CohortActiveAdult, Columns: []string{"youngest", "oldest"},
		Run: queryAgeRange(CohortActiveAdult),
	},
	{
		Number: 6, Name: "age_bucket_distribution", Title: "Age group distribution",
		Cohort: CohortActiveAdult, Columns: []string{"age_group", "count"},
		Run: queryCountBy(CohortActiveAdult, byBucket, func(e *models.Employee) []string {
			return []string{AgeBucket(e.Age.Int)}
		}),
	},
	{
		Number: 7, Name: "age_bucket_gender", Title: "Age group distribution by gender",
		Cohort: CohortActiveAdult, Columns: []string{"age_group", "gender", "count"},
		Run: queryCountBy(CohortActiveAdult, byBucket, func(e *models.Employee) []string {
			return []string{AgeBucket(e.Age.Int), e.Gender}
		}),
	},
	{
		Number: 8, Name: "location_headcount", Title: "Headcount by location",
		Cohort: CohortActiveAdult, Columns: []string{"location", "count"},
		Run: queryCountBy(CohortActiveAdult, byCountDesc, func(e *models.Employee) []string { return []string{e.Location} }),
	},
	{
		Number: 9, Name: "avg_tenure_terminated", Title: "Average tenure of terminated employees (years)",
		Cohort: CohortTerminated, Columns: []string{"avg_tenure_years"},
		Run: queryAverageTenure,
	},
	{
		Number: 10, Name: "department_gender", Title: "Gender distribution by department",
		Cohort: CohortActiveAdult, Columns: []string{"department", "gender", "count"},
		Run: queryCountBy(CohortActiveAdult, ascending, func(e *models.Employee) []string {
			return []string{e.Department, e.Gender}
		}),
	},
	{
		Number: 11, Name: "jobtitle_headcount", Title: "Headcount by job title",
		Cohort: CohortActiveAdult, Columns: []string{"jobtitle", "count"},
		Run: queryCountBy(CohortActiveAdult, descending, func(e *models.Employee) []string { return []string{e.JobTitle} }),
	},
	{
		Number: 12, Name: "department_turnover", Title: "Turnover rate by department",
		Cohort: CohortAdult, Columns: []string{"department", "total_count", "terminated_count", "termination_rate"},
		Run: queryDepartmentTurnover,
	},
	{
		Number: 13, Name: "state_headcount", Title: "Headcount by state",
		Cohort: CohortActiveAdult, Columns: []string{"location_state", "count"},
		Run: queryCountBy(CohortActiveAdult, byCountDesc, func(e *models.Employee) []string { return []string{e.LocationState} }),
	},
	{
		Number: 14, Name: "yearly_hire_trend", Title: "Hires and terminations by hire year",
		Cohort: CohortAdult, Columns: []string{"year", "hires", "terminations", "net_change", "net_change_percent"},
		Run: queryYearlyTrend,
	},
	{
		Number: 15, Name: "avg_tenure_by_department", Title: "Average tenure by department (years)",
		Cohort: CohortTerminated, Columns: []string{"department", "avg_tenure_years"},
		Run: queryTenureByDepartment,
	},
}

// Lookup finds a query by number ("12") or name ("department_turnover").
func Lookup(selector string) (Query, error) {
	s := strings.TrimSpace(selector)

	if n, err := strconv.Atoi(s); err == nil {
		for _, q := range Catalogue {
			if q.Number == n {
				return q, nil
			}
		}

		return Query{}, fmt.Errorf("%w: %d", ErrUnknownQuery, n)
	}

	for _, q := range Catalogue {
		if strings.EqualFold(q.Name, s) {
			return q, nil
		}
	}

	return Query{}, fmt.Errorf("%w: %q", ErrUnknownQuery, s)
}

// Select resolves selectors in catalogue order without duplicates.
// No selectors selects the whole catalogue.
func Select(selectors []string) ([]Query, error) {
	if len(selectors) == 0 {
		return append([]Query(nil), Catalogue...), nil
	}

	chosen := make(map[int]bool, len(selectors))

	for _, sel := range selectors {
		q, err := Lookup(sel)
		if err != nil {
			return nil, err
		}

		chosen[q.Number] = true
	}

	var out []Query

	for _, q := range Catalogue {
		if chosen[q.Number] {
			out = append(out, q)
		}
	}

	return out, nil
}

func ascending(groups []*group)  { byKeys(groups, false) }
func descending(groups []*group) { byKeys(groups, true) }

// byBucket orders by age bucket, then by any remaining keys.
func byBucket(groups []*group) {
	byKeys(groups, false)
	sort.SliceStable(groups, func(i, j int) bool {
		return bucketOrder[groups[i].keys[0]] < bucketOrder[groups[j].keys[0]]
	})
}

func queryCountBy(c Cohort, order func([]*group), key func(*models.Employee) []string) func(*Dataset) ([][]Value, error) {
	return func(d *Dataset) ([][]Value, error) {
		groups := groupBy(d.Filter(c), key)
		order(groups)

		return countRows(groups), nil
	}
}

func queryAgeRange(c Cohort) func(*Dataset) ([][]Value, error) {
	return func(d *Dataset) ([][]Value, error) {
		lo, hi := ageRange(d.Filter(c))
		return [][]Value{{lo, hi}}, nil
	}
}

func queryMinorCount(d *Dataset) ([][]Value, error) {
	n := 0

	for _, e := range d.Filter(CohortAll) {
		if e.Age.Valid && e.Age.Int < d.AdultAge() {
			n++
		}
	}

	return [][]Value{{Int(n)}}, nil
}

func queryAverageTenure(d *Dataset) ([][]Value, error) {
	return [][]Value{{AverageTenureYears(d.Filter(CohortTerminated))}}, nil
}

func queryTenureByDepartment(d *Dataset) ([][]Value, error) {
	groups := groupBy(d.Filter(CohortTerminated), func(e *models.Employee) []string {
		return []string{e.Department}
	})
	ascending(groups)

	rows := make([][]Value, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []Value{String(g.keys[0]), AverageTenureYears(g.members)})
	}

	return rows, nil
}

func queryDepartmentTurnover(d *Dataset) ([][]Value, error) {
	groups := groupBy(d.Filter(CohortAdult), func(e *models.Employee) []string {
		return []string{e.Department}
	})
	ascending(groups)

	type turnover struct {
		rate       Value
		department string
		total      int
		terminated int
	}

	stats := make([]turnover, 0, len(groups))

	for _, g := range groups {
		t := turnover{department: g.keys[0], total: len(g.members)}
		for _, e := range g.members {
			if d.Matches(e, CohortTerminated) {
				t.terminated++
			}
		}

		t.rate = TurnoverRate(t.total, t.terminated)
		stats = append(stats, t)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return rateGreater(stats[i].rate, stats[j].rate)
	})

	rows := make([][]Value, 0, len(stats))
	for _, t := range stats {
		rows = append(rows, []Value{String(t.department), Int(t.total), Int(t.terminated), t.rate})
	}

	return rows, nil
}

// rateGreater orders defined rates descending, with undefined rates last.
func rateGreater(a, b Value) bool {
	da, aok := a.AsDecimal()
	db, bok := b.AsDecimal()

	switch {
	case aok && bok:
		return da.GreaterThan(db)
	default:
		return aok && !bok
	}
}

func queryYearlyTrend(d *Dataset) ([][]Value, error) {
	type trend struct {
		hires        int
		terminations int
	}

	years := make(map[int]*trend)

	for _, e := range d.Filter(CohortAdult) {
		if !e.HireDate.Valid {
			continue
		}

		y := e.HireDate.Date.Year()

		t, ok := years[y]
		if !ok {
			t = &trend{}
			years[y] = t
		}

		t.hires++

		if d.Matches(e, CohortTerminated) {
			t.terminations++
		}
	}

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}

	sort.Ints(keys)

	rows := make([][]Value, 0, len(keys))
	for _, y := range keys {
		t := years[y]
		rows = append(rows, []Value{
			Int(y),
			Int(t.hires),
			Int(t.terminations),
			Int(t.hires - t.terminations),
			NetChangePercent(t.hires, t.terminations),
		})
	}

	return rows, nil
}
