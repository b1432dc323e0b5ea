package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"hrclean/internal/models"
)

// Age bucket labels, in report order.
const (
	BucketUnder18 = "under-18"
	Bucket18To24  = "18-24"
	Bucket25To34  = "25-34"
	Bucket35To44  = "35-44"
	Bucket45To54  = "45-54"
	Bucket55To64  = "55-64"
	Bucket65Plus  = "65+"
)

var bucketOrder = map[string]int{
	BucketUnder18: 0,
	Bucket18To24:  1,
	Bucket25To34:  2,
	Bucket35To44:  3,
	Bucket45To54:  4,
	Bucket55To64:  5,
	Bucket65Plus:  6,
}

// AgeBucket returns the bucket label for age. The last bucket is open-ended.
func AgeBucket(age int) string {
	switch {
	case age < 18:
		return BucketUnder18
	case age <= 24:
		return Bucket18To24
	case age <= 34:
		return Bucket25To34
	case age <= 44:
		return Bucket35To44
	case age <= 54:
		return Bucket45To54
	case age <= 64:
		return Bucket55To64
	default:
		return Bucket65Plus
	}
}

// group is a grouping key with the employees that share it.
type group struct {
	keys    []string
	members []*models.Employee
}

// groupBy partitions employees by the keys fn returns, preserving first-seen order.
func groupBy(employees []*models.Employee, fn func(*models.Employee) []string) []*group {
	index := make(map[string]*group)

	var order []*group

	for _, e := range employees {
		keys := fn(e)
		id := joinKey(keys)

		g, ok := index[id]
		if !ok {
			g = &group{keys: keys}
			index[id] = g
			order = append(order, g)
		}

		g.members = append(g.members, e)
	}

	return order
}

func joinKey(keys []string) string {
	n := 0
	for _, k := range keys {
		n += len(k) + 1
	}

	b := make([]byte, 0, n)
	for _, k := range keys {
		b = append(b, k...)
		b = append(b, 0)
	}

	return string(b)
}

// byKeys orders groups by their keys ascending, or descending when desc is set.
func byKeys(groups []*group, desc bool) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].keys, groups[j].keys
		for k := range a {
			if a[k] != b[k] {
				if desc {
					return a[k] > b[k]
				}
				return a[k] < b[k]
			}
		}
		return false
	})
}

// byCountDesc orders groups by size descending, then keys ascending.
func byCountDesc(groups []*group) {
	byKeys(groups, false)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].members) > len(groups[j].members)
	})
}

// countRows renders each group as its keys followed by its size.
func countRows(groups []*group) [][]Value {
	rows := make([][]Value, 0, len(groups))

	for _, g := range groups {
		row := make([]Value, 0, len(g.keys)+1)
		for _, k := range g.keys {
			row = append(row, String(k))
		}

		rows = append(rows, append(row, Int(len(g.members))))
	}

	return rows
}

// ageRange returns the youngest and oldest known ages, or NULLs when none are known.
func ageRange(employees []*models.Employee) (Value, Value) {
	found := false

	var lo, hi int

	for _, e := range employees {
		if !e.Age.Valid {
			continue
		}

		if !found || e.Age.Int < lo {
			lo = e.Age.Int
		}

		if !found || e.Age.Int > hi {
			hi = e.Age.Int
		}

		found = true
	}

	if !found {
		return Null, Null
	}

	return Int(lo), Int(hi)
}

// TenureDays returns the days between hire and termination, and false if
// either date is unknown.
func TenureDays(e *models.Employee) (int, bool) {
	term, terminated := e.Termination.Date()
	if !terminated || !e.HireDate.Valid {
		return 0, false
	}

	return term.DaysSince(e.HireDate.Date), true
}

// AverageTenureYears averages tenure in days, divides by 365 and rounds to
// whole years. It is NULL when no employee has a measurable tenure.
func AverageTenureYears(employees []*models.Employee) Value {
	var sum int64

	n := 0

	for _, e := range employees {
		days, ok := TenureDays(e)
		if !ok {
			continue
		}

		sum += int64(days)
		n++
	}

	if n == 0 {
		return Null
	}

	years := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(n)*365), 0)

	return Int(int(years.IntPart()))
}

// TurnoverRate returns terminated/total to four places, or NULL when total is zero.
func TurnoverRate(total, terminated int) Value {
	if total == 0 {
		return Null
	}

	return Decimal(decimal.NewFromInt(int64(terminated)).DivRound(decimal.NewFromInt(int64(total)), 4))
}

// NetChangePercent returns (hires-terminations)/hires*100 to two places,
// or NULL when there were no hires.
func NetChangePercent(hires, terminations int) Value {
	if hires == 0 {
		return Null
	}

	net := decimal.NewFromInt(int64(hires - terminations)).Mul(decimal.NewFromInt(100))

	return Decimal(net.DivRound(decimal.NewFromInt(int64(hires)), 2))
}
