package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearsBetween(t *testing.T) {
	tests := []struct {
		name     string
		birth    Date
		at       Date
		expected int
	}{
		{"reference example", NewDate(2000, time.January, 1), NewDate(2024, time.June, 15), 24},
		{"day before birthday", NewDate(1990, time.March, 15), NewDate(2024, time.March, 14), 33},
		{"on birthday", NewDate(1990, time.March, 15), NewDate(2024, time.March, 15), 34},
		{"earlier month", NewDate(1990, time.December, 1), NewDate(2024, time.June, 1), 33},
		{"leap day", NewDate(2000, time.February, 29), NewDate(2023, time.February, 28), 22},
		{"future birth", NewDate(2030, time.January, 1), NewDate(2024, time.January, 1), -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, YearsBetween(tt.birth, tt.at))
		})
	}
}

func TestDate_DaysSince(t *testing.T) {
	hire := NewDate(2020, time.January, 1)
	term := NewDate(2021, time.January, 1)

	assert.Equal(t, 366, term.DaysSince(hire))
	assert.Equal(t, -366, hire.DaysSince(term))

	early := NewDate(1700, time.January, 1)
	late := NewDate(2023, time.January, 1)

	assert.Equal(t, 117973, late.DaysSince(early))
	assert.Equal(t, -117973, early.DaysSince(late))
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("1990-03-15")
	require.NoError(t, err)
	assert.Equal(t, "1990-03-15", d.String())

	_, err = ParseISODate("03/15/1990")
	assert.Error(t, err)
}

func TestDate_TextRoundTrip(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2023-05-10")))

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2023-05-10", string(b))
}

func TestTermination(t *testing.T) {
	ref := NewDate(2024, time.June, 15)

	active := Active()
	assert.True(t, active.IsActive())
	assert.False(t, active.TerminatedBy(ref))
	assert.Equal(t, DefaultActiveSentinel, active.Legacy(DefaultActiveSentinel))
	assert.Equal(t, "active", active.String())

	past := TerminatedOn(NewDate(2023, time.May, 10))
	assert.False(t, past.IsActive())
	assert.True(t, past.TerminatedBy(ref))
	assert.Equal(t, "2023-05-10", past.Legacy(DefaultActiveSentinel))

	sameDay := TerminatedOn(ref)
	assert.True(t, sameDay.TerminatedBy(ref))

	future := TerminatedOn(NewDate(2025, time.January, 1))
	assert.False(t, future.IsActive())
	assert.False(t, future.TerminatedBy(ref))

	d, ok := future.Date()
	assert.True(t, ok)
	assert.Equal(t, 2025, d.Year())
}

func TestRawTable_Index(t *testing.T) {
	tbl := &RawTable{Columns: []string{ColEmpID, ColBirthdate}}

	assert.Equal(t, 1, tbl.Index(ColBirthdate))
	assert.Equal(t, -1, tbl.Index(ColTermDate))

	row := tbl.Cell([]sql.NullString{Text("a")}, 5)
	assert.False(t, row.Valid)
}
