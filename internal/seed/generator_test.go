package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrclean/internal/models"
	"hrclean/internal/normalizer"
)

var testRef = models.NewDate(2024, time.June, 15)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(DefaultOptions(50, testRef)).Table("hr")
	b := NewGenerator(DefaultOptions(50, testRef)).Table("hr")

	assert.Equal(t, a.Rows, b.Rows)

	opts := DefaultOptions(50, testRef)
	opts.Seed = 2

	c := NewGenerator(opts).Table("hr")
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestGenerator_Table(t *testing.T) {
	table := NewGenerator(DefaultOptions(20, testRef)).Table("hr")

	assert.Equal(t, "hr", table.Name)
	assert.Equal(t, "ï»¿id", table.Columns[0])
	require.Len(t, table.Rows, 20)

	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}

	assert.Equal(t, "00-0000001", table.Rows[0][0].String)
}

func TestGenerator_NormalizesCleanly(t *testing.T) {
	opts := DefaultOptions(1000, testRef)
	opts.GarbagePercent = 5

	table := NewGenerator(opts).Table("hr")

	result, err := normalizer.NewProcessor(normalizer.DefaultOptions(testRef), nil, nil).Process(context.Background(), table)
	require.NoError(t, err)

	stats := result.Stats
	assert.True(t, stats.IdentifierFixed)
	assert.Equal(t, 1000, stats.Kept)
	assert.Zero(t, stats.Rejected)
	assert.Positive(t, stats.Terminated)
	assert.Positive(t, stats.Active)
	assert.Positive(t, stats.IssuesByKind[normalizer.IssueUnparseableDate])

	for _, e := range result.Employees {
		if e.Age.Valid {
			assert.GreaterOrEqual(t, e.Age.Int, 15)
			assert.LessOrEqual(t, e.Age.Int, 81)
		}
	}
}
