package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrclean/internal/config"
	"hrclean/internal/normalizer"
	"hrclean/internal/report"
	"hrclean/internal/store"
	"hrclean/pkg/metadata"
)

const rawCSV = `ï»¿id,first_name,last_name,birthdate,gender,race,department,jobtitle,location,hire_date,termdate,location_city,location_state
00-01,Ada,Lovelace,06/04/1991,Female,White,Engineering,Engineer,Headquarters,01-20-2010,,Cleveland,Ohio
00-02,Bob,Marley,1-2-1980,Male,Black,Engineering,Engineer,Remote,03/01/2012,2020-03-01 00:00:00 UTC,Cleveland,Ohio
00-03,Cy,Young,12/12/2010,Male,Asian,Sales,Rep,Headquarters,05/05/2023,,Detroit,Michigan
00-04,Di,Prince,not a date,Female,White,Sales,Rep,Headquarters,07/07/2015,,Detroit,Michigan
00-05,Ed,Sheeran,01/01/1985,Male,White,Sales,Rep,Remote,01/01/2016,someday,Detroit,Michigan
`

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hr.csv"), []byte(rawCSV), 0o644))

	cfg := config.Default()
	cfg.Source.Path = filepath.Join(dir, "hr.csv")
	cfg.Normalization.ReferenceDate = "2024-06-15"
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Format = config.FormatMarkdown
	cfg.Output.Sign = true
	cfg.Output.WriteNormalized = true
	cfg.Metrics.Textfile = filepath.Join(dir, "hrclean.prom")

	require.NoError(t, cfg.Validate())

	return cfg
}

func resultByName(t *testing.T, results []*report.Result, name string) *report.Result {
	t.Helper()

	for _, r := range results {
		if r.Name == name {
			return r
		}
	}

	t.Fatalf("no result %s", name)

	return nil
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, nil, WithClock(fixedClock))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	stats := summary.Normalization.Stats
	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 4, stats.Kept)
	assert.Equal(t, 1, stats.Rejected)
	assert.True(t, stats.IdentifierFixed)
	assert.Equal(t, 1, stats.IssuesByKind[normalizer.IssueUnparseableDate])

	require.Len(t, summary.Results, len(report.Catalogue))
	assert.Zero(t, summary.FailedQueries())
	assert.Equal(t, "1", resultByName(t, summary.Results, "minor_count").Rows[0][0].String())
	assert.Equal(t, "8", resultByName(t, summary.Results, "avg_tenure_terminated").Rows[0][0].String())

	assert.Equal(t, "hr_clean", summary.CleanTable)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg.Source.Path), "hr_clean.csv"))
	assert.FileExists(t, cfg.Metrics.Textfile)

	require.Equal(t, []string{
		filepath.Join(cfg.Output.Dir, "report.md"),
		filepath.Join(cfg.Output.Dir, QualityReportName),
	}, summary.Files)

	data, err := os.ReadFile(summary.Files[0])
	require.NoError(t, err)

	meta, err := metadata.Verify(string(data))
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, meta.RunID)
	assert.Equal(t, "2024-06-15", meta.ReferenceDate)
	assert.Equal(t, 4, meta.Rows)

	quality, err := os.ReadFile(summary.Files[1])
	require.NoError(t, err)
	assert.Contains(t, string(quality), `"unparseable_date"`)
	assert.Contains(t, string(quality), `"malformed_termination"`)

	assert.InDelta(t, 5, testutil.ToFloat64(p.Metrics().RowsProcessed), 0)
}

func TestPipeline_NormalizedOutputIsStable(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, nil, nil, WithClock(fixedClock)).Normalize(context.Background(), true)
	require.NoError(t, err)

	again := *cfg
	again.Source.Path = filepath.Join(filepath.Dir(cfg.Source.Path), "hr_clean.csv")
	again.Source.Table = "hr_clean"

	second, err := New(&again, nil, nil, WithClock(fixedClock)).Normalize(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, second.Normalization.Stats.IdentifierFixed)
	assert.Equal(t, first.Normalization.Employees, second.Normalization.Employees)
	assert.Zero(t, second.Normalization.Stats.Rejected)
}

func TestPipeline_Run_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	raw, err := store.NewCSVStore(cfg.Source.Path, "hr").Load(ctx)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "hr.db")

	seed, err := store.OpenSQL(ctx, store.DialectSQLite, dbPath, "hr")
	require.NoError(t, err)
	require.NoError(t, seed.Save(ctx, raw, store.RawSchema))
	require.NoError(t, seed.Close())

	cfg.Source = config.SourceConfig{Kind: config.SourceSQLite, Path: dbPath, Table: "hr"}
	cfg.Output.Dir = ""
	cfg.Output.Format = config.FormatText

	var out bytes.Buffer

	summary, err := New(cfg, nil, nil, WithClock(fixedClock), WithOutput(&out)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Normalization.Stats.Kept)
	assert.Contains(t, out.String(), "Gender breakdown")
	assert.Empty(t, summary.Files)

	check, err := store.OpenSQL(ctx, store.DialectSQLite, dbPath, "hr_clean")
	require.NoError(t, err)

	defer check.Close()

	clean, err := check.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, clean.Rows, 4)
	assert.Equal(t, "emp_id", clean.Columns[0])
}

func TestPipeline_Run_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Queries = []string{"99"}

	_, err := New(cfg, nil, nil).Run(context.Background())
	require.ErrorIs(t, err, report.ErrUnknownQuery)

	cfg = testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Source.Path, []byte("ï»¿id,birthdate\n1,01/01/2000\n"), 0o644))

	_, err = New(cfg, nil, nil).Run(context.Background())
	require.ErrorIs(t, err, normalizer.ErrMissingColumn)

	cfg = testConfig(t)
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err = New(cfg, nil, nil).Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Normalization.Workers = 9

	opts := NormalizerOptions(cfg, fixedClock())
	assert.Equal(t, "2024-06-15", opts.ReferenceDate.String())
	assert.Equal(t, 9, opts.Workers)
	assert.True(t, opts.StrictTermination)
	assert.Equal(t, "ï»¿id", opts.IdentifierColumn)
}
