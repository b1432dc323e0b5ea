package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrclean/internal/config"
	"hrclean/internal/models"
	"hrclean/internal/report"
	"hrclean/internal/seed"
	"hrclean/internal/store"
	"hrclean/internal/validator"
	"hrclean/pkg/metadata"
)

func TestPipeline_SeededFlow(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hr.db")

	raw := seed.NewGenerator(seed.DefaultOptions(500, models.NewDate(2024, 6, 15))).Table("hr")

	db, err := store.OpenSQL(ctx, store.DialectSQLite, dbPath, "hr")
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, raw, store.RawSchema))
	require.NoError(t, db.Close())

	cfg := config.Default()
	cfg.Source = config.SourceConfig{Kind: config.SourceSQLite, Path: dbPath, Table: "hr"}
	cfg.Normalization.ReferenceDate = "2024-06-15"
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Format = config.FormatMarkdown
	cfg.Output.Sign = true
	require.NoError(t, cfg.Validate())

	summary, err := New(cfg, nil, nil, WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 500, summary.Normalization.Stats.Kept)
	assert.Zero(t, summary.FailedQueries())

	content, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "report.md"))
	require.NoError(t, err)

	meta, err := metadata.Verify(string(content))
	require.NoError(t, err)
	assert.Equal(t, 500, meta.Rows)

	result := validator.NewMarkdownValidator(validator.Options{
		ExpectedSections: len(report.Catalogue),
	}).ValidateMarkdown(string(content))
	assert.True(t, result.IsValid, result.Errors)
	assert.Zero(t, result.Stats.FailedSections)
	assert.Positive(t, result.Stats.ValidRows)
}
