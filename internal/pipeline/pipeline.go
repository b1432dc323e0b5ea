// Package pipeline wires load, normalize, report and write into one run.
//
// The normalizer always finishes before any query starts: the reporter only
// sees a report.Dataset built from a completed normalizer.Result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hrclean/internal/config"
	"hrclean/internal/formatter"
	"hrclean/internal/logger"
	"hrclean/internal/metrics"
	"hrclean/internal/normalizer"
	"hrclean/internal/report"
	"hrclean/internal/store"
)

// ReportTitle heads every rendered report.
const ReportTitle = "HR employee report"

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Normalization *normalizer.Result
	Results       []*report.Result
	Files         []string
	CleanTable    string
	Duration      time.Duration
}

// FailedQueries returns the number of queries that produced no result.
func (s *Summary) FailedQueries() int {
	n := 0

	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}

	return n
}

// Pipeline runs the cleaning and reporting phases for one configuration.
type Pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	out     io.Writer
	now     func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithOutput sets where reports go when no output directory is configured.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithClock sets the clock used for the default reference date and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline. log and m may be nil.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	if m == nil {
		m = metrics.New()
	}

	p := &Pipeline{
		cfg:     cfg,
		log:     log,
		metrics: m,
		out:     os.Stdout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Metrics returns the collectors the pipeline records into.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// NormalizerOptions maps the configuration onto normalizer options.
func NormalizerOptions(cfg *config.Config, now time.Time) normalizer.Options {
	return normalizer.Options{
		ReferenceDate:     cfg.GetReferenceDate(now),
		IdentifierColumn:  cfg.Normalization.IdentifierColumn,
		ActiveSentinel:    cfg.Normalization.ActiveSentinel,
		Workers:           cfg.Normalization.Workers,
		ChunkSize:         cfg.Normalization.ChunkSize,
		StrictTermination: cfg.Normalization.StrictTermination,
	}
}

// Normalize loads the source and normalizes it. With persist set, the
// normalized table is written back next to the source.
func (p *Pipeline) Normalize(ctx context.Context, persist bool) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	start := p.now()

	log := p.log.With("run_id", summary.RunID)

	st, err := store.Open(ctx, p.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer st.Close()

	if err := p.normalize(ctx, log, st, persist, summary); err != nil {
		return nil, err
	}

	summary.Duration = p.now().Sub(start)

	return summary, p.finish(log)
}

// Run executes the whole pipeline: load, normalize, optionally persist the
// normalized table, run the selected queries and write the report.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	queries, err := report.Select(p.cfg.Report.Queries)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString()}
	start := p.now()

	log := p.log.With("run_id", summary.RunID)
	log.Info("Starting pipeline", "source", p.cfg.Source.Kind, "queries", len(queries))

	st, err := store.Open(ctx, p.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer st.Close()

	if err := p.normalize(ctx, log, st, p.cfg.Output.WriteNormalized, summary); err != nil {
		return nil, err
	}

	log.Info("Phase 3: Reporting")

	norm := summary.Normalization
	ds := report.NewDataset(norm.Employees, norm.ReferenceDate, p.cfg.Report.AdultAge)

	results, err := report.NewReporter(p.cfg.Report.Concurrency, log, p.metrics).Run(ctx, ds, queries)
	if err != nil {
		return nil, err
	}

	summary.Results = results

	log.Info("Phase 4: Writing report", "format", p.cfg.Output.Format)

	files, err := p.write(summary, ds)
	if err != nil {
		return nil, err
	}

	summary.Files = files
	summary.Duration = p.now().Sub(start)

	if failed := summary.FailedQueries(); failed > 0 {
		log.Warn("Some queries failed", "failed", failed, "total", len(results))
	}

	log.Info("Pipeline complete", "duration", summary.Duration, "files", len(files))

	return summary, p.finish(log)
}

func (p *Pipeline) normalize(ctx context.Context, log *logger.Logger, st store.Store, persist bool, summary *Summary) error {
	log.Info("Phase 1: Loading", "source", p.cfg.String())

	raw, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}

	log.Info("Loaded raw table", "rows", len(raw.Rows), "columns", len(raw.Columns))
	log.Info("Phase 2: Normalizing")

	result, err := normalizer.NewProcessor(NormalizerOptions(p.cfg, p.now()), log, p.metrics).Process(ctx, raw)
	if err != nil {
		return err
	}

	summary.Normalization = result

	if !persist {
		return nil
	}

	clean := normalizer.Encode(p.cfg.GetCleanTable(), result.Employees, p.cfg.Normalization.ActiveSentinel)
	if err := st.Save(ctx, clean, store.NormalizedSchema); err != nil {
		return fmt.Errorf("failed to save normalized table: %w", err)
	}

	summary.CleanTable = clean.Name
	log.Info("Saved normalized table", "table", clean.Name, "rows", len(clean.Rows))

	return nil
}

func (p *Pipeline) write(summary *Summary, ds *report.Dataset) ([]string, error) {
	f, err := formatter.New(p.cfg.Output.Format, p.cfg.Output.Sign)
	if err != nil {
		return nil, err
	}

	doc := &formatter.Document{
		Generated:     p.now(),
		RunID:         summary.RunID,
		Title:         ReportTitle,
		ReferenceDate: ds.ReferenceDate().String(),
		Rows:          ds.Len(),
		Results:       summary.Results,
	}

	if p.cfg.Output.Dir == "" {
		return nil, f.Render(p.out, doc)
	}

	files, err := formatter.WriteDir(p.cfg.Output.Dir, doc, f)
	if err != nil {
		return files, err
	}

	issues, err := writeQualityReport(p.cfg.Output.Dir, summary.Normalization)
	if err != nil {
		return files, err
	}

	return append(files, issues), nil
}

// QualityReportName is the file the data-quality report is written to.
const QualityReportName = "data_quality.json"

func writeQualityReport(dir string, result *normalizer.Result) (string, error) {
	path := filepath.Join(dir, QualityReportName)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode data quality report: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func (p *Pipeline) finish(log *logger.Logger) error {
	path := p.cfg.Metrics.Textfile
	if path == "" {
		return nil
	}

	if err := p.metrics.WriteTextfile(path); err != nil {
		return err
	}

	log.Debug("Wrote metrics", "path", path)

	return nil
}
