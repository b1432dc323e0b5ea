// Package normalizer turns a raw employee table into canonical employee records.
package normalizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hrclean/internal/logger"
	"hrclean/internal/metrics"
	"hrclean/internal/models"
)

// Options controls a normalization run.
type Options struct {
	ReferenceDate     models.Date
	IdentifierColumn  string
	ActiveSentinel    string
	Workers           int
	ChunkSize         int
	StrictTermination bool
}

// DefaultOptions returns options for a run as of ref.
func DefaultOptions(ref models.Date) Options {
	return Options{
		ReferenceDate:     ref,
		IdentifierColumn:  "ï»¿id",
		ActiveSentinel:    models.DefaultActiveSentinel,
		Workers:           4,
		ChunkSize:         1024,
		StrictTermination: true,
	}
}

// Processor handles data processing and transformation.
type Processor struct {
	validator *Validator
	log       *logger.Logger
	metrics   *metrics.Metrics
	opts      Options
}

// NewProcessor creates a new processor instance. m may be nil.
func NewProcessor(opts Options, log *logger.Logger, m *metrics.Metrics) *Processor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator: NewValidator(opts.IdentifierColumn),
		log:       log,
		metrics:   m,
		opts:      opts,
	}
}

// Process normalizes table. The identifier column is renamed in place;
// everything else is read-only. Schema problems abort the run, row
// problems are isolated to the row.
func (p *Processor) Process(ctx context.Context, table *models.RawTable) (*Result, error) {
	start := time.Now()

	// 1. Repair the identifier column and validate the schema
	fixed, err := p.validator.RepairIdentifier(table)
	if err != nil {
		return nil, fmt.Errorf("identifier repair failed: %w", err)
	}

	index, err := p.validator.Validate(table)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Transform rows in parallel chunks, each owning its output slots
	transformer := NewTransformer(index, p.opts)
	outcomes := make([]Outcome, len(table.Rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for lo := 0; lo < len(table.Rows); lo += p.opts.ChunkSize {
		lo := lo
		hi := min(lo+p.opts.ChunkSize, len(table.Rows))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			for i := lo; i < hi; i++ {
				outcomes[i] = transformer.Transform(i, table.Rows[i])
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	// 3. Merge in row order
	result := p.merge(outcomes)
	result.Stats.IdentifierFixed = fixed

	if p.metrics != nil {
		p.metrics.NormalizeSeconds.Observe(time.Since(start).Seconds())
	}

	p.log.Info("Normalization complete",
		"processed", result.Stats.Processed,
		"kept", result.Stats.Kept,
		"rejected", result.Stats.Rejected,
		"issues", len(result.Issues),
		"duration", time.Since(start),
	)

	return result, nil
}

func (p *Processor) merge(outcomes []Outcome) *Result {
	result := &Result{
		ReferenceDate: p.opts.ReferenceDate,
		Employees:     make([]models.Employee, 0, len(outcomes)),
		Stats: Stats{
			Processed:    len(outcomes),
			IssuesByKind: make(map[IssueKind]int),
		},
	}

	for i := range outcomes {
		o := &outcomes[i]

		for _, issue := range o.Issues {
			p.record(result, issue)
		}

		if o.Rejection != nil {
			result.Rejected = append(result.Rejected, *o.Rejection)
			p.record(result, o.Rejection.Issue)
			p.log.Warn("Row rejected", "row", o.Rejection.Issue.Row, "reason", o.Rejection.Err)

			continue
		}

		e := o.Employee
		if !e.Birthdate.Valid {
			result.Stats.NullBirthdates++
		}

		if !e.HireDate.Valid {
			result.Stats.NullHireDates++
		}

		if e.Termination.IsActive() {
			result.Stats.Active++
		} else {
			result.Stats.Terminated++
		}

		result.Employees = append(result.Employees, e)
	}

	result.Stats.Kept = len(result.Employees)
	result.Stats.Rejected = len(result.Rejected)

	if p.metrics != nil {
		p.metrics.RowsProcessed.Add(float64(result.Stats.Processed))
		p.metrics.RowsRejected.Add(float64(result.Stats.Rejected))
	}

	return result
}

func (p *Processor) record(result *Result, issue Issue) {
	result.Issues = append(result.Issues, issue)
	result.Stats.IssuesByKind[issue.Kind]++

	if p.metrics != nil {
		p.metrics.ObserveIssue(issue.Column, string(issue.Kind))
	}

	p.log.Debug("Data issue", "issue", issue.String())
}
