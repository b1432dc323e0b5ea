package report

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"hrclean/internal/logger"
	"hrclean/internal/metrics"
)

// ErrQueryPanicked wraps a panic recovered from a query.
var ErrQueryPanicked = errors.New("query panicked")

// Result is the output of one query. Err is set when the query failed;
// Rows is then empty.
type Result struct {
	Err      error
	Name     string
	Title    string
	Cohort   Cohort
	Columns  []string
	Rows     [][]Value
	Number   int
	Duration time.Duration
}

// Failed reports whether the query produced no result.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Reporter runs queries over a dataset.
type Reporter struct {
	log         *logger.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// NewReporter creates a reporter running at most concurrency queries at once.
// log and m may be nil.
func NewReporter(concurrency int, log *logger.Logger, m *metrics.Metrics) *Reporter {
	if log == nil {
		log = logger.Discard()
	}

	if concurrency < 1 {
		concurrency = 1
	}

	return &Reporter{
		log:         log,
		metrics:     m,
		concurrency: concurrency,
	}
}

// Run executes queries concurrently and returns one result per query in the
// order given. A failing query only fails its own result; the returned error
// is non-nil only when ctx is done before every query started.
func (r *Reporter) Run(ctx context.Context, ds *Dataset, queries []Query) ([]*Result, error) {
	results := make([]*Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, q := range queries {
		if err := gctx.Err(); err != nil {
			break
		}

		i, q := i, q

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = r.execute(ds, q)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("report aborted: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report aborted: %w", err)
	}

	failed := 0

	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}

	r.log.Info("Report completed",
		"queries", len(results),
		"failed", failed,
		"rows", ds.Len(),
	)

	return results, nil
}

// RunOne executes a single query synchronously.
func (r *Reporter) RunOne(ds *Dataset, q Query) *Result {
	return r.execute(ds, q)
}

func (r *Reporter) execute(ds *Dataset, q Query) (res *Result) {
	res = &Result{
		Number:  q.Number,
		Name:    q.Name,
		Title:   q.Title,
		Cohort:  q.Cohort,
		Columns: q.Columns,
	}

	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res.Rows = nil
			res.Err = fmt.Errorf("%w: %v", ErrQueryPanicked, p)
			r.log.Debug("Query panic stack", "query", q.Name, "stack", string(debug.Stack()))
		}

		res.Duration = time.Since(start)

		if r.metrics != nil {
			r.metrics.ObserveQuery(q.Name, res.Duration, res.Err)
		}

		if res.Err != nil {
			r.log.Warn("Query failed", "query", q.Name, "number", q.Number, "error", res.Err)
			return
		}

		r.log.Debug("Query finished", "query", q.Name, "rows", len(res.Rows), "duration", res.Duration)
	}()

	rows, err := q.Run(ds)
	if err != nil {
		res.Err = fmt.Errorf("query %s failed: %w", q.Name, err)
		return res
	}

	res.Rows = rows

	return res
}
