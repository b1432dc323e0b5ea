// Package main provides the hrclean command: normalize an HR employee table
// and run the summary report battery over it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hrclean/internal/config"
	"hrclean/internal/logger"
)

type options struct {
	configPath      string
	logLevel        string
	logFormat       string
	sourceKind      string
	sourcePath      string
	dsn             string
	table           string
	referenceDate   string
	format          string
	outDir          string
	metricsTextfile string
	queries         []string
	workers         int
	concurrency     int
	sign            bool
	writeNormalized bool
	lenient         bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "hrclean",
		Short:         "Normalize HR employee records and report on them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&opts.sourceKind, "source-kind", "", "source kind: csv, sqlite, postgres")
	flags.StringVarP(&opts.sourcePath, "source", "s", "", "CSV file or SQLite database path")
	flags.StringVar(&opts.dsn, "dsn", "", "Postgres connection string")
	flags.StringVar(&opts.table, "table", "", "source table name")
	flags.StringVar(&opts.referenceDate, "reference-date", "", "date ages and cohorts are computed at (YYYY-MM-DD, default today)")
	flags.IntVar(&opts.workers, "workers", 0, "normalizer worker count")
	flags.BoolVar(&opts.lenient, "lenient", false, "keep rows with malformed termination dates as active")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")

	root.AddCommand(
		newRunCmd(opts, true),
		newRunCmd(opts, false),
		newNormalizeCmd(opts),
		newQueriesCmd(),
		newVerifyCmd(),
		newFmtCmd(),
		newInitConfigCmd(),
	)

	return root
}

// addReportFlags registers the flags shared by the commands that render reports.
func addReportFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "", "output format: text, markdown, json, csv")
	flags.StringVarP(&opts.outDir, "out", "o", "", "output directory (default stdout)")
	flags.StringSliceVarP(&opts.queries, "query", "q", nil, "queries to run, by number or name (default all)")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "queries run at once")
	flags.BoolVar(&opts.sign, "sign", false, "append a signed metadata block to markdown reports")
}

// loadConfig reads the config file, if any, and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}

	if changed("source-kind") {
		cfg.Source.Kind = opts.sourceKind
	}

	if changed("source") {
		cfg.Source.Path = opts.sourcePath
	}

	if changed("dsn") {
		cfg.Source.DSN = opts.dsn
	}

	if changed("table") {
		cfg.Source.Table = opts.table
	}

	if changed("reference-date") {
		cfg.Normalization.ReferenceDate = opts.referenceDate
	}

	if changed("workers") {
		cfg.Normalization.Workers = opts.workers
	}

	if changed("lenient") {
		cfg.Normalization.StrictTermination = !opts.lenient
	}

	if changed("metrics-textfile") {
		cfg.Metrics.Textfile = opts.metricsTextfile
	}

	if changed("format") {
		cfg.Output.Format = opts.format
	}

	if changed("out") {
		cfg.Output.Dir = opts.outDir
	}

	if changed("query") {
		cfg.Report.Queries = opts.queries
	}

	if changed("concurrency") {
		cfg.Report.Concurrency = opts.concurrency
	}

	if changed("sign") {
		cfg.Output.Sign = opts.sign
	}

	if changed("write-normalized") {
		cfg.Output.WriteNormalized = opts.writeNormalized
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	return logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
}
