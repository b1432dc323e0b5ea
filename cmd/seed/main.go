// Package main provides the seed command-line tool that writes a synthetic
// raw HR table for local runs and demos.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hrclean/internal/models"
	"hrclean/internal/seed"
	"hrclean/internal/store"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[0;31m"
	colorGreen = "\033[0;32m"
)

func logInfo(msg string) {
	fmt.Printf("%s[SEEDER]%s %s\n", colorGreen, colorReset, msg)
}

func logError(msg string) {
	fmt.Fprintf(os.Stderr, "%s[SEEDER]%s %s\n", colorRed, colorReset, msg)
}

func main() {
	if err := newSeedCmd().ExecuteContext(context.Background()); err != nil {
		logError(err.Error())
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var (
		kind          string
		out           string
		table         string
		referenceDate string
		rows          int
		seedValue     int64
		terminated    int
		garbage       int
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Write a synthetic raw HR table to a CSV file or SQLite database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := models.DateOf(time.Now())
			if referenceDate != "" {
				d, err := models.ParseISODate(referenceDate)
				if err != nil {
					return fmt.Errorf("invalid --reference-date: %w", err)
				}

				ref = d
			}

			opts := seed.DefaultOptions(rows, ref)
			opts.Seed = seedValue
			opts.TerminatedPercent = terminated
			opts.GarbagePercent = garbage

			logInfo(fmt.Sprintf("Generating %d rows (seed %d)...", rows, seedValue))

			start := time.Now()

			var st store.Store

			switch kind {
			case "csv":
				table = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
				st = store.NewCSVStore(out, table)
			case "sqlite":
				s, err := store.OpenSQL(cmd.Context(), store.DialectSQLite, out, table)
				if err != nil {
					return err
				}

				st = s
			default:
				return fmt.Errorf("unsupported --kind %q (csv or sqlite)", kind)
			}
			defer st.Close()

			raw := seed.NewGenerator(opts).Table(table)
			if err := st.Save(cmd.Context(), raw, store.RawSchema); err != nil {
				return err
			}

			logInfo(fmt.Sprintf("Wrote %d rows to %s (%s) in %v", len(raw.Rows), out, table, time.Since(start)))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&kind, "kind", "csv", "output kind: csv or sqlite")
	flags.StringVarP(&out, "out", "o", "hr.csv", "output CSV file or SQLite database")
	flags.StringVar(&table, "table", "hr", "table name for sqlite output")
	flags.StringVar(&referenceDate, "reference-date", "", "date ages are generated relative to (YYYY-MM-DD, default today)")
	flags.IntVarP(&rows, "rows", "n", 22214, "number of rows")
	flags.Int64Var(&seedValue, "seed", 1, "random seed")
	flags.IntVar(&terminated, "terminated-percent", 15, "share of rows with a termination timestamp")
	flags.IntVar(&garbage, "garbage-percent", 2, "share of date cells that are blank or unparseable")

	return cmd
}
