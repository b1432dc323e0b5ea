package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"hrclean/internal/normalizer"
	"hrclean/internal/pipeline"
)

// newRunCmd builds "run" (normalize, persist if configured, report) or,
// with full unset, "report" (normalize in memory and report).
func newRunCmd(opts *options, full bool) *cobra.Command {
	use, short := "report", "Normalize in memory and run the report queries"
	if full {
		use, short = "run", "Normalize, optionally persist the normalized table, and run the report queries"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if !full {
				cfg.Output.WriteNormalized = false
			}

			p := pipeline.New(cfg, newLogger(cmd, cfg), nil, pipeline.WithOutput(cmd.OutOrStdout()))

			summary, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			for _, f := range summary.Files {
				fmt.Fprintf(cmd.ErrOrStderr(), "✅ Wrote %s\n", f)
			}

			if failed := summary.FailedQueries(); failed > 0 {
				return fmt.Errorf("%d of %d queries failed", failed, len(summary.Results))
			}

			return nil
		},
	}

	addReportFlags(cmd, opts)

	if full {
		cmd.Flags().BoolVar(&opts.writeNormalized, "write-normalized", false, "write the normalized table back to the source")
	}

	return cmd
}

func newNormalizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Normalize the source table and write it back as <table>_clean",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			summary, err := pipeline.New(cfg, newLogger(cmd, cfg), nil).Normalize(cmd.Context(), true)
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), summary.Normalization)
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Wrote %s\n", summary.CleanTable)

			return nil
		},
	}
}

func printStats(w io.Writer, result *normalizer.Result) {
	s := result.Stats

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"reference date", result.ReferenceDate.String()})
	table.Append([]string{"identifier repaired", fmt.Sprint(s.IdentifierFixed)})
	table.Append([]string{"rows processed", fmt.Sprint(s.Processed)})
	table.Append([]string{"rows kept", fmt.Sprint(s.Kept)})
	table.Append([]string{"rows rejected", fmt.Sprint(s.Rejected)})
	table.Append([]string{"null birthdates", fmt.Sprint(s.NullBirthdates)})
	table.Append([]string{"null hire dates", fmt.Sprint(s.NullHireDates)})
	table.Append([]string{"active", fmt.Sprint(s.Active)})
	table.Append([]string{"terminated", fmt.Sprint(s.Terminated)})

	for _, kind := range []normalizer.IssueKind{
		normalizer.IssueUnparseableDate,
		normalizer.IssueMalformedTermination,
		normalizer.IssueFutureTermination,
		normalizer.IssueMissingIdentifier,
	} {
		table.Append([]string{string(kind), fmt.Sprint(s.IssuesByKind[kind])})
	}

	table.Render()
}
