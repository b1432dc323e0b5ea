package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"hrclean/internal/config"
	"hrclean/internal/formatter"
	"hrclean/internal/report"
	"hrclean/internal/validator"
	"hrclean/pkg/metadata"
)

func newQueriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List the report queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"#", "name", "cohort", "title"})
			table.SetAutoFormatHeaders(false)

			for _, q := range report.Catalogue {
				table.Append([]string{strconv.Itoa(q.Number), q.Name, string(q.Cohort), q.Title})
			}

			table.Render()

			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	var sections int

	cmd := &cobra.Command{
		Use:   "verify <report.md>...",
		Short: "Check the metadata hash and table layout of signed markdown reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			v := validator.NewMarkdownValidator(validator.Options{ExpectedSections: sections})
			failed := 0

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				meta, err := metadata.Verify(string(content))
				if err != nil {
					failed++

					fmt.Fprintf(out, "❌ %s: %v\n", path, err)

					continue
				}

				result := v.ValidateMarkdown(string(content))
				if !result.IsValid {
					failed++

					fmt.Fprintf(out, "❌ %s: %s\n", path, result)
					result.WriteErrors(out)

					continue
				}

				fmt.Fprintf(out, "✅ %s: run %s, reference date %s, %d employees\n",
					path, meta.RunID, meta.ReferenceDate, meta.Rows)
				result.WriteWarnings(out)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d reports failed verification", failed, len(args))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&sections, "sections", 0, "required number of query sections (0 accepts any)")

	return cmd
}

var errNeedsFormatting = errors.New("files need formatting")

func newFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt <report.md>...",
		Short: "Realign markdown report tables, re-signing signed reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pending := 0

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				formatted, err := formatter.FormatMarkdown(string(content))
				if err != nil {
					return fmt.Errorf("failed to format %s: %w", path, err)
				}

				if formatted == string(content) {
					continue
				}

				pending++

				if check {
					fmt.Fprintf(cmd.OutOrStdout(), "⚠️  %s needs formatting\n", path)
					continue
				}

				if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "✅ Formatted %s\n", path)
			}

			if check && pending > 0 {
				return fmt.Errorf("%w: %d", errNeedsFormatting, pending)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "report files that need formatting without writing them")

	return cmd
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}

			if err := config.Default().SaveConfig(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", args[0])

			return nil
		},
	}
}
