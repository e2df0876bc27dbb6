package main

import (
	"fmt"

	"github.com/javajack/casecells"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <input> [output]",
		Short: "Fold each case's step rows into its first row",
		Long: `Prefixes every step and expected result with the delimiter, concatenates
the steps of each case onto the row that carries its case name, and removes
the rows left blank. The input is overwritten when no output is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runMerge,
	}
}

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <input> [output]",
		Short: "Expand delimited step cells into one row per step",
		Long: `Splits step and expected-result cells at the delimiter, one row per
segment, then merges equal adjacent cells in the module, case name and
precondition columns and sets a uniform row height.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSplit,
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <requirement.json> <output>",
		Short: "Build a test-case sheet from a JSON requirement document",
		Args:  cobra.ExactArgs(2),
		RunE:  runGenerate,
	}
}

func outputArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

func runMerge(cmd *cobra.Command, args []string) error {
	report, err := casecells.MergeFile(args[0], outputArg(args), options()...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "merged %d cases into %s (%d rows)\n",
		len(report.Stats.LeadRows), report.Output, report.Rows)
	return nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	report, err := casecells.SplitFile(args[0], outputArg(args), options()...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "split %d rows into %s (%d rows, %d merged ranges)\n",
		report.Stats.Expanded, report.Output, report.Rows, len(report.Stats.Regions))
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	report, err := casecells.GenerateFile(args[0], args[1], options()...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "requirement: %s %s\n", report.ReqID, report.ReqTitle)
	fmt.Fprintf(out, "test cases:  %d\n", report.TestcaseCount)
	fmt.Fprintf(out, "modules:     %d\n", len(report.Modules))
	fmt.Fprintf(out, "scenarios:   %d\n", report.TotalScenarios)
	fmt.Fprintf(out, "saved to %s\n", args[1])
	return nil
}
