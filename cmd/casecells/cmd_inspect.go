package main

import (
	"fmt"
	"os"

	"github.com/javajack/casecells"
	"github.com/javajack/casecells/internal/render"
	"github.com/spf13/cobra"
)

var (
	inspectRows  int
	inspectAll   bool
	inspectWidth int
	checkFor     string
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input> [output]",
		Short: "Show a sheet's header roles and first rows",
		Long: `Prints the sheet's header with the role each column resolves to and the
first data rows as a table. With an output path the same overview is written
there as plain text, one line per non-empty row, without truncation.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runInspect,
	}
	cmd.Flags().IntVar(&inspectRows, "rows", 20, "number of data rows to show")
	cmd.Flags().BoolVar(&inspectAll, "all", false, "show every data row")
	cmd.Flags().IntVar(&inspectWidth, "width", render.DefaultCellWidth, "truncate cells to this display width")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <input>",
		Short: "Check that a sheet's header resolves every required column",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().StringVar(&checkFor, "for", "merge", "transform to check for: merge or split")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	w, err := casecells.OpenWorkbook(args[0], options()...)
	if err != nil {
		return err
	}
	defer w.Close()

	n := inspectRows
	if inspectAll {
		n = -1
	}
	if len(args) < 2 {
		fmt.Fprint(cmd.OutOrStdout(), render.Sheet(w.Table(), cfg.ResolverKeywords(), n, inspectWidth))
		return nil
	}

	text := casecells.Describe(w.Table(), cfg.ResolverKeywords(), n)
	if err := os.WriteFile(args[1], []byte(text), 0o644); err != nil {
		return &casecells.PersistError{Path: args[1], Err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "described %s into %s\n", w.Sheet(), args[1])
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	var required []casecells.Role
	switch checkFor {
	case "merge":
		required = casecells.MergeRequired
	case "split":
		required = casecells.SplitRequired
	default:
		return fmt.Errorf("--for must be merge or split, got %q", checkFor)
	}

	w, err := casecells.OpenWorkbook(args[0], options()...)
	if err != nil {
		return err
	}
	defer w.Close()

	issues := casecells.ValidateHeader(w.Table().Header, cfg.ResolverKeywords(), required...)
	fmt.Fprint(cmd.OutOrStdout(), render.Issues(issues))
	if casecells.HasErrors(issues) {
		return fmt.Errorf("%s: header is not usable for %s", args[0], checkFor)
	}
	return nil
}
