package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gridlabs/tablecalc-cli/rst"
	"github.com/gridlabs/tablecalc-cli/table"
	"github.com/spf13/cobra"
)

var (
	resolveOutput    string
	resolveInPlace   bool
	resolveVerify    bool
	resolveShowCells bool
	resolveAllTables bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Resolve table formulas; use --verify for non-mutating checks",
	Long: `Resolve embedded ={...} formulas in the grid tables of a
reStructuredText document and replace them with computed values.

Behavior:
  - By default only tables inside ".. simplespreadsheet::" directives are
    resolved; the directive block is replaced by the computed table.
  - With --all-tables, every grid table in the document is resolved.
  - Pass "-" to read the document from stdin.
  - The resolved document goes to stdout unless --output or --in-place is set.
  - With --verify, nothing is written; returns exit code 2 when resolving
    would change the document or a formula fails.
  - Use --show-cells to print every resolved cell with its formula and value.
  - Each table is computed independently; coordinates restart at a1.

Use --json for machine-readable results.

Examples:
  tablecalc resolve report.rst
  tablecalc resolve report.rst --in-place
  tablecalc resolve report.rst -o resolved.rst --show-cells
  tablecalc resolve report.rst --verify
  cat report.rst | tablecalc resolve - --all-tables`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Write the resolved document to this path")
	resolveCmd.Flags().BoolVar(&resolveInPlace, "in-place", false, "Overwrite the input file with the resolved document")
	resolveCmd.Flags().BoolVar(&resolveVerify, "verify", false, "Check only: do not write; exit 2 if resolving would change the document")
	resolveCmd.Flags().BoolVar(&resolveShowCells, "show-cells", false, "Print resolved cells with formulas and computed values")
	resolveCmd.Flags().BoolVar(&resolveAllTables, "all-tables", false, "Resolve every grid table, not only directive content")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	path := args[0]

	if resolveInPlace && resolveOutput != "" {
		return fmt.Errorf("--in-place and --output are mutually exclusive")
	}
	if resolveInPlace && path == "-" {
		return fmt.Errorf("--in-place requires a file argument, not stdin")
	}

	src, err := readDocument(path)
	if err != nil {
		return err
	}

	depth, err := resolveMaxDepth()
	if err != nil {
		return err
	}
	name, err := resolveDirectiveName()
	if err != nil {
		return err
	}

	out, stats, perr := rst.Process(src, rst.Options{
		Directive: name,
		AllTables: resolveAllTables,
		MaxDepth:  depth,
	})

	if resolveVerify {
		return reportVerify(src, out, stats, perr)
	}
	if perr != nil {
		return perr
	}

	target := ""
	switch {
	case resolveInPlace:
		target = path
	case resolveOutput != "":
		target = resolveOutput
	}
	if target != "" {
		if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing resolved document: %w", err)
		}
	}

	if jsonOutput {
		payload := map[string]any{
			"tables":   stats.Tables,
			"cells":    stats.Cells,
			"formulas": stats.Formulas,
		}
		if resolveShowCells {
			payload["values"] = stats.Values
		}
		// Without a file target the document itself rides in the envelope,
		// keeping stdout valid JSON.
		if target == "" {
			payload["document"] = out
		}
		return jsonPrint(payload)
	}

	if target == "" {
		fmt.Print(out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
	}

	// Human summary goes to stderr so a stdout document stays clean.
	if resolveShowCells {
		for _, v := range stats.Values {
			if !v.HadFormula {
				continue
			}
			fmt.Fprintf(os.Stderr, "%-8s %-30s %s\n", v.Coord, v.Formula, table.FormatValue(v.Value))
		}
	}
	fmt.Fprintf(os.Stderr, "%s, %s resolved\n",
		countNoun(stats.Tables, "table"), countNoun(stats.Formulas, "formula"))
	return nil
}

// reportVerify never writes. Any difference between input and output, or any
// resolution failure, is reported and exits 2.
func reportVerify(src, out string, stats rst.Stats, perr error) error {
	if perr != nil {
		if jsonOutput {
			_ = jsonPrint(map[string]any{"ok": false, "error": perr.Error()})
		} else {
			fmt.Fprintln(os.Stderr, perr)
		}
		return &ExitError{Code: 2}
	}
	changed := out != src
	if jsonOutput {
		if err := jsonPrint(map[string]any{
			"ok":       !changed,
			"changed":  changed,
			"tables":   stats.Tables,
			"formulas": stats.Formulas,
		}); err != nil {
			return err
		}
	} else if changed {
		fmt.Fprintf(os.Stderr, "document is stale: %s would be resolved\n",
			countNoun(stats.Formulas, "formula"))
	} else {
		fmt.Fprintln(os.Stderr, "document is up to date")
	}
	if changed {
		return &ExitError{Code: 2}
	}
	return nil
}

func readDocument(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(b), nil
}
