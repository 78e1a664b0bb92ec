package cmd

import (
	"fmt"
	"strings"

	"github.com/gridlabs/tablecalc-cli/sheet"
	"github.com/gridlabs/tablecalc-cli/table"
	"github.com/spf13/cobra"
)

var evalCells []string

var evalCmd = &cobra.Command{
	Use:   "eval <formula>",
	Short: "Evaluate a single formula against an ad-hoc sheet",
	Long: `Evaluate one formula the way a table cell would, without a document.

Inputs:
  - <formula> is spreadsheet text such as "a1 * 2" or "sum(\"a1:a4\")".
  - Each --cell seeds a coordinate before evaluation, e.g. --cell a1=2.
    Seeds may themselves be formulas: --cell b1='a1 + 1'.

Behavior:
  - Unset coordinates evaluate to 0.
  - The relative markers @ and # have no meaning outside a table and are
    not substituted.

Examples:
  tablecalc eval '2 + 3 * 4'
  tablecalc eval 'a1 / a2' --cell a1=5 --cell a2=2
  tablecalc eval 'sum("a1:a3")' --cell a1=1 --cell a2=2 --cell a3=3`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringArrayVar(&evalCells, "cell", nil, "Seed a cell as coord=formula (repeatable)")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	formula := args[0]

	depth, err := resolveMaxDepth()
	if err != nil {
		return err
	}

	s := sheet.New()
	if depth > 0 {
		s.MaxDepth = depth
	}
	for _, seed := range evalCells {
		coord, f, ok := strings.Cut(seed, "=")
		if !ok || coord == "" {
			return fmt.Errorf("invalid --cell %q: want coord=formula", seed)
		}
		if _, _, err := sheet.DecodeCoord(coord); err != nil {
			return fmt.Errorf("invalid --cell %q: %w", seed, err)
		}
		s.SetFormula(coord, f)
	}

	v, err := s.Eval(formula)
	if err != nil {
		return err
	}

	if jsonOutput {
		return jsonPrint(map[string]any{
			"formula":   formula,
			"value":     v,
			"formatted": table.FormatValue(v),
		})
	}
	fmt.Println(table.FormatValue(v))
	return nil
}
