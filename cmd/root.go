package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gridlabs/tablecalc-cli/config"
	"github.com/gridlabs/tablecalc-cli/rst"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	jsonOutput bool
	maxDepth   int
	directive  string
)

var rootCmd = &cobra.Command{
	Use:           "tablecalc",
	Short:         "tablecalc — resolve spreadsheet formulas in reStructuredText tables",
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Maximum formula reference depth, 0 for the default (env: TABLECALC_MAX_DEPTH)")
	rootCmd.PersistentFlags().StringVar(&directive, "directive", "", "Directive name marking resolvable tables (env: TABLECALC_DIRECTIVE)")
}

// resolveMaxDepth picks the reference-depth bound: flag, then environment,
// then config file. Zero means the engine default.
func resolveMaxDepth() (int, error) {
	if maxDepth != 0 {
		if maxDepth < 0 {
			return 0, fmt.Errorf("--max-depth must be > 0")
		}
		return maxDepth, nil
	}
	if v := os.Getenv("TABLECALC_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid TABLECALC_MAX_DEPTH %q: want a positive integer", v)
		}
		return n, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("loading config: %w", err)
	}
	return cfg.MaxDepth, nil
}

// resolveDirectiveName picks the directive name the same way. Empty means
// rst.DefaultDirective.
func resolveDirectiveName() (string, error) {
	if directive != "" {
		return directive, nil
	}
	if v := os.Getenv("TABLECALC_DIRECTIVE"); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	if cfg.Directive != "" {
		return cfg.Directive, nil
	}
	return rst.DefaultDirective, nil
}

func Execute() error {
	return rootCmd.Execute()
}
