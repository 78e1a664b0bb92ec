package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gridlabs/tablecalc-cli/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Persistent configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the saved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a configuration value",
	Long: `Save a configuration value to the config file.

Keys:
  max-depth   Maximum formula reference depth (positive integer).
  directive   Directive name marking resolvable tables.

Flags and environment variables override the config file.

Examples:
  tablecalc config set max-depth 256
  tablecalc config set directive calc`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if jsonOutput {
		return jsonPrint(cfg)
	}
	fmt.Printf("max-depth  %d\n", cfg.MaxDepth)
	fmt.Printf("directive  %s\n", cfg.Directive)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	switch key {
	case "max-depth":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max-depth must be a positive integer, got %q", value)
		}
		cfg.MaxDepth = n
	case "directive":
		if value == "" {
			return fmt.Errorf("directive must not be empty")
		}
		cfg.Directive = value
	default:
		return fmt.Errorf("unknown config key %q (want max-depth or directive)", key)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ %s saved\n", key)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if err := config.Delete(); err != nil {
		return fmt.Errorf("deleting config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Configuration reset")
	return nil
}
