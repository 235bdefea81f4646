package cmd

import (
	"fmt"

	"github.com/mark3labs/notekit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration notekit would run with, after merging the
config file, NOTEKIT_* environment variables and flags.

Examples:
  notekit config
  NOTEKIT_ENDPOINT=https://notes.example.com/create-note notekit config`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.Source)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
