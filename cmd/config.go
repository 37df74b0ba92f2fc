package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/httplog/internal/app"
	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		// The configuration is not loaded for these commands.
		PersistentPreRun: func(*cobra.Command, []string) {},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Long: `Write a configuration file with the default settings.

The file is written to '` + config.DefaultConfigFilename + `' unless a path is given.
An existing file is kept unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var path string
			if len(args) > 0 {
				path = args[0]
			}

			force, _ := cmd.Flags().GetBool("force")

			if err := app.ExecuteConfigInitCommand(cmd.Context(), path, force); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to write configuration: %v", err)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	configInitCmd.Flags().BoolP(
		"force",
		"f",
		false,
		"overwrite an existing configuration file.")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
