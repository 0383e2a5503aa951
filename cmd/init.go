package cmd

import (
	"log"

	"github.com/josephlewis42/mathshell/core/config"
	"github.com/spf13/cobra"
)

// initCmd initializes the configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration in the --config directory.",
	Long: `Write a default config.yaml and SSH host key and create the data and
recordings directories. Existing files are kept.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		_, err := config.Initialize(cfgPath, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
