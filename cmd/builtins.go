package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/mathshell/commands"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands available inside the shell
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands available inside the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string

		for _, cmd := range commands.ListBuiltinCommands() {
			builtins = append(builtins, strings.Join(cmd.Names, ", "))
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
