package cmd

import (
	"io/ioutil"
	"log"

	"github.com/josephlewis42/mathshell/core"
	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/spf13/cobra"
)

var (
	execFlags   machineFlags
	execCommand string
)

// execCmd runs a script without line editing
var execCmd = &cobra.Command{
	Use:   "exec [SCRIPT]",
	Short: "Run a script or a single line and exit with its status.",
	Long: `Run each line of SCRIPT against the machine and exit with the status of
the last one. The script is read from stdin if SCRIPT is "-" or missing.`,
	Example: `  mathshell exec -c 'echo hello > greeting; cat greeting'
  mathshell exec setup.sh
  echo 'ls /etc' | mathshell exec --ephemeral`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		script := execCommand
		if !cmd.Flags().Changed("command") {
			var data []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				data, err = ioutil.ReadFile(args[0])
			} else {
				data, err = ioutil.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			script = string(data)
		}

		execLogger := log.New(cmd.ErrOrStderr(), "[exec] ", 0)
		cfg, err := execFlags.config()
		if err != nil {
			return err
		}

		machine, closeMachine, err := execFlags.openMachine(cmd.Context(), cfg, execLogger, vos.PTY{Width: 80, Height: 24})
		if err != nil {
			return err
		}
		code, err := core.RunScript(machine, script, cmd.OutOrStdout())
		closeMachine()
		if err != nil {
			return err
		}
		return exitWith(cmd, code)
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execFlags.register(execCmd)
	execCmd.Flags().StringVarP(&execCommand, "command", "c", "", "Run LINE instead of reading a script.")
}
