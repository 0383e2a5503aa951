package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// No-op commands.
type NoOpCommand struct {
	Name     string
	Use      string
	Short    string
	Stdout   string
	ExitCode int
}

// Convert the no-op command description to a functioning command.
func (c *NoOpCommand) ToCommand() vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:   c.Use,
			Short: c.Short,
			// Never bail, even if args are bad.
			NeverBail: true,
		}
		// Only --help is recognized so things like "true -h" stay silent.
		cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

		return cmd.Run(virtOS, func() int {
			if c.Stdout != "" {
				w := virtOS.Stdout()
				fmt.Fprintln(w, c.Stdout)
			}

			return c.ExitCode
		})
	}
}

var noOpBinCommands = []NoOpCommand{
	{
		Name:  "true",
		Use:   "true",
		Short: "Do nothing, successfully.",
	},
	{
		Name:     "false",
		Use:      "false",
		Short:    "Do nothing, unsuccessfully.",
		ExitCode: 1,
	},
	{
		Name:  "jobs",
		Use:   "jobs [-lnprs] [jobspec ...]",
		Short: "Display status of jobs, commands never run in the background.",
	},
	{
		Name:     "bg",
		Use:      "bg [job_spec ...]",
		Short:    "Move jobs to the background.",
		Stdout:   "bg: current: no such job",
		ExitCode: 1,
	},
	{
		Name:     "fg",
		Use:      "fg [job_spec]",
		Short:    "Move job to the foreground.",
		Stdout:   "fg: current: no such job",
		ExitCode: 1,
	},
}

var noOpUsrBinCommands = []NoOpCommand{
	{
		Name:   "nproc",
		Use:    "nproc [OPTION]...",
		Short:  "Print the number of processing units available.",
		Stdout: fmt.Sprint(cpuCount),
	},
}

func init() {
	for i := range noOpBinCommands {
		cmd := noOpBinCommands[i]
		mustAddBinCmd(cmd.Name, cmd.ToCommand())
	}

	for i := range noOpUsrBinCommands {
		cmd := noOpUsrBinCommands[i]
		mustAddUsrBinCmd(cmd.Name, cmd.ToCommand())
	}
}
