package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Reset reinitializes the terminal, for the host that means clearing it.
func Reset(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "reset",
		Short: "Initialize the terminal.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		fmt.Fprint(virtOS.Stdout(), shell.SentinelClear)
		return 0
	})
}

var _ vos.ProcessFunc = Reset

func init() {
	mustAddUsrBinCmd("reset", Reset)
}
