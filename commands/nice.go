package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Nice runs a command, every process has the same priority so the
// adjustment is only validated.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/nice.html
func Nice(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "nice [OPTION] [COMMAND [ARG]...]",
		Short: "Run command with adjusted niceness.",
	}
	cmd.SetArgs(rewriteObsoleteCount(virtOS.Args()))
	_ = cmd.Flags().IntLong("adjustment", 'n', 10, "add integer N to the niceness")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()

		if len(args) == 0 {
			fmt.Fprintln(virtOS.Stdout(), "0")
			return 0
		}

		res := virtOS.Invoke(args[0], args[1:], stdinString(virtOS))
		return forward(virtOS, res)
	})
}

var _ vos.ProcessFunc = Nice

func init() {
	mustAddUsrBinCmd("nice", Nice)
}
