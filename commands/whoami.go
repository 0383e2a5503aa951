package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Whoami implements the POSIX whoami command.
func Whoami(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "whoami [OPTION]...",
		Short: "Print the current user.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		user := virtOS.Getenv("USER")
		if user == "" {
			user = virtOS.Username()
		}
		fmt.Fprintln(virtOS.Stdout(), user)
		return 0
	})
}

var _ vos.ProcessFunc = Whoami

func init() {
	mustAddUsrBinCmd("whoami", Whoami)
}
