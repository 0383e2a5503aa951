package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

const sessionUID = 1000

// Id implements a fake id command.
func Id(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "id [OPTION]... [USER]",
		Short: "Print user and group information.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}
	userOnly := cmd.Flags().BoolLong("user", 'u', "print only the effective user ID")
	groupOnly := cmd.Flags().BoolLong("group", 'g', "print only the effective group ID")
	name := cmd.Flags().BoolLong("name", 'n', "print a name instead of a number, for -ug")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		user := virtOS.Username()

		switch {
		case (*userOnly || *groupOnly) && *name:
			fmt.Fprintln(w, user)
		case *userOnly || *groupOnly:
			fmt.Fprintln(w, sessionUID)
		default:
			fmt.Fprintf(w, "uid=%[1]d(%[2]s) gid=%[1]d(%[2]s) groups=%[1]d(%[2]s)\n", sessionUID, user)
		}
		return 0
	})
}

var _ vos.ProcessFunc = Id

func init() {
	mustAddUsrBinCmd("id", Id)
}
