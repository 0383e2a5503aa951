package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Mkdir implements a POSIX mkdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [OPTION...] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	makeParents := cmd.Flags().BoolLong("parents", 'p', "make parents if needed, existing directories aren't an error")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every created directory")

	return cmd.Run(virtOS, func() int {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "mkdir: missing operand")
			return 1
		}

		op := virtOS.FS().Mkdir
		if *makeParents {
			op = virtOS.FS().MkdirP
		}

		anyFailed := false
		for _, dir := range directories {
			target := virtOS.Resolve(dir)
			err := op(target)
			switch {
			case err != nil:
				fmt.Fprintf(virtOS.Stderr(), "mkdir: cannot create directory '%s': %s\n", dir, vfs.Describe(err))
				anyFailed = true

			case *verbose:
				fmt.Fprintf(virtOS.Stdout(), "mkdir: created directory '%s'\n", target)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ vos.ProcessFunc = Mkdir

func init() {
	mustAddBinCmd("mkdir", Mkdir)
}
