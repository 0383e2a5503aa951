package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Rm implements a POSIX rm command.
func Rm(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rm [OPTION...] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and their contents recursively")
	recursiveAlias := cmd.Flags().Bool('R', "equivalent to -r")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files and arguments, never prompt")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "explain what is being done")
	cmd.Flags().Bool('i', "prompt before every removal (ignored)")

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		if len(files) == 0 {
			if *force {
				return 0
			}
			fmt.Fprintln(virtOS.Stderr(), "rm: missing operand")
			return 1
		}

		anyFailed := false
		for _, file := range files {
			target := virtOS.Resolve(file)
			err := virtOS.FS().Rm(target, *recursive || *recursiveAlias)
			switch {
			case errors.Is(err, fs.ErrNotExist) && *force:
				// Not an error.
			case err != nil:
				fmt.Fprintf(virtOS.Stderr(), "rm: cannot remove '%s': %s\n", file, vfs.Describe(err))
				anyFailed = true
			case *verbose:
				fmt.Fprintf(virtOS.Stdout(), "removed '%s'\n", target)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ vos.ProcessFunc = Rm

func init() {
	mustAddBinCmd("rm", Rm)
}
