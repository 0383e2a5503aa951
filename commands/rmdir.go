package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Rmdir implements a POSIX rmdir command.
func Rmdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rmdir [OPTION...] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove parents that become empty")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every deleted directory")

	return cmd.Run(virtOS, func() int {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "rmdir: missing operand")
			return 1
		}

		fsys := virtOS.FS()
		for _, dir := range directories {
			target := virtOS.Resolve(dir)
			if err := fsys.Rmdir(target); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "rmdir: failed to remove '%s': %s\n", dir, vfs.Describe(err))
				return 1
			}
			if *verbose {
				fmt.Fprintf(virtOS.Stdout(), "rmdir: removing directory, '%s'\n", target)
			}

			if !*parents {
				continue
			}
			for parent := vfs.Dir(target); parent != vfs.Root; parent = vfs.Dir(parent) {
				if fsys.Rmdir(parent) != nil {
					break
				}
				if *verbose {
					fmt.Fprintf(virtOS.Stdout(), "rmdir: removing directory, '%s'\n", parent)
				}
			}
		}
		return 0
	})
}

var _ vos.ProcessFunc = Rmdir

func init() {
	mustAddBinCmd("rmdir", Rmdir)
}
