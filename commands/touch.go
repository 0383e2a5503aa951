package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Touch implements a POSIX touch command.
func Touch(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "touch [OPTION...] FILE...",
		Short: "Update the modification times of files to now, creating missing files.",
	}

	// Ignored flags to make the help look more robust. Access time isn't
	// tracked.
	cmd.Flags().Bool('a', "only change the access time")
	cmd.Flags().Bool('m', "only change the modification time")
	cmd.Flags().String('t', "", "use [[CC]YY]MMDDhhmm[.ss] instead of the current time (ignored)")

	noCreate := cmd.Flags().BoolLong("no-create", 'c', "don't create files")

	return cmd.Run(virtOS, func() int {
		paths := cmd.Flags().Args()
		if len(paths) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "touch: missing file operand")
			return 1
		}

		var anyFailed bool
		for _, path := range paths {
			target := virtOS.Resolve(path)
			if *noCreate && !virtOS.FS().Exists(target) {
				continue
			}
			if err := virtOS.FS().Touch(target); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "touch: cannot touch '%s': %s\n", path, vfs.Describe(err))
				anyFailed = true
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ vos.ProcessFunc = Touch

func init() {
	mustAddBinCmd("touch", Touch)
}
