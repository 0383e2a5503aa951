package commands

import (
	"fmt"
	"path"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// Ln simulates links by copying the target. Symbolic links remember the
// target so readlink and ls -l can show it.
func Ln(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "ln [OPTION...] TARGET [LINK_NAME]",
		Short: "Create a link to TARGET with the name LINK_NAME.",
	}

	symbolic := cmd.Flags().BoolLong("symbolic", 's', "make symbolic links instead of hard links")
	force := cmd.Flags().BoolLong("force", 'f', "remove existing destination files")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "ln: missing file operand")
			return 1
		}

		target := args[0]
		linkName := path.Base(target)
		if len(args) > 1 {
			linkName = args[1]
		}

		fsys := virtOS.FS()
		targetPath := virtOS.Resolve(target)
		linkPath := destination(fsys, targetPath, virtOS.Resolve(linkName))

		stat, err := fsys.Stat(targetPath)
		switch {
		case err != nil:
			fmt.Fprintf(virtOS.Stderr(), "ln: failed to access '%s': %s\n", target, vfs.Describe(err))
			return 1
		case stat.IsDir() && !*symbolic:
			fmt.Fprintf(virtOS.Stderr(), "ln: %s: hard link not allowed for directory\n", target)
			return 1
		}

		if fsys.Exists(linkPath) {
			if !*force {
				fmt.Fprintf(virtOS.Stderr(), "ln: failed to create link '%s': File exists\n", linkName)
				return 1
			}
			if err := fsys.Rm(linkPath, false); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "ln: cannot remove '%s': %s\n", linkName, vfs.Describe(err))
				return 1
			}
		}

		if *symbolic {
			err = fsys.Symlink(target, targetPath, linkPath)
		} else {
			err = fsys.Write(linkPath, stat.Content)
		}
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "ln: failed to create link '%s': %s\n", linkName, vfs.Describe(err))
			return 1
		}
		return 0
	})
}

var _ vos.ProcessFunc = Ln

func init() {
	mustAddBinCmd("ln", Ln)
}
