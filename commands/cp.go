package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// destination returns where src lands when copied or moved to dst: inside
// dst if it's a directory, otherwise dst itself.
func destination(fsys *vfs.VFS, src, dst string) string {
	if fsys.IsDir(dst) {
		return vfs.Join(dst, vfs.Base(src))
	}
	return dst
}

// Cp implements a POSIX cp command.
func Cp(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cp [OPTION...] SOURCE... DEST",
		Short: "Copy SOURCE to DEST, or multiple SOURCE(s) to DIRECTORY.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "copy directories recursively")
	recursiveAlias := cmd.Flags().Bool('R', "equivalent to -r")
	preserve := cmd.Flags().BoolLong("preserve", 'p', "preserve modification times")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "explain what is being done")
	cmd.Flags().BoolLong("force", 'f', "overwrite without prompting (always on)")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		switch len(args) {
		case 0:
			fmt.Fprintln(virtOS.Stderr(), "cp: missing file operand")
			return 1
		case 1:
			fmt.Fprintf(virtOS.Stderr(), "cp: missing destination file operand after '%s'\n", args[0])
			return 1
		}

		fsys := virtOS.FS()
		sources, dst := args[:len(args)-1], virtOS.Resolve(args[len(args)-1])
		if len(sources) > 1 && !fsys.IsDir(dst) {
			fmt.Fprintf(virtOS.Stderr(), "cp: target '%s' is not a directory\n", args[len(args)-1])
			return 1
		}

		anyFailed := false
		for _, src := range sources {
			srcPath := virtOS.Resolve(src)
			stat, err := fsys.Stat(srcPath)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "cp: cannot stat '%s': %s\n", src, vfs.Describe(err))
				anyFailed = true
				continue
			}
			if stat.IsDir() && !*recursive && !*recursiveAlias {
				fmt.Fprintf(virtOS.Stderr(), "cp: -r not specified; omitting directory '%s'\n", src)
				anyFailed = true
				continue
			}

			dest := destination(fsys, srcPath, dst)
			if err := fsys.Copy(srcPath, dest); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "cp: cannot copy '%s' to '%s': %s\n", src, args[len(args)-1], vfs.Describe(err))
				anyFailed = true
				continue
			}

			fsys.Walk(srcPath, func(p string, n *vfs.Node) error {
				copied := dest + strings.TrimPrefix(p, srcPath)
				if *preserve {
					fsys.SetMtime(copied, n.Mtime)
				}
				if *verbose {
					fmt.Fprintf(virtOS.Stdout(), "'%s' -> '%s'\n", p, copied)
				}
				return nil
			})
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

// Mv implements a POSIX mv command.
func Mv(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "mv [OPTION...] SOURCE... DEST",
		Short: "Rename SOURCE to DEST, or move SOURCE(s) to DIRECTORY.",
	}

	verbose := cmd.Flags().BoolLong("verbose", 'v', "explain what is being done")
	cmd.Flags().BoolLong("force", 'f', "don't prompt before overwriting (always on)")
	cmd.Flags().BoolLong("interactive", 'i', "prompt before overwrite (ignored)")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		switch len(args) {
		case 0:
			fmt.Fprintln(virtOS.Stderr(), "mv: missing file operand")
			return 1
		case 1:
			fmt.Fprintf(virtOS.Stderr(), "mv: missing destination file operand after '%s'\n", args[0])
			return 1
		}

		fsys := virtOS.FS()
		sources, dst := args[:len(args)-1], virtOS.Resolve(args[len(args)-1])
		if len(sources) > 1 && !fsys.IsDir(dst) {
			fmt.Fprintf(virtOS.Stderr(), "mv: target '%s' is not a directory\n", args[len(args)-1])
			return 1
		}

		anyFailed := false
		for _, src := range sources {
			srcPath := virtOS.Resolve(src)
			dest := destination(fsys, srcPath, dst)
			if err := fsys.Move(srcPath, dest); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "mv: cannot move '%s' to '%s': %s\n", src, args[len(args)-1], vfs.Describe(err))
				anyFailed = true
				continue
			}
			if *verbose {
				fmt.Fprintf(virtOS.Stdout(), "renamed '%s' -> '%s'\n", srcPath, dest)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ vos.ProcessFunc = Cp
var _ vos.ProcessFunc = Mv

func init() {
	mustAddBinCmd("cp", Cp)
	mustAddBinCmd("mv", Mv)
}
