package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Tee copies stdin to stdout and every named file.
func Tee(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tee [OPTION]... [FILE]...",
		Short: "Copy standard input to each FILE, and also to standard output.",
	}
	appending := cmd.Flags().BoolLong("append", 'a', "append to the given FILEs, do not overwrite")
	cmd.Flags().BoolLong("ignore-interrupts", 'i', "ignore interrupt signals")

	return cmd.Run(virtOS, func() int {
		content := vos.ReadAllStdin(virtOS)
		fsys := virtOS.FS()

		exitCode := 0
		for _, name := range cmd.Flags().Args() {
			p := virtOS.Resolve(name)
			var err error
			if *appending {
				err = fsys.Append(p, content)
			} else {
				err = fsys.Write(p, content)
			}
			if err != nil {
				cmd.LogProgramError(virtOS, fileError(name, err))
				exitCode = 1
			}
		}

		fmt.Fprint(virtOS.Stdout(), content)
		return exitCode
	})
}

var _ vos.ProcessFunc = Tee

func init() {
	mustAddUsrBinCmd("tee", Tee)
}
