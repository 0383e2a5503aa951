package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// writeText builds write and append, the text arguments are taken verbatim
// so they may start with a dash.
func writeText(appending bool) vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		name := commandName(virtOS)
		args := virtOS.Args()[1:]
		if len(args) < 2 {
			fmt.Fprintf(virtOS.Stderr(), "%s: usage: %s <file> <text...>\n", name, name)
			return 1
		}

		p := virtOS.Resolve(args[0])
		text := strings.Join(args[1:], " ") + "\n"

		var err error
		if appending {
			err = virtOS.FS().Append(p, text)
		} else {
			err = virtOS.FS().Write(p, text)
		}
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "%s: %s: %s\n", name, args[0], vfs.Describe(err))
			return 1
		}
		return 0
	}
}

var (
	Write  = writeText(false)
	Append = writeText(true)
)

// Editor stands in for full screen editors. Sessions are line based so it
// shows the file and explains how to change it.
func Editor(virtOS vos.VOS) int {
	name := commandName(virtOS)
	cmd := &SimpleCommand{
		Use:   name + " FILE",
		Short: "Text editor, non-interactive in mash.",
		// Editors take many flags, none change what gets shown.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show this help and exit")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintf(virtOS.Stderr(), "%s: no file specified\n", name)
			return 1
		}

		fsys := virtOS.FS()
		p := virtOS.Resolve(args[0])
		if fsys.IsDir(p) {
			fmt.Fprintf(virtOS.Stderr(), "%s: %s: Is a directory\n", name, args[0])
			return 1
		}
		if !fsys.Exists(p) {
			if err := fsys.Touch(p); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "%s: %s: %s\n", name, args[0], vfs.Describe(err))
				return 1
			}
		}

		content, _ := fsys.Read(p)
		if content == "" {
			content = "(empty file)"
		}

		w := virtOS.Stdout()
		fmt.Fprintf(w, "[%s is not interactive in %s. File contents:\n", name, virtOS.ShellName())
		fmt.Fprintln(w, content)
		fmt.Fprintf(w, "Use redirection to write: echo 'text' > %s]\n", args[0])
		return 0
	})
}

var _ vos.ProcessFunc = Editor

func init() {
	mustAddBinCmd("write", Write)
	mustAddBinCmd("append", Append)
	mustAddBinCmd("nano", Editor)
	mustAddBinCmd("vi", Editor)
	mustAddBinCmd("vim", Editor)
}
