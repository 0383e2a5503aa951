package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benhoyt/goawk/interp"
	"github.com/benhoyt/goawk/parser"
	"github.com/josephlewis42/mathshell/core/vos"
)

var awkAssignment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Awk runs an awk program. Input comes from the virtual filesystem, the
// interpreter itself can't touch the host: no system(), no pipes and no
// redirections to real files.
func Awk(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "awk [-F fs] [-v var=value] [-f progfile | 'prog'] [file ...]",
		Short: "Pattern scanning and text processing language.",
	}
	flags := cmd.Flags()
	fieldSep := flags.StringLong("field-separator", 'F', "", "use FS for the input field separator")
	var assigns stringList
	flags.FlagLong(&assigns, "assign", 'v', "assign VALUE to VAR before the program starts")
	var progFiles stringList
	flags.FlagLong(&progFiles, "file", 'f', "read the program source from FILE")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()

		var src string
		if len(progFiles) > 0 {
			var parts []string
			for _, name := range progFiles {
				text, err := readFile(virtOS, name)
				if err != nil {
					cmd.LogProgramError(virtOS, err)
					return 2
				}
				parts = append(parts, text)
			}
			src = strings.Join(parts, "\n")
		} else {
			if len(args) == 0 {
				fmt.Fprintf(virtOS.Stderr(), "usage: %s\n", cmd.Use)
				return 2
			}
			src, args = args[0], args[1:]
		}

		prog, err := parser.ParseProgram([]byte(src), nil)
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "awk: %v\n", err)
			return 2
		}

		var vars []string
		if *fieldSep != "" {
			fs := *fieldSep
			if fs == "t" {
				fs = "\t"
			}
			vars = append(vars, "FS", unescape(fs))
		}
		for _, a := range assigns {
			name, value, ok := strings.Cut(a, "=")
			if !ok {
				fmt.Fprintf(virtOS.Stderr(), "awk: invalid -v argument: %s\n", a)
				return 2
			}
			vars = append(vars, name, unescape(value))
		}

		// Operands are read here and concatenated, name=value operands are
		// applied up front.
		var files []string
		for _, arg := range args {
			if awkAssignment.MatchString(arg) {
				name, value, _ := strings.Cut(arg, "=")
				vars = append(vars, name, unescape(value))
				continue
			}
			files = append(files, arg)
		}
		input, exitCode := cmd.readInputs(virtOS, files)
		if exitCode != 0 {
			return 2
		}
		if len(files) == 1 && files[0] != "-" {
			vars = append(vars, "FILENAME", files[0])
		}

		status, err := interp.ExecProgram(prog, &interp.Config{
			Argv0:        "awk",
			Stdin:        strings.NewReader(input),
			Output:       virtOS.Stdout(),
			Error:        virtOS.Stderr(),
			Vars:         vars,
			Environ:      awkEnviron(virtOS),
			NoExec:       true,
			NoFileWrites: true,
			NoFileReads:  true,
		})
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "awk: %v\n", err)
			return 2
		}
		return status
	})
}

// awkEnviron lists the exported variables as the name, value pairs goawk
// expects.
func awkEnviron(virtOS vos.VOS) []string {
	env := []string{}
	for _, kv := range exported(virtOS.Environ()) {
		name, value, _ := strings.Cut(kv, "=")
		env = append(env, name, value)
	}
	return env
}

var _ vos.ProcessFunc = Awk

func init() {
	mustAddUsrBinCmd("awk", Awk)
}
