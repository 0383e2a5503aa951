package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/mathshell/core/vos"
)

// xargsItems splits input into arguments. Without a delimiter, quotes and
// backslashes are honored the way the shell does.
func xargsItems(input, delim string, nullSep, perLine bool) ([]string, error) {
	var parts []string
	switch {
	case nullSep:
		parts = strings.Split(input, "\x00")
	case delim != "":
		parts = strings.Split(input, delim)
	case perLine:
		for _, line := range splitLines(input) {
			if line = strings.TrimLeft(line, " \t"); line != "" {
				parts = append(parts, line)
			}
		}
		return parts, nil
	default:
		return shlex.Split(input, true)
	}

	var out []string
	for i, p := range parts {
		if p == "" || (i == len(parts)-1 && p == "\n") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Xargs builds command lines from stdin and runs them.
func Xargs(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "xargs [OPTION]... COMMAND [INITIAL-ARGS]...",
		Short: "Run COMMAND with arguments INITIAL-ARGS and more arguments read from input.",
	}
	flags := cmd.Flags()
	replace := flags.StringLong("replace", 'I', "", "replace R in INITIAL-ARGS with names read from standard input")
	maxArgs := flags.IntLong("max-args", 'n', 0, "use at most MAX-ARGS arguments per command line")
	delim := flags.StringLong("delimiter", 'd', "", "items in input stream are separated by CHARACTER")
	nullSep := flags.BoolLong("null", '0', "items are separated by a null, not whitespace")
	trace := flags.BoolLong("verbose", 't', "print commands before executing them")
	noRunIfEmpty := flags.BoolLong("no-run-if-empty", 'r', "if there are no arguments, then do not run COMMAND")
	eof := flags.StringLong("eof", 'E', "", "set logical EOF string")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		if len(args) == 0 {
			args = []string{"echo"}
		}
		name, base := args[0], args[1:]

		input := vos.ReadAllStdin(virtOS)
		if *eof != "" {
			if idx := strings.Index(input, *eof); idx >= 0 {
				input = input[:idx]
			}
		}
		if *delim != "" {
			*delim = unescape(*delim)
		}

		items, err := xargsItems(input, *delim, *nullSep, *replace != "")
		switch {
		case errors.Is(err, shlex.ErrNoClosing):
			fmt.Fprintln(virtOS.Stderr(), "xargs: unmatched quote; by default quotes are special to xargs unless you use the -0 option")
			return 1
		case err != nil:
			fmt.Fprintf(virtOS.Stderr(), "xargs: %v\n", err)
			return 1
		}
		if len(items) == 0 && (*noRunIfEmpty || *replace != "") {
			return 0
		}

		var calls [][]string
		switch {
		case *replace != "":
			for _, item := range items {
				call := make([]string, len(base))
				for i, arg := range base {
					call[i] = strings.ReplaceAll(arg, *replace, item)
				}
				calls = append(calls, call)
			}
		case *maxArgs > 0:
			for i := 0; i < len(items); i += *maxArgs {
				end := i + *maxArgs
				if end > len(items) {
					end = len(items)
				}
				calls = append(calls, append(append([]string{}, base...), items[i:end]...))
			}
			if len(items) == 0 {
				calls = append(calls, base)
			}
		default:
			calls = append(calls, append(append([]string{}, base...), items...))
		}

		exitCode := 0
		for _, call := range calls {
			if *trace {
				fmt.Fprintln(virtOS.Stderr(), strings.Join(append([]string{name}, call...), " "))
			}
			res := virtOS.Invoke(name, call, nil)
			fmt.Fprint(virtOS.Stdout(), res.Output)
			switch {
			case res.ExitCode == 127 || res.ExitCode == 126:
				return res.ExitCode
			case res.ExitCode == 255:
				fmt.Fprintf(virtOS.Stderr(), "xargs: %s: exited with status 255; aborting\n", name)
				return 124
			case res.ExitCode != 0:
				exitCode = 123
			}
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Xargs

func init() {
	mustAddUsrBinCmd("xargs", Xargs)
}
