package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/josephlewis42/mathshell/core/vos"
)

// runScript evaluates script line by line. Execution stops at the first
// line stopped by a sentinel, it's returned so the caller can decide what to
// do with it.
func runScript(virtOS vos.VOS, script string) (out string, exitCode int, sentinel string) {
	var buf strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		res := virtOS.Eval(line)
		exitCode = res.ExitCode
		buf.WriteString(res.Output)
		if res.Sentinel != "" {
			return buf.String(), exitCode, res.Sentinel
		}
	}
	return buf.String(), exitCode, ""
}

// forward passes the result of a command run on the caller's behalf through
// as the caller's own.
func forward(virtOS vos.VOS, res vos.Result) int {
	fmt.Fprint(virtOS.Stdout(), res.Output)
	if res.Sentinel != "" {
		virtOS.Raise(res.Sentinel)
	}
	return res.ExitCode
}

// RunShell is a non-interactive sh. Scripts run in a subshell: changes to
// the working directory, variables and aliases are undone afterwards and
// exit only ends the script.
func RunShell(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sh [-c COMMAND | FILE [ARG...]]",
		Short: "Command interpreter, runs COMMAND, FILE or standard input.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}
	commandFlag := cmd.Flags().String('c', "", "run COMMAND")

	return cmd.Run(virtOS, func() int {
		var script string
		args := cmd.Flags().Args()
		name := commandName(virtOS)

		switch {
		case *commandFlag != "":
			script = *commandFlag
		case len(args) > 0:
			content, err := readFile(virtOS, args[0])
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", name, describe(err))
				return 127
			}
			script = content
		case virtOS.HasStdin():
			script = vos.ReadAllStdin(virtOS)
		default:
			return 0
		}

		state := virtOS.State()
		saved := state.Snapshot()
		defer state.Restore(saved)

		out, exitCode, sentinel := runScript(virtOS, script)
		fmt.Fprint(virtOS.Stdout(), out)
		switch kind, code := shell.ParseSentinel(sentinel); kind {
		case shell.SentinelKindExit:
			return code
		case shell.SentinelKindClear, shell.SentinelKindWipeFS:
			virtOS.Raise(sentinel)
		}
		return exitCode
	})
}

// Source runs a file in the current shell, so its changes persist.
func Source(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "source FILE",
		Short: "Execute commands from FILE in the current shell.",
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		name := commandName(virtOS)
		if len(args) == 0 {
			fmt.Fprintf(virtOS.Stderr(), "%s: filename argument required\n", name)
			return 2
		}

		content, err := readFile(virtOS, args[0])
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", name, describe(err))
			return 1
		}

		out, exitCode, sentinel := runScript(virtOS, content)
		fmt.Fprint(virtOS.Stdout(), out)
		if sentinel != "" {
			virtOS.Raise(sentinel)
		}
		if kind, code := shell.ParseSentinel(sentinel); kind == shell.SentinelKindExit {
			return code
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = RunShell
var _ vos.ProcessFunc = Source

func init() {
	mustAddBinCmd("sh", RunShell)
	mustAddBinCmd("bash", RunShell)
	mustAddBinCmd("source", Source)
	mustAddBinCmd(".", Source)
}
