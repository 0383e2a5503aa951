package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Ps lists the shell and ps itself, the only processes a session has.
func Ps(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "ps [options]",
		Short: "Report a snapshot of the current processes.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	// BSD style options like "aux" come without a dash.
	bsdStyle := false
	for _, arg := range virtOS.Args()[1:] {
		if strings.ContainsAny(strings.TrimPrefix(arg, "-"), "aex") {
			bsdStyle = true
		}
	}

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		user := virtOS.Username()
		shell := virtOS.ShellName()

		if bsdStyle {
			fmt.Fprintln(w, "USER       PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND")
			fmt.Fprintf(w, "%-8s %5d  0.0  0.0  12345  1024 pts/0    Ss   00:00   0:00 %s\n", user, 1, shell)
			fmt.Fprintf(w, "%-8s %5d  0.0  0.0   8765   512 pts/0    R+   00:00   0:00 ps\n", user, 2)
			return 0
		}

		fmt.Fprintln(w, "  PID TTY          TIME CMD")
		fmt.Fprintf(w, "%5d pts/0    00:00:00 %s\n", 1, shell)
		fmt.Fprintf(w, "%5d pts/0    00:00:00 ps\n", 2)
		return 0
	})
}

// Kill always fails, sessions have no background jobs to signal.
func Kill(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "kill [-s sigspec | -n signum | -sigspec] pid | jobspec ... or kill -l [sigspec]",
		Short: "Send a signal to a process.",

		// Signals like -9 aren't known flags.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")
	list := cmd.Flags().Bool('l', "list signal names")
	cmd.Flags().String('s', "TERM", "signal to send")
	cmd.Flags().String('n', "15", "signal number to send")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		if *list {
			fmt.Fprintln(w, " 1) SIGHUP	 2) SIGINT	 3) SIGQUIT	 4) SIGILL	 5) SIGTRAP")
			fmt.Fprintln(w, " 6) SIGABRT	 7) SIGBUS	 8) SIGFPE	 9) SIGKILL	10) SIGUSR1")
			fmt.Fprintln(w, "11) SIGSEGV	12) SIGUSR2	13) SIGPIPE	14) SIGALRM	15) SIGTERM")
			return 0
		}

		var targets []string
		args := virtOS.Args()[1:]
		for i := 0; i < len(args); i++ {
			switch arg := args[i]; {
			case arg == "-s" || arg == "-n":
				i++
			case !strings.HasPrefix(arg, "-"):
				targets = append(targets, arg)
			}
		}
		if len(targets) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "kill: usage: kill [-s sigspec | -n signum | -sigspec] pid | jobspec ... or kill -l [sigspec]")
			return 2
		}
		for _, target := range targets {
			if strings.HasPrefix(target, "%") {
				fmt.Fprintf(virtOS.Stderr(), "kill: %s: no such job\n", target)
			} else {
				fmt.Fprintf(virtOS.Stderr(), "kill: (%s) - No such process\n", target)
			}
		}
		return 1
	})
}

var _ vos.ProcessFunc = Ps
var _ vos.ProcessFunc = Kill

func init() {
	mustAddBinCmd("ps", Ps)
	mustAddBinCmd("kill", Kill)
}
