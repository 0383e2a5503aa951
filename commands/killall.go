package commands

import (
	"fmt"
	"regexp"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Killall signals processes by name. The login shell is protected and no
// other process outlives its pipeline, so nothing is ever found.
func Killall(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "killall [OPTION]... [--] NAME...",
		Short: "Kill a process by name.",

		// Signals like -9 aren't known flags.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")
	quiet := cmd.Flags().BoolLong("quiet", 'q', "don't print complaints")

	return cmd.Run(virtOS, func() int {
		names := cmd.Flags().Args()
		if len(names) == 0 {
			fmt.Fprintf(virtOS.Stderr(), "Usage: %s\n", cmd.Use)
			return 1
		}
		if !*quiet {
			for _, name := range names {
				fmt.Fprintf(virtOS.Stderr(), "%s: no process found\n", name)
			}
		}
		return 1
	})
}

// Pkill signals processes matching a pattern, like killall nothing matches.
func Pkill(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "pkill [OPTION]... PATTERN",
		Short: "Signal processes based on name and other attributes.",

		// Signals like -9 aren't known flags.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		patterns := cmd.Flags().Args()
		if len(patterns) != 1 {
			fmt.Fprintln(virtOS.Stderr(), "pkill: no matching criteria specified")
			return 2
		}
		if _, err := regexp.Compile(patterns[0]); err != nil {
			fmt.Fprintf(virtOS.Stderr(), "pkill: %v\n", err)
			return 2
		}
		return 1
	})
}

var _ vos.ProcessFunc = Killall
var _ vos.ProcessFunc = Pkill

func init() {
	mustAddUsrBinCmd("killall", Killall)
	mustAddUsrBinCmd("pkill", Pkill)
}
