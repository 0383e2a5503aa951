package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/mathshell/core/vos"
)

// W shows the logged in user and what they're doing. The session is the
// only login and started when the system booted.
func W(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "w [options]",
		Short: "Show who is logged on and what they are doing.",
	}
	noHeader := cmd.Flags().BoolLong("no-header", 'h', "do not print header")
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		now := virtOS.Now()
		w := tabwriter.NewWriter(virtOS.Stdout(), 0, 8, 2, ' ', 0)
		defer w.Flush()

		if !*noHeader {
			fmt.Fprintf(w, " %s up 0 min,  1 user,  load average: 0.00, 0.00, 0.00\n", now.Format("15:04:05"))
			fmt.Fprintln(w, "USER\tTTY\tFROM\tLOGIN@\tIDLE\tJCPU\tPCPU\tWHAT")
		}
		fmt.Fprintf(w, "%s\tpts/0\t-\t%s\t0.00s\t0.00s\t0.00s\t%s\n",
			virtOS.Username(),
			now.Format("15:04"),
			virtOS.ShellName(),
		)
		return 0
	})
}

// Who lists logged in users.
func Who(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "who [OPTION]...",
		Short: "Print information about users who are currently logged in.",
	}
	header := cmd.Flags().BoolLong("heading", 'H', "print line of column headings")

	return cmd.Run(virtOS, func() int {
		w := tabwriter.NewWriter(virtOS.Stdout(), 0, 8, 1, ' ', 0)
		defer w.Flush()

		if *header {
			fmt.Fprintln(w, "NAME\tLINE\tTIME")
		}
		fmt.Fprintf(w, "%s\tpts/0\t%s\n", virtOS.Username(), virtOS.Now().Format("2006-01-02 15:04"))
		return 0
	})
}

var _ vos.ProcessFunc = W
var _ vos.ProcessFunc = Who

func init() {
	mustAddUsrBinCmd("w", W)
	mustAddUsrBinCmd("who", Who)
}
