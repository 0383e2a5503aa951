package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Uptime implements the UNIX uptime command, the system always just booted.
func Uptime(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uptime [OPTION]...",
		Short: "Tell how long the system has been running.",
	}
	pretty := cmd.Flags().BoolLong("pretty", 'p', "show uptime in pretty format")
	since := cmd.Flags().BoolLong("since", 's', "system up since")

	return cmd.Run(virtOS, func() int {
		now := virtOS.Now()
		w := virtOS.Stdout()

		switch {
		case *since:
			fmt.Fprintln(w, now.Format("2006-01-02 15:04:05"))
		case *pretty:
			fmt.Fprintln(w, "up 0 minutes")
		default:
			fmt.Fprintf(w, " %s up 0 min,  1 user,  load average: 0.00, 0.00, 0.00\n", now.Format("15:04:05"))
		}
		return 0
	})
}

var _ vos.ProcessFunc = Uptime

func init() {
	mustAddUsrBinCmd("uptime", Uptime)
}
