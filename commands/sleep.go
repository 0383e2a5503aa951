package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/mathshell/core/vos"
)

// parseInterval parses a coreutils style duration: a number with an
// optional s, m, h or d suffix.
func parseInterval(s string) (time.Duration, error) {
	unit := time.Second
	num := s
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 's':
			num = s[:n-1]
		case 'm':
			unit, num = time.Minute, s[:n-1]
		case 'h':
			unit, num = time.Hour, s[:n-1]
		case 'd':
			unit, num = 24*time.Hour, s[:n-1]
		}
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 || strings.ContainsAny(num, "xXpP") {
		return 0, fmt.Errorf("invalid time interval '%s'", s)
	}
	return time.Duration(f * float64(unit)), nil
}

// Sleep validates its arguments and returns immediately, commands never
// block the session.
func Sleep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sleep NUMBER[SUFFIX]...",
		Short: "Pause for NUMBER seconds, mash returns immediately.",
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "sleep: missing operand")
			return 1
		}

		for _, arg := range args {
			if _, err := parseInterval(arg); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "sleep: %s\n", err)
				return 1
			}
		}
		return 0
	})
}

var _ vos.ProcessFunc = Sleep

// Timeout runs the command right away, time limits can't be exceeded in the
// simulation.
func Timeout(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "timeout DURATION COMMAND [ARG]...",
		Short: "Run COMMAND with a time limit.",
	}
	// Accepted for compatibility.
	cmd.Flags().StringLong("signal", 's', "TERM", "signal to send on timeout")
	cmd.Flags().StringLong("kill-after", 'k', "", "also send KILL after DURATION")
	cmd.Flags().BoolLong("preserve-status", 0, "exit with the same status as COMMAND")
	cmd.Flags().BoolLong("foreground", 0, "don't create a process group")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) < 2 {
			fmt.Fprintln(virtOS.Stderr(), "timeout: missing operand")
			return 1
		}
		if _, err := parseInterval(args[0]); err != nil {
			fmt.Fprintf(virtOS.Stderr(), "timeout: %s\n", err)
			return 125
		}

		res := virtOS.Invoke(args[1], args[2:], stdinString(virtOS))
		return forward(virtOS, res)
	})
}

var _ vos.ProcessFunc = Timeout

// yesLimit caps endless generators, pipeline stages are buffered.
const yesLimit = 1000

// Yes repeats a line.
func Yes(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "yes [STRING]...",
		Short: "Repeatedly output a line with all specified STRING(s), or 'y'.",
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show this help and exit")

	return cmd.Run(virtOS, func() int {
		line := "y"
		if args := cmd.Flags().Args(); len(args) > 0 {
			line = strings.Join(args, " ")
		}

		w := virtOS.Stdout()
		for i := 0; i < yesLimit; i++ {
			fmt.Fprintln(w, line)
		}
		return 0
	})
}

var _ vos.ProcessFunc = Yes

func init() {
	mustAddBinCmd("sleep", Sleep)
	mustAddBinCmd("yes", Yes)
	mustAddUsrBinCmd("timeout", Timeout)
}
