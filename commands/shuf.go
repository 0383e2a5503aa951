package commands

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

func parseShufRange(s string) (lo, hi int, err error) {
	loStr, hiStr, ok := strings.Cut(s, "-")
	if ok {
		lo, err = strconv.Atoi(loStr)
		if err == nil {
			hi, err = strconv.Atoi(hiStr)
		}
	}
	if !ok || err != nil || hi < lo-1 {
		return 0, 0, fmt.Errorf("invalid input range: '%s'", s)
	}
	return lo, hi, nil
}

// Shuf writes a random permutation of its input lines.
func Shuf(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "shuf [OPTION]... [FILE]",
		Short: "Write a random permutation of the input lines to standard output.",
	}
	flags := cmd.Flags()
	echo := flags.BoolLong("echo", 'e', "treat each ARG as an input line")
	inputRange := flags.StringLong("input-range", 'i', "", "treat each number LO through HI as an input line")
	count := flags.IntLong("head-count", 'n', -1, "output at most COUNT lines")
	output := flags.StringLong("output", 'o', "", "write result to FILE instead of standard output")
	repeat := flags.BoolLong("repeat", 'r', "output lines can be repeated")

	return cmd.Run(virtOS, func() int {
		var lines []string
		switch {
		case *inputRange != "":
			lo, hi, err := parseShufRange(*inputRange)
			if err != nil {
				cmd.LogProgramError(virtOS, err)
				return 1
			}
			for i := lo; i <= hi; i++ {
				lines = append(lines, strconv.Itoa(i))
			}
		case *echo:
			lines = flags.Args()
		default:
			if len(flags.Args()) > 1 {
				fmt.Fprintf(virtOS.Stderr(), "shuf: extra operand '%s'\n", flags.Args()[1])
				return 1
			}
			text, exitCode := cmd.readInputs(virtOS, flags.Args())
			if exitCode != 0 {
				return exitCode
			}
			lines = splitLines(text)
		}

		rng := rand.New(rand.NewSource(virtOS.Now().UnixNano()))
		var out []string
		if *repeat {
			n := *count
			if n < 0 {
				n = yesLimit
			}
			for i := 0; i < n && len(lines) > 0; i++ {
				out = append(out, lines[rng.Intn(len(lines))])
			}
		} else {
			out = append([]string{}, lines...)
			rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
			if *count >= 0 && *count < len(out) {
				out = out[:*count]
			}
		}

		if *output != "" {
			if err := virtOS.FS().Write(virtOS.Resolve(*output), joinLines(out)); err != nil {
				cmd.LogProgramError(virtOS, fileError(*output, err))
				return 1
			}
			return 0
		}
		fmt.Fprint(virtOS.Stdout(), joinLines(out))
		return 0
	})
}

var _ vos.ProcessFunc = Shuf

func init() {
	mustAddUsrBinCmd("shuf", Shuf)
}
