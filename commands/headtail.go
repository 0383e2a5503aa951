package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// rewriteObsoleteCount turns the historical "-5" form into "-n 5".
func rewriteObsoleteCount(args []string) []string {
	out := append([]string{}, args[:1]...)
	takesValue := false
	for i, arg := range args[1:] {
		if arg == "--" {
			return append(out, args[i+1:]...)
		}
		if !takesValue && len(arg) > 1 && arg[0] == '-' && arg[1] >= '0' && arg[1] <= '9' {
			if _, err := strconv.Atoi(arg[1:]); err == nil {
				out = append(out, "-n", arg[1:])
				continue
			}
		}
		out = append(out, arg)
		takesValue = arg == "-n" || arg == "-c" || arg == "--lines" || arg == "--bytes"
	}
	return out
}

// headTailCount is a parsed -n or -c value. Sign holds a leading + or -.
type headTailCount struct {
	n    int
	sign byte
}

func parseHeadTailCount(s string) (headTailCount, error) {
	var c headTailCount
	if s != "" && (s[0] == '+' || s[0] == '-') {
		c.sign, s = s[0], s[1:]
	}

	mult := 1
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'k', 'K':
			mult, s = 1024, s[:n-1]
		case 'M':
			mult, s = 1024*1024, s[:n-1]
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return c, fmt.Errorf("invalid number of lines: '%s'", s)
	}
	c.n = n * mult
	return c, nil
}

// splitKeepNewlines splits text into lines that keep their terminator.
func splitKeepNewlines(text string) []string {
	return strings.SplitAfterN(text, "\n", -1)
}

type headTailCommand struct {
	name  string
	short string
	// lines selects from the lines of the input, bytes from its bytes.
	lines func(lines []string, count headTailCount) []string
	bytes func(text string, count headTailCount) string
}

func (h *headTailCommand) run(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   h.name + " [OPTION]... [FILE]...",
		Short: h.short,
	}
	cmd.SetArgs(rewriteObsoleteCount(virtOS.Args()))
	flags := cmd.Flags()
	lines := flags.StringLong("lines", 'n', "10", "print NUM lines instead of the first 10")
	bytes := flags.StringLong("bytes", 'c', "", "print NUM bytes")
	quiet := flags.BoolLong("quiet", 'q', "never print headers giving file names")
	verbose := flags.BoolLong("verbose", 'v', "always print headers giving file names")
	flags.BoolLong("follow", 'f', "output appended data as the file grows")

	return cmd.Run(virtOS, func() int {
		spec := *lines
		if *bytes != "" {
			spec = *bytes
		}
		count, err := parseHeadTailCount(spec)
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", h.name, err)
			return 1
		}

		files := flags.Args()
		showHeaders := (len(files) > 1 || *verbose) && !*quiet
		first := true

		w := virtOS.Stdout()
		return cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			content, err := io.ReadAll(fd)
			if err != nil {
				return err
			}

			if showHeaders {
				if !first {
					fmt.Fprintln(w)
				}
				if name == "-" {
					name = "standard input"
				}
				fmt.Fprintf(w, "==> %s <==\n", name)
			}
			first = false

			if *bytes != "" {
				fmt.Fprint(w, h.bytes(string(content), count))
				return nil
			}
			fmt.Fprint(w, strings.Join(h.lines(splitKeepNewlines(string(content)), count), ""))
			return nil
		})
	})
}

func clampCount(n, max int) int {
	if n > max {
		return max
	}
	return n
}

func dropEmptyTail(lines []string) []string {
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	return lines
}

var headCommand = &headTailCommand{
	name:  "head",
	short: "Print the first 10 lines of each FILE to standard output.",
	lines: func(lines []string, c headTailCount) []string {
		lines = dropEmptyTail(lines)
		if c.sign == '-' {
			return lines[:len(lines)-clampCount(c.n, len(lines))]
		}
		return lines[:clampCount(c.n, len(lines))]
	},
	bytes: func(text string, c headTailCount) string {
		if c.sign == '-' {
			return text[:len(text)-clampCount(c.n, len(text))]
		}
		return text[:clampCount(c.n, len(text))]
	},
}

var tailCommand = &headTailCommand{
	name:  "tail",
	short: "Print the last 10 lines of each FILE to standard output.",
	lines: func(lines []string, c headTailCount) []string {
		lines = dropEmptyTail(lines)
		if c.sign == '+' {
			start := c.n - 1
			if start < 0 {
				start = 0
			}
			return lines[clampCount(start, len(lines)):]
		}
		return lines[len(lines)-clampCount(c.n, len(lines)):]
	},
	bytes: func(text string, c headTailCount) string {
		if c.sign == '+' {
			start := c.n - 1
			if start < 0 {
				start = 0
			}
			return text[clampCount(start, len(text)):]
		}
		return text[len(text)-clampCount(c.n, len(text)):]
	},
}

// Head implements the head command.
func Head(virtOS vos.VOS) int {
	return headCommand.run(virtOS)
}

// Tail implements the tail command, following files isn't supported.
func Tail(virtOS vos.VOS) int {
	return tailCommand.run(virtOS)
}

var _ vos.ProcessFunc = Head
var _ vos.ProcessFunc = Tail

func init() {
	mustAddUsrBinCmd("head", Head)
	mustAddUsrBinCmd("tail", Tail)
}
