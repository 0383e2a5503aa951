package commands

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Simple line filters: each reads its FILEs or stdin and transforms lines.

// Rev reverses the characters of each line.
func Rev(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rev [FILE]...",
		Short: "Reverse lines characterwise.",
	}

	return cmd.Run(virtOS, func() int {
		text, exitCode := cmd.readInputs(virtOS, cmd.Flags().Args())
		w := virtOS.Stdout()
		for _, line := range splitLines(text) {
			runes := []rune(line)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			fmt.Fprintln(w, string(runes))
		}
		return exitCode
	})
}

// Tac prints lines in reverse order.
func Tac(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tac [FILE]...",
		Short: "Concatenate and print files in reverse.",
	}

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		if len(files) == 0 {
			files = []string{"-"}
		}

		w := virtOS.Stdout()
		exitCode := 0
		for _, name := range files {
			text, code := cmd.readInputs(virtOS, []string{name})
			if code != 0 {
				exitCode = code
				continue
			}
			lines := splitLines(text)
			for i := len(lines) - 1; i >= 0; i-- {
				fmt.Fprintln(w, lines[i])
			}
		}
		return exitCode
	})
}

// Nl numbers lines.
func Nl(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "nl [OPTION]... [FILE]...",
		Short: "Write each FILE to standard output, with line numbers added.",
	}
	flags := cmd.Flags()
	bodyStyle := flags.EnumLong("body-numbering", 'b', []string{"a", "t", "n"}, "t", "use STYLE for numbering body lines")
	format := flags.EnumLong("number-format", 'n', []string{"ln", "rn", "rz"}, "rn", "insert line numbers according to FORMAT")
	width := flags.IntLong("number-width", 'w', 6, "use NUMBER columns for line numbers")
	separator := flags.StringLong("number-separator", 's', "\t", "add STRING after (possible) line number")
	start := flags.IntLong("starting-line-number", 'v', 1, "first line number for each section")
	increment := flags.IntLong("line-increment", 'i', 1, "line number increment at each line")

	return cmd.Run(virtOS, func() int {
		text, exitCode := cmd.readInputs(virtOS, flags.Args())

		w := virtOS.Stdout()
		n := *start
		for _, line := range splitLines(text) {
			numbered := *bodyStyle == "a" || (*bodyStyle == "t" && line != "")
			if !numbered {
				fmt.Fprintln(w, strings.Repeat(" ", *width+len(*separator))+line)
				continue
			}

			var num string
			switch *format {
			case "ln":
				num = fmt.Sprintf("%-*d", *width, n)
			case "rz":
				num = fmt.Sprintf("%0*d", *width, n)
			default:
				num = fmt.Sprintf("%*d", *width, n)
			}
			fmt.Fprintln(w, num+*separator+line)
			n += *increment
		}
		return exitCode
	})
}

// foldLine breaks a line into chunks of at most width runes, at the last
// blank when breakSpaces is set.
func foldLine(line string, width int, breakSpaces bool) []string {
	var out []string
	runes := []rune(line)
	for len(runes) > width {
		cut := width
		if breakSpaces {
			for i := width - 1; i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i + 1
					break
				}
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(out, string(runes))
}

// Fold wraps long lines.
func Fold(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "fold [OPTION]... [FILE]...",
		Short: "Wrap input lines in each FILE, writing to standard output.",
	}
	cmd.SetArgs(rewriteObsoleteWidth(virtOS.Args()))
	flags := cmd.Flags()
	width := flags.IntLong("width", 'w', 80, "use WIDTH columns instead of 80")
	breakSpaces := flags.BoolLong("spaces", 's', "break at spaces")
	flags.BoolLong("bytes", 'b', "count bytes rather than columns")

	return cmd.Run(virtOS, func() int {
		if *width < 1 {
			fmt.Fprintf(virtOS.Stderr(), "fold: invalid number of columns: '%d'\n", *width)
			return 1
		}

		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		w := virtOS.Stdout()
		for _, line := range splitLines(text) {
			for _, chunk := range foldLine(line, *width, *breakSpaces) {
				fmt.Fprintln(w, chunk)
			}
		}
		return exitCode
	})
}

// rewriteObsoleteWidth turns "-20" into "-w 20", fold has no -n of its own.
func rewriteObsoleteWidth(args []string) []string {
	out := rewriteObsoleteCount(args)
	for i, arg := range out {
		if i > 0 && arg == "-n" {
			out[i] = "-w"
		}
	}
	return out
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string, tabSize int, initialOnly bool) string {
	var out strings.Builder
	col := 0
	leading := true
	for _, r := range line {
		if r != ' ' && r != '\t' {
			leading = false
		}
		if r == '\t' && (leading || !initialOnly) {
			spaces := tabSize - col%tabSize
			out.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		out.WriteRune(r)
		col++
	}
	return out.String()
}

// unexpandSpaces converts runs of blanks that reach a tab stop into tabs.
func unexpandSpaces(line string, tabSize int, all bool) string {
	var out strings.Builder
	col := 0
	pending := 0
	leading := true
	for _, r := range line {
		if r == ' ' && (leading || all) {
			pending++
			col++
			if col%tabSize == 0 {
				if pending > 1 {
					out.WriteByte('\t')
				} else {
					out.WriteByte(' ')
				}
				pending = 0
			}
			continue
		}

		out.WriteString(strings.Repeat(" ", pending))
		pending = 0
		if r == '\t' {
			col += tabSize - col%tabSize
		} else {
			col++
			leading = false
		}
		out.WriteRune(r)
	}
	out.WriteString(strings.Repeat(" ", pending))
	return out.String()
}

// Expand converts tabs to spaces.
func Expand(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "expand [OPTION]... [FILE]...",
		Short: "Convert tabs in each FILE to spaces, writing to standard output.",
	}
	flags := cmd.Flags()
	tabs := flags.IntLong("tabs", 't', 8, "have tabs N characters apart, not 8")
	initial := flags.BoolLong("initial", 'i', "do not convert tabs after non blanks")

	return cmd.Run(virtOS, func() int {
		if *tabs < 1 {
			fmt.Fprintln(virtOS.Stderr(), "expand: tab size cannot be 0")
			return 1
		}
		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		w := virtOS.Stdout()
		for _, line := range splitLines(text) {
			fmt.Fprintln(w, expandTabs(line, *tabs, *initial))
		}
		return exitCode
	})
}

// Unexpand converts leading spaces to tabs.
func Unexpand(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "unexpand [OPTION]... [FILE]...",
		Short: "Convert blanks in each FILE to tabs, writing to standard output.",
	}
	flags := cmd.Flags()
	tabs := flags.IntLong("tabs", 't', 8, "have tabs N characters apart instead of 8")
	all := flags.BoolLong("all", 'a', "convert all blanks, instead of just initial blanks")

	return cmd.Run(virtOS, func() int {
		if *tabs < 1 {
			fmt.Fprintln(virtOS.Stderr(), "unexpand: tab size cannot be 0")
			return 1
		}
		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		w := virtOS.Stdout()
		for _, line := range splitLines(text) {
			fmt.Fprintln(w, unexpandSpaces(line, *tabs, *all))
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Rev
var _ vos.ProcessFunc = Tac
var _ vos.ProcessFunc = Nl
var _ vos.ProcessFunc = Fold
var _ vos.ProcessFunc = Expand
var _ vos.ProcessFunc = Unexpand

func init() {
	mustAddUsrBinCmd("rev", Rev)
	mustAddUsrBinCmd("tac", Tac)
	mustAddUsrBinCmd("nl", Nl)
	mustAddUsrBinCmd("fold", Fold)
	mustAddUsrBinCmd("expand", Expand)
	mustAddUsrBinCmd("unexpand", Unexpand)
}
