package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// pasteDelimiters expands the -d list, \0 is an empty delimiter.
func pasteDelimiters(list string) []string {
	var out []string
	runes := []rune(list)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 == len(runes) {
			out = append(out, string(runes[i]))
			continue
		}
		i++
		switch runes[i] {
		case 't':
			out = append(out, "\t")
		case 'n':
			out = append(out, "\n")
		case '0':
			out = append(out, "")
		default:
			out = append(out, string(runes[i]))
		}
	}
	return out
}

// Paste merges lines of files.
func Paste(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "paste [OPTION]... [FILE]...",
		Short: "Write lines consisting of the sequentially corresponding lines from each FILE.",
	}
	flags := cmd.Flags()
	delimList := flags.StringLong("delimiters", 'd', "\\t", "reuse characters from LIST instead of TABs")
	serial := flags.BoolLong("serial", 's', "paste one file at a time instead of in parallel")

	return cmd.Run(virtOS, func() int {
		delims := pasteDelimiters(*delimList)
		if len(delims) == 0 {
			delims = []string{""}
		}

		files := flags.Args()
		if len(files) == 0 {
			files = []string{"-"}
		}

		// Stdin is consumed once, repeated "-" operands share its lines.
		var stdinLines []string
		stdinRead := false
		var inputs [][]string
		for _, name := range files {
			if name == "-" {
				if !stdinRead {
					stdinLines = splitLines(vos.ReadAllStdin(virtOS))
					stdinRead = true
				}
				inputs = append(inputs, nil)
				continue
			}
			text, err := readFile(virtOS, name)
			if err != nil {
				cmd.LogProgramError(virtOS, err)
				return 1
			}
			inputs = append(inputs, splitLines(text))
		}

		w := virtOS.Stdout()
		if *serial {
			for i, lines := range inputs {
				if files[i] == "-" {
					lines = stdinLines
				}
				var out strings.Builder
				for j, line := range lines {
					if j > 0 {
						out.WriteString(delims[(j-1)%len(delims)])
					}
					out.WriteString(line)
				}
				fmt.Fprintln(w, out.String())
			}
			return 0
		}

		stdinPos := 0
		next := func(i int, row int) (string, bool) {
			if files[i] == "-" {
				if stdinPos < len(stdinLines) {
					stdinPos++
					return stdinLines[stdinPos-1], true
				}
				return "", false
			}
			if row < len(inputs[i]) {
				return inputs[i][row], true
			}
			return "", false
		}

		for row := 0; ; row++ {
			var out strings.Builder
			more := false
			for i := range inputs {
				if i > 0 {
					out.WriteString(delims[(i-1)%len(delims)])
				}
				line, ok := next(i, row)
				more = more || ok
				out.WriteString(line)
			}
			if !more {
				break
			}
			fmt.Fprintln(w, out.String())
		}
		return 0
	})
}

// Comm compares two sorted files.
func Comm(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "comm [OPTION]... FILE1 FILE2",
		Short: "Compare sorted files FILE1 and FILE2 line by line.",
	}
	flags := cmd.Flags()
	hide1 := flags.Bool('1', "suppress column 1 (lines unique to FILE1)")
	hide2 := flags.Bool('2', "suppress column 2 (lines unique to FILE2)")
	hide3 := flags.Bool('3', "suppress column 3 (lines that appear in both files)")
	separator := flags.StringLong("output-delimiter", 0, "\t", "separate columns with STR")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		switch len(args) {
		case 0:
			fmt.Fprintln(virtOS.Stderr(), "comm: missing operand")
			return 1
		case 1:
			fmt.Fprintf(virtOS.Stderr(), "comm: missing operand after '%s'\n", args[0])
			return 1
		case 2:
		default:
			fmt.Fprintf(virtOS.Stderr(), "comm: extra operand '%s'\n", args[2])
			return 1
		}

		var both [2][]string
		for i, name := range args {
			text, exitCode := cmd.readInputs(virtOS, []string{name})
			if exitCode != 0 {
				return exitCode
			}
			both[i] = splitLines(text)
		}

		// Each visible column is indented by the visible columns before it.
		indent2, indent3 := "", ""
		if !*hide1 {
			indent2 += *separator
			indent3 += *separator
		}
		if !*hide2 {
			indent3 += *separator
		}

		w := virtOS.Stdout()
		a, b := both[0], both[1]
		i, j := 0, 0
		for i < len(a) || j < len(b) {
			switch {
			case j >= len(b) || (i < len(a) && a[i] < b[j]):
				if !*hide1 {
					fmt.Fprintln(w, a[i])
				}
				i++
			case i >= len(a) || a[i] > b[j]:
				if !*hide2 {
					fmt.Fprintln(w, indent2+b[j])
				}
				j++
			default:
				if !*hide3 {
					fmt.Fprintln(w, indent3+a[i])
				}
				i++
				j++
			}
		}
		return 0
	})
}

var _ vos.ProcessFunc = Paste
var _ vos.ProcessFunc = Comm

func init() {
	mustAddUsrBinCmd("paste", Paste)
	mustAddUsrBinCmd("comm", Comm)
}
