package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Uniq implements the uniq command, it filters adjacent matching lines.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/uniq.html
func Uniq(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uniq [OPTION]... [INPUT [OUTPUT]]",
		Short: "Filter adjacent matching lines from INPUT, writing to OUTPUT.",
	}
	flags := cmd.Flags()
	count := flags.BoolLong("count", 'c', "prefix lines by the number of occurrences")
	repeated := flags.BoolLong("repeated", 'd', "only print duplicate lines, one for each group")
	unique := flags.BoolLong("unique", 'u', "only print unique lines")
	ignoreCase := flags.BoolLong("ignore-case", 'i', "ignore differences in case when comparing")
	skipFields := flags.IntLong("skip-fields", 'f', 0, "avoid comparing the first N fields")
	skipChars := flags.IntLong("skip-chars", 's', 0, "avoid comparing the first N characters")
	checkChars := flags.IntLong("check-chars", 'w', 0, "compare no more than N characters in lines")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		if len(args) > 2 {
			fmt.Fprintf(virtOS.Stderr(), "uniq: extra operand '%s'\n", args[2])
			return 1
		}

		var inputs []string
		if len(args) > 0 {
			inputs = args[:1]
		}
		text, exitCode := cmd.readInputs(virtOS, inputs)
		if exitCode != 0 {
			return exitCode
		}

		compareKey := func(line string) string {
			key := skipFieldsAndChars(line, *skipFields, *skipChars)
			if r := []rune(key); *checkChars > 0 && len(r) > *checkChars {
				key = string(r[:*checkChars])
			}
			if *ignoreCase {
				key = strings.ToLower(key)
			}
			return key
		}

		var out strings.Builder
		emit := func(line string, n int) {
			if (*repeated && n < 2) || (*unique && n > 1) {
				return
			}
			if *count {
				fmt.Fprintf(&out, "%7d %s\n", n, line)
				return
			}
			out.WriteString(line + "\n")
		}

		lines := splitLines(text)
		for i := 0; i < len(lines); {
			key := compareKey(lines[i])
			j := i + 1
			for j < len(lines) && compareKey(lines[j]) == key {
				j++
			}
			emit(lines[i], j-i)
			i = j
		}

		if len(args) == 2 {
			if err := virtOS.FS().Write(virtOS.Resolve(args[1]), out.String()); err != nil {
				cmd.LogProgramError(virtOS, fileError(args[1], err))
				return 1
			}
			return 0
		}
		fmt.Fprint(virtOS.Stdout(), out.String())
		return 0
	})
}

var _ vos.ProcessFunc = Uniq

func init() {
	mustAddUsrBinCmd("uniq", Uniq)
}
