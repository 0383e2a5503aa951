package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Cut implements the POSIX cut command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/cut.html
func Cut(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cut OPTION... [FILE]...",
		Short: "Print selected parts of lines from each FILE to standard output.",
	}
	flags := cmd.Flags()
	bytesList := flags.StringLong("bytes", 'b', "", "select only these bytes")
	charList := flags.StringLong("characters", 'c', "", "select only these characters")
	fieldList := flags.StringLong("fields", 'f', "", "select only these fields")
	delimiter := flags.StringLong("delimiter", 'd', "\t", "use DELIM instead of TAB for field delimiter")
	onlyDelimited := flags.BoolLong("only-delimited", 's', "do not print lines not containing delimiters")
	complement := flags.BoolLong("complement", 0, "complement the set of selected bytes, characters or fields")
	outputDelimiter := flags.StringLong("output-delimiter", 0, "", "use STRING as the output delimiter")

	return cmd.Run(virtOS, func() int {
		var spec string
		picked := 0
		for _, list := range []string{*bytesList, *charList, *fieldList} {
			if list != "" {
				spec = list
				picked++
			}
		}
		switch {
		case picked == 0:
			cmd.LogProgramError(virtOS, errors.New("you must specify a list of bytes, characters, or fields"))
			return 1
		case picked > 1:
			cmd.LogProgramError(virtOS, errors.New("only one type of list may be specified"))
			return 1
		case len([]rune(*delimiter)) != 1:
			cmd.LogProgramError(virtOS, errors.New("the delimiter must be a single character"))
			return 1
		}

		ranges, err := parseRanges(spec)
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 1
		}
		selected := func(items []string) []string {
			if !*complement {
				return selectItems(items, ranges)
			}
			var out []string
			for i, item := range items {
				if !inRanges(ranges, i+1) {
					out = append(out, item)
				}
			}
			return out
		}

		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		w := virtOS.Stdout()
		for _, line := range splitLines(text) {
			switch {
			case *fieldList != "":
				if !strings.Contains(line, *delimiter) {
					if !*onlyDelimited {
						fmt.Fprintln(w, line)
					}
					continue
				}
				sep := *delimiter
				if *outputDelimiter != "" {
					sep = *outputDelimiter
				}
				fmt.Fprintln(w, strings.Join(selected(strings.Split(line, *delimiter)), sep))
			case *bytesList != "":
				var bytes []string
				for i := 0; i < len(line); i++ {
					bytes = append(bytes, line[i:i+1])
				}
				fmt.Fprintln(w, strings.Join(selected(bytes), *outputDelimiter))
			default:
				var chars []string
				for _, r := range line {
					chars = append(chars, string(r))
				}
				fmt.Fprintln(w, strings.Join(selected(chars), *outputDelimiter))
			}
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Cut

func init() {
	mustAddUsrBinCmd("cut", Cut)
}
