package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Cat implements the UNIX cat command.
func Cat(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cat [OPTION...] [FILE...]",
		Short: "Concatenate FILE(s) to standard output, - or no FILE reads stdin.",
	}

	number := cmd.Flags().BoolLong("number", 'n', "number all output lines")
	numberNonBlank := cmd.Flags().BoolLong("number-nonblank", 'b', "number nonempty output lines, overrides -n")
	showAll := cmd.Flags().BoolLong("show-all", 'A', "show tabs as ^I and line ends as $")
	showEnds := cmd.Flags().Bool('e', "equivalent to -A")
	showEndsOnly := cmd.Flags().Bool('E', "equivalent to -A")
	squeeze := cmd.Flags().BoolLong("squeeze-blank", 's', "suppress repeated empty output lines")

	return cmd.Run(virtOS, func() int {
		opts := catOptions{
			number:   *number,
			nonBlank: *numberNonBlank,
			showAll:  *showAll || *showEnds || *showEndsOnly,
			squeeze:  *squeeze,
		}

		return cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(_ string, fd io.Reader) error {
			content, err := io.ReadAll(fd)
			if err != nil {
				return err
			}
			_, err = io.WriteString(virtOS.Stdout(), opts.format(string(content)))
			return err
		})
	})
}

type catOptions struct {
	number   bool
	nonBlank bool
	showAll  bool
	squeeze  bool
}

func (o catOptions) format(text string) string {
	if !o.number && !o.nonBlank && !o.showAll && !o.squeeze {
		return text
	}

	lines := splitLines(text)
	if o.squeeze {
		var squeezed []string
		prevBlank := false
		for _, line := range lines {
			blank := line == ""
			if blank && prevBlank {
				continue
			}
			squeezed = append(squeezed, line)
			prevBlank = blank
		}
		lines = squeezed
	}

	lineNo := 0
	for i, line := range lines {
		if o.showAll {
			line = strings.ReplaceAll(line, "\t", "^I") + "$"
		}
		switch {
		case o.nonBlank && lines[i] == "":
		case o.number || o.nonBlank:
			lineNo++
			line = fmt.Sprintf("%6d\t%s", lineNo, line)
		}
		lines[i] = line
	}
	return joinLines(lines)
}

var _ vos.ProcessFunc = Cat

func init() {
	mustAddBinCmd("cat", Cat)
	// Pagers have nothing to page in a line based session.
	mustAddBinCmd("less", Cat)
	mustAddBinCmd("more", Cat)
}
