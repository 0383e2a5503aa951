package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Tr implements the POSIX tr command, it only reads stdin.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/tr.html
func Tr(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tr [OPTION]... STRING1 [STRING2]",
		Short: "Translate, squeeze, and/or delete characters from standard input, writing to standard output.",
	}
	flags := cmd.Flags()
	complement := flags.BoolLong("complement", 'c', "use the complement of STRING1")
	complementAlias := flags.Bool('C', "same as -c")
	deleteChars := flags.BoolLong("delete", 'd', "delete characters in STRING1, do not translate")
	squeeze := flags.BoolLong("squeeze-repeats", 's', "replace each sequence of a repeated character with a single occurrence")
	truncate := flags.BoolLong("truncate-set1", 't', "first truncate STRING1 to length of STRING2")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		switch {
		case len(args) == 0:
			cmd.LogProgramError(virtOS, errors.New("missing operand"))
			return 1
		case len(args) == 1 && !*deleteChars && !*squeeze:
			fmt.Fprintf(virtOS.Stderr(), "tr: missing operand after '%s'\n", args[0])
			return 1
		case len(args) > 2:
			fmt.Fprintf(virtOS.Stderr(), "tr: extra operand '%s'\n", args[2])
			return 1
		}

		set1, err := expandCharSet(args[0])
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 1
		}
		var set2 []rune
		if len(args) == 2 {
			if set2, err = expandCharSet(args[1]); err != nil {
				cmd.LogProgramError(virtOS, err)
				return 1
			}
		}

		if *truncate && len(set2) > 0 && len(set1) > len(set2) {
			set1 = set1[:len(set2)]
		}

		inSet1 := make(map[rune]bool)
		for _, r := range set1 {
			inSet1[r] = true
		}
		matches := func(r rune) bool {
			return inSet1[r] != (*complement || *complementAlias)
		}

		translating := !*deleteChars && len(set2) > 0
		mapping := make(map[rune]rune)
		if translating {
			for i, r := range set1 {
				if i < len(set2) {
					mapping[r] = set2[i]
				} else {
					mapping[r] = set2[len(set2)-1]
				}
			}
		}

		// Squeezing applies to the last set given.
		squeezeSet := make(map[rune]bool)
		if *squeeze {
			last := set2
			if len(args) == 1 {
				last = nil
			}
			for _, r := range last {
				squeezeSet[r] = true
			}
		}
		shouldSqueeze := func(r rune) bool {
			if len(args) == 1 {
				return matches(r)
			}
			return squeezeSet[r]
		}

		var out strings.Builder
		var prev rune
		hasPrev := false
		for _, r := range vos.ReadAllStdin(virtOS) {
			switch {
			case *deleteChars && matches(r):
				continue
			case translating && matches(r):
				if mapped, ok := mapping[r]; ok {
					r = mapped
				} else {
					// Complemented sets map to the last character.
					r = set2[len(set2)-1]
				}
			}

			if *squeeze && hasPrev && r == prev && shouldSqueeze(r) {
				continue
			}
			out.WriteRune(r)
			prev, hasPrev = r, true
		}

		fmt.Fprint(virtOS.Stdout(), out.String())
		return 0
	})
}

var _ vos.ProcessFunc = Tr

func init() {
	mustAddUsrBinCmd("tr", Tr)
}
