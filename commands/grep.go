package commands

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

type grepOptions struct {
	invert          bool
	countOnly       bool
	onlyMatching    bool
	listFiles       bool
	listNonMatching bool
	quiet           bool
	showLineNumbers bool
	showFileName    bool
	maxCount        int
	before, after   int

	color *ColorPrinter
	regex *regexp.Regexp
}

type grepInput struct {
	label   string
	content string
}

// grep searches one input and writes the results, it returns the number of
// selected lines.
func (g *grepOptions) grep(w io.Writer, in grepInput) int {
	lines := splitLines(in.content)

	prefix := func(lineNo int, sep string) string {
		var out strings.Builder
		if g.showFileName {
			out.WriteString(in.label + sep)
		}
		if g.showLineNumbers {
			fmt.Fprintf(&out, "%d%s", lineNo, sep)
		}
		return out.String()
	}

	highlight := func(line string) string {
		if g.invert || !g.color.ShouldColor() {
			return line
		}
		return g.regex.ReplaceAllStringFunc(line, func(m string) string {
			return g.color.Sprintf(ColorMatch, "%s", m)
		})
	}

	printing := !g.quiet && !g.countOnly && !g.listFiles && !g.listNonMatching
	contextual := g.before > 0 || g.after > 0
	lastPrinted := -1
	afterLeft := 0
	selected := 0

	for i, line := range lines {
		if g.maxCount > 0 && selected >= g.maxCount {
			// Trailing context still prints after the last match.
			if afterLeft == 0 {
				break
			}
		}

		isMatch := g.regex.MatchString(line) != g.invert
		if isMatch && (g.maxCount <= 0 || selected < g.maxCount) {
			selected++
			if !printing {
				continue
			}

			start := i - g.before
			if start <= lastPrinted {
				start = lastPrinted + 1
			}
			if start < 0 {
				start = 0
			}
			if contextual && lastPrinted >= 0 && start > lastPrinted+1 {
				fmt.Fprintln(w, "--")
			}
			for j := start; j < i; j++ {
				fmt.Fprintln(w, prefix(j+1, "-")+lines[j])
			}

			if g.onlyMatching && !g.invert {
				for _, m := range g.regex.FindAllString(line, -1) {
					if m != "" {
						fmt.Fprintln(w, prefix(i+1, ":")+g.color.Sprintf(ColorMatch, "%s", m))
					}
				}
			} else {
				fmt.Fprintln(w, prefix(i+1, ":")+highlight(line))
			}
			lastPrinted = i
			afterLeft = g.after
			continue
		}

		if printing && afterLeft > 0 {
			fmt.Fprintln(w, prefix(i+1, "-")+line)
			lastPrinted = i
			afterLeft--
		}
	}

	switch {
	case g.quiet:
	case g.countOnly:
		if g.showFileName {
			fmt.Fprintf(w, "%s:%d\n", in.label, selected)
		} else {
			fmt.Fprintln(w, selected)
		}
	case g.listFiles && selected > 0:
		fmt.Fprintln(w, in.label)
	case g.listNonMatching && selected == 0:
		fmt.Fprintln(w, in.label)
	}
	return selected
}

// Grep implements the POSIX grep command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/
func Grep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "grep [OPTION]... PATTERNS [FILE]...",
		Short: "Search files for text matching a pattern.",
	}
	opts := cmd.Flags()

	invert := opts.BoolLong("invert-match", 'v', "select non-matching lines")
	ignoreCase := opts.BoolLong("ignore-case", 'i', "ignore case distinctions in patterns and data")
	showLineNumbers := opts.BoolLong("line-number", 'n', "print line number with output lines")
	countOnly := opts.BoolLong("count", 'c', "print only a count of selected lines per FILE")
	onlyMatching := opts.BoolLong("only-matching", 'o', "show only nonempty parts of lines that match")
	recursive := opts.BoolLong("recursive", 'r', "search directories recursively")
	recursiveAlias := opts.Bool('R', "same as -r")
	wordRegexp := opts.BoolLong("word-regexp", 'w', "match only whole words")
	lineRegexp := opts.BoolLong("line-regexp", 'x', "match only whole lines")
	listFiles := opts.BoolLong("files-with-matches", 'l', "print only names of FILEs with selected lines")
	listNonMatching := opts.BoolLong("files-without-match", 'L', "print only names of FILEs with no selected lines")
	quiet := opts.BoolLong("quiet", 'q', "suppress all normal output")
	noMessages := opts.BoolLong("no-messages", 's', "suppress error messages")
	fixed := opts.BoolLong("fixed-strings", 'F', "PATTERNS are strings")
	opts.BoolLong("extended-regexp", 'E', "PATTERNS are extended regular expressions")
	opts.BoolLong("perl-regexp", 'P', "PATTERNS are Perl regular expressions")
	withFileName := opts.BoolLong("with-filename", 'H', "print file name with output lines")
	noFileName := opts.BoolLong("no-filename", 'h', "suppress the file name prefix on output")
	maxCount := opts.IntLong("max-count", 'm', 0, "stop after NUM selected lines")
	after := opts.IntLong("after-context", 'A', 0, "print NUM lines of trailing context")
	before := opts.IntLong("before-context", 'B', 0, "print NUM lines of leading context")
	context := opts.IntLong("context", 'C', 0, "print NUM lines of output context")
	var patterns stringList
	opts.FlagLong(&patterns, "regexp", 'e', "use PATTERNS for matching")
	cmd.ShowHelp = opts.BoolLong("help", 0, "show this help and exit")

	g := &grepOptions{color: &ColorPrinter{}}
	g.color.Init(opts, virtOS)

	return cmd.Run(virtOS, func() int {
		args := opts.Args()
		if len(patterns) == 0 {
			if len(args) == 0 {
				fmt.Fprintln(virtOS.Stderr(), "Usage: grep [OPTION]... PATTERNS [FILE]...")
				return 2
			}
			patterns, args = stringList{args[0]}, args[1:]
		}

		// Multiple patterns can also be separated by newlines.
		var alternatives []string
		for _, p := range patterns {
			for _, alt := range strings.Split(p, "\n") {
				if *fixed {
					alt = regexp.QuoteMeta(alt)
				}
				alternatives = append(alternatives, alt)
			}
		}
		pattern := strings.Join(alternatives, "|")
		switch {
		case *lineRegexp:
			pattern = `^(?:` + pattern + `)$`
		case *wordRegexp:
			pattern = `\b(?:` + pattern + `)\b`
		case len(alternatives) > 1:
			pattern = `(?:` + pattern + `)`
		}
		if *ignoreCase {
			pattern = "(?i)" + pattern
		}

		var err error
		if g.regex, err = regexp.Compile(pattern); err != nil {
			cmd.LogProgramError(virtOS, errors.New("invalid regular expression"))
			return 2
		}

		g.invert = *invert
		g.countOnly = *countOnly
		g.onlyMatching = *onlyMatching
		g.listFiles = *listFiles
		g.listNonMatching = *listNonMatching
		g.quiet = *quiet
		g.showLineNumbers = *showLineNumbers
		g.maxCount = *maxCount
		g.before, g.after = *before, *after
		if *context > 0 {
			g.before, g.after = *context, *context
		}
		isRecursive := *recursive || *recursiveAlias

		hadError := false
		reportError := func(err error) {
			hadError = true
			if !*noMessages {
				cmd.LogProgramError(virtOS, err)
			}
		}

		var inputs []grepInput
		switch {
		case len(args) == 0 && isRecursive:
			args = []string{"."}
		case len(args) == 0:
			inputs = append(inputs, grepInput{label: "(standard input)", content: vos.ReadAllStdin(virtOS)})
		}

		for _, name := range args {
			if name == "-" {
				inputs = append(inputs, grepInput{label: "(standard input)", content: vos.ReadAllStdin(virtOS)})
				continue
			}

			abs := virtOS.Resolve(name)
			node, err := virtOS.FS().Stat(abs)
			switch {
			case err != nil:
				reportError(fileError(name, err))
			case node.IsDir() && !isRecursive:
				reportError(fileError(name, vfs.ErrIsDir))
			case node.IsDir():
				virtOS.FS().Walk(abs, func(p string, n *vfs.Node) error {
					if n.IsFile() {
						rel := strings.TrimPrefix(strings.TrimPrefix(p, abs), "/")
						label := strings.TrimSuffix(name, "/") + "/" + rel
						inputs = append(inputs, grepInput{label: label, content: n.Content})
					}
					return nil
				})
			default:
				inputs = append(inputs, grepInput{label: name, content: node.Content})
			}
		}

		g.showFileName = (len(args) > 1 || isRecursive || *withFileName) && !*noFileName

		w := virtOS.Stdout()
		matched := false
		for _, in := range inputs {
			if g.grep(w, in) > 0 {
				matched = true
				if g.quiet {
					return 0
				}
			}
		}

		switch {
		case hadError:
			return 2
		case matched:
			return 0
		default:
			return 1
		}
	})
}

var _ vos.ProcessFunc = Grep

func init() {
	mustAddUsrBinCmd("grep", Grep)
}
