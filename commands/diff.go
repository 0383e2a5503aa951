package commands

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

type diffLine struct {
	tag  byte
	text string
}

// diffHunk is a half open range of diffLines.
type diffHunk struct {
	start, end int
}

var diffBlankRun = regexp.MustCompile(`[ \t]+`)

type diffOptions struct {
	brief         bool
	reportSame    bool
	recursive     bool
	sideBySide    bool
	ignoreCase    bool
	ignoreChanges bool
	ignoreAll     bool
	context       int
	width         int
}

// key is the form of a line used for comparison.
func (o *diffOptions) key(line string) string {
	switch {
	case o.ignoreAll:
		line = diffBlankRun.ReplaceAllString(line, "")
	case o.ignoreChanges:
		line = strings.TrimRight(diffBlankRun.ReplaceAllString(line, " "), " ")
	}
	if o.ignoreCase {
		line = strings.ToLower(line)
	}
	return line
}

// diffLines aligns left and right on their longest common subsequence.
func (o *diffOptions) diffLines(left, right []string) []diffLine {
	lk := make([]string, len(left))
	for i, l := range left {
		lk[i] = o.key(l)
	}
	rk := make([]string, len(right))
	for i, r := range right {
		rk[i] = o.key(r)
	}

	lcs := make([][]int, len(left)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(right)+1)
	}
	for i := len(left) - 1; i >= 0; i-- {
		for j := len(right) - 1; j >= 0; j-- {
			switch {
			case lk[i] == rk[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var lines []diffLine
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		switch {
		case i < len(left) && j < len(right) && lk[i] == rk[j]:
			lines = append(lines, diffLine{tag: ' ', text: left[i]})
			i++
			j++
		case i < len(left) && (j == len(right) || lcs[i+1][j] >= lcs[i][j+1]):
			lines = append(lines, diffLine{tag: '-', text: left[i]})
			i++
		default:
			lines = append(lines, diffLine{tag: '+', text: right[j]})
			j++
		}
	}
	return lines
}

func diffChanged(lines []diffLine) bool {
	for _, l := range lines {
		if l.tag != ' ' {
			return true
		}
	}
	return false
}

// diffHunks groups changes with up to context unchanged lines around them,
// merging hunks whose context overlaps.
func diffHunks(lines []diffLine, context int) []diffHunk {
	var hunks []diffHunk
	for i := 0; i < len(lines); i++ {
		if lines[i].tag == ' ' {
			continue
		}
		start := i - context
		if start < 0 {
			start = 0
		}
		end := i + 1
		for end < len(lines) {
			if lines[end].tag != ' ' {
				end++
				continue
			}
			run := end
			for run < len(lines) && lines[run].tag == ' ' {
				run++
			}
			if run < len(lines) && run-end <= 2*context {
				end = run
				continue
			}
			end += context
			if end > len(lines) {
				end = len(lines)
			}
			break
		}
		hunks = append(hunks, diffHunk{start: start, end: end})
		i = end - 1
	}
	return hunks
}

// hunkRange formats the start,count pair of a unified hunk header.
func hunkRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func writeUnified(w io.Writer, lines []diffLine, left, right string, context int) {
	fmt.Fprintf(w, "--- %s\n+++ %s\n", left, right)

	aLine, bLine, pos := 1, 1, 0
	for _, h := range diffHunks(lines, context) {
		for ; pos < h.start; pos++ {
			aLine++
			bLine++
			if lines[pos].tag == '-' {
				bLine--
			} else if lines[pos].tag == '+' {
				aLine--
			}
		}

		aCount, bCount := 0, 0
		for _, l := range lines[h.start:h.end] {
			if l.tag != '+' {
				aCount++
			}
			if l.tag != '-' {
				bCount++
			}
		}
		fmt.Fprintf(w, "@@ -%s +%s @@\n", hunkRange(aLine, aCount), hunkRange(bLine, bCount))
		for _, l := range lines[h.start:h.end] {
			fmt.Fprintf(w, "%c%s\n", l.tag, l.text)
		}
		aLine += aCount
		bLine += bCount
		pos = h.end
	}
}

func writeSideBySide(w io.Writer, lines []diffLine, width int) {
	col := (width - 3) / 2
	clip := func(s string) string {
		s = expandTabs(s, 8, false)
		if r := []rune(s); len(r) > col {
			return string(r[:col])
		}
		return s
	}

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		switch l.tag {
		case ' ':
			fmt.Fprintf(w, "%-*s   %s\n", col, clip(l.text), clip(l.text))
		case '-':
			if i+1 < len(lines) && lines[i+1].tag == '+' {
				fmt.Fprintf(w, "%-*s | %s\n", col, clip(l.text), clip(lines[i+1].text))
				i++
				continue
			}
			fmt.Fprintf(w, "%-*s <\n", col, clip(l.text))
		case '+':
			fmt.Fprintf(w, "%-*s > %s\n", col, "", clip(l.text))
		}
	}
}

// Diff compares files line by line.
func Diff(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "diff [OPTION]... FILE1 FILE2",
		Short: "Compare FILES line by line.",
	}
	flags := cmd.Flags()
	opts := diffOptions{}
	flags.FlagLong(&opts.brief, "brief", 'q', "report only when files differ")
	flags.FlagLong(&opts.reportSame, "report-identical-files", 's', "report when two files are the same")
	flags.FlagLong(&opts.recursive, "recursive", 'r', "recursively compare any subdirectories found")
	flags.FlagLong(&opts.sideBySide, "side-by-side", 'y', "output in two columns")
	flags.FlagLong(&opts.ignoreCase, "ignore-case", 'i', "ignore case differences in file contents")
	flags.FlagLong(&opts.ignoreChanges, "ignore-space-change", 'b', "ignore changes in the amount of white space")
	flags.FlagLong(&opts.ignoreAll, "ignore-all-space", 'w', "ignore all white space")
	flags.BoolLong("unified", 'u', "output 3 lines of unified context")
	opts.context = 3
	flags.FlagLong(&opts.context, "unified-context", 'U', "output NUM lines of unified context")
	opts.width = 130
	flags.FlagLong(&opts.width, "width", 'W', "output at most NUM print columns")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		switch {
		case len(args) == 0:
			fmt.Fprintln(virtOS.Stderr(), "diff: missing operand after 'diff'")
			return 2
		case len(args) == 1:
			fmt.Fprintf(virtOS.Stderr(), "diff: missing operand after '%s'\n", args[0])
			return 2
		case len(args) > 2:
			fmt.Fprintf(virtOS.Stderr(), "diff: extra operand '%s'\n", args[2])
			return 2
		}
		if opts.context < 0 {
			opts.context = 0
		}

		d := &differ{virtOS: virtOS, cmd: cmd, opts: &opts}
		return d.paths(args[0], args[1])
	})
}

type differ struct {
	virtOS vos.VOS
	cmd    *SimpleCommand
	opts   *diffOptions
}

func (d *differ) paths(left, right string) int {
	fs := d.virtOS.FS()
	leftPath, rightPath := d.virtOS.Resolve(left), d.virtOS.Resolve(right)
	leftDir, rightDir := fs.IsDir(leftPath), fs.IsDir(rightPath)

	switch {
	case left == "-" || right == "-":
		return d.files(left, right)
	case leftDir && rightDir:
		return d.dirs(left, right)
	case leftDir:
		return d.paths(vfs.Join(left, vfs.Base(right)), right)
	case rightDir:
		return d.paths(left, vfs.Join(right, vfs.Base(left)))
	}
	return d.files(left, right)
}

func (d *differ) dirs(left, right string) int {
	fs := d.virtOS.FS()
	leftNames, err := fs.Ls(d.virtOS.Resolve(left))
	if err != nil {
		d.cmd.LogProgramError(d.virtOS, fileError(left, err))
		return 2
	}
	rightNames, err := fs.Ls(d.virtOS.Resolve(right))
	if err != nil {
		d.cmd.LogProgramError(d.virtOS, fileError(right, err))
		return 2
	}

	inRight := make(map[string]bool)
	for _, name := range rightNames {
		inRight[name] = true
	}
	inLeft := make(map[string]bool)
	for _, name := range leftNames {
		inLeft[name] = true
	}

	w := d.virtOS.Stdout()
	names := mergeSorted(leftNames, rightNames)
	exitCode := 0
	for _, name := range names {
		l, r := vfs.Join(left, name), vfs.Join(right, name)
		switch {
		case !inRight[name]:
			fmt.Fprintf(w, "Only in %s: %s\n", left, name)
			exitCode = maxExit(exitCode, 1)
			continue
		case !inLeft[name]:
			fmt.Fprintf(w, "Only in %s: %s\n", right, name)
			exitCode = maxExit(exitCode, 1)
			continue
		}

		lDir, rDir := d.virtOS.FS().IsDir(d.virtOS.Resolve(l)), d.virtOS.FS().IsDir(d.virtOS.Resolve(r))
		switch {
		case lDir && rDir:
			if d.opts.recursive {
				exitCode = maxExit(exitCode, d.dirs(l, r))
			} else {
				fmt.Fprintf(w, "Common subdirectories: %s and %s\n", l, r)
			}
		case lDir || rDir:
			fmt.Fprintf(w, "File %s is a %s while file %s is a %s\n", l, kindName(lDir), r, kindName(rDir))
			exitCode = maxExit(exitCode, 1)
		default:
			exitCode = maxExit(exitCode, d.files(l, r))
		}
	}
	return exitCode
}

func kindName(dir bool) string {
	if dir {
		return "directory"
	}
	return "regular file"
}

func maxExit(a, b int) int {
	if b > a {
		return b
	}
	return a
}

// mergeSorted returns the sorted union of two sorted name lists.
func mergeSorted(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func (d *differ) files(left, right string) int {
	leftText, exitCode := d.cmd.readInputs(d.virtOS, []string{left})
	if exitCode != 0 {
		return 2
	}
	rightText, exitCode := d.cmd.readInputs(d.virtOS, []string{right})
	if exitCode != 0 {
		return 2
	}

	w := d.virtOS.Stdout()
	lines := d.opts.diffLines(splitLines(leftText), splitLines(rightText))
	if !diffChanged(lines) {
		if d.opts.reportSame {
			fmt.Fprintf(w, "Files %s and %s are identical\n", left, right)
		}
		return 0
	}

	switch {
	case d.opts.brief:
		fmt.Fprintf(w, "Files %s and %s differ\n", left, right)
	case d.opts.sideBySide:
		writeSideBySide(w, lines, d.opts.width)
	default:
		writeUnified(w, lines, left, right, d.opts.context)
	}
	return 1
}

var _ vos.ProcessFunc = Diff

func init() {
	mustAddUsrBinCmd("diff", Diff)
}
