package commands

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// sedAddress selects lines by number, the last line ($) or a pattern.
type sedAddress struct {
	line  int
	last  bool
	regex *regexp.Regexp
}

func (a *sedAddress) matches(lineNo int, isLast bool, line string) bool {
	switch {
	case a.last:
		return isLast
	case a.regex != nil:
		return a.regex.MatchString(line)
	default:
		return a.line == lineNo
	}
}

type sedCommand struct {
	start, end *sedAddress
	negate     bool
	name       byte

	// s and y
	regex       *regexp.Regexp
	replacement string
	global      bool
	occurrence  int
	printResult bool
	from, to    []rune

	// a, i and c
	text string

	inRange bool
}

// selects reports whether the command applies to the current line, ranges
// keep their state between lines.
func (c *sedCommand) selects(lineNo int, isLast bool, line string) bool {
	matched := true
	switch {
	case c.start == nil:
	case c.end == nil:
		matched = c.start.matches(lineNo, isLast, line)
	case c.inRange:
		if c.end.regex == nil && !c.end.last && c.end.line <= lineNo {
			c.inRange = false
		} else if c.end.matches(lineNo, isLast, line) {
			c.inRange = false
		}
	case c.start.matches(lineNo, isLast, line):
		c.inRange = true
		if c.end.regex == nil && !c.end.last && c.end.line <= lineNo {
			c.inRange = false
		}
	default:
		matched = false
	}
	return matched != c.negate
}

type sedParser struct {
	script   string
	pos      int
	extended bool
}

var errSedUnterminated = errors.New("unterminated `s' command")

func (p *sedParser) eof() bool {
	return p.pos >= len(p.script)
}

func (p *sedParser) skipSpace() {
	for !p.eof() && (p.script[p.pos] == ' ' || p.script[p.pos] == '\t') {
		p.pos++
	}
}

// delimited reads up to the next unescaped delim. Escaped delimiters lose
// their backslash.
func (p *sedParser) delimited(delim byte) (string, error) {
	var out strings.Builder
	for !p.eof() {
		c := p.script[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.script):
			next := p.script[p.pos+1]
			if next != delim {
				out.WriteByte('\\')
			}
			out.WriteByte(next)
			p.pos += 2
		case c == delim:
			p.pos++
			return out.String(), nil
		default:
			out.WriteByte(c)
			p.pos++
		}
	}
	return "", errSedUnterminated
}

func (p *sedParser) compile(pattern, flags string) (*regexp.Regexp, error) {
	if !p.extended {
		pattern = basicToExtended(pattern)
	}
	re, err := regexp.Compile(flags + pattern)
	if err != nil {
		return nil, fmt.Errorf("-e expression #1, char %d: invalid regular expression", p.pos)
	}
	return re, nil
}

func (p *sedParser) address() (*sedAddress, error) {
	if p.eof() {
		return nil, nil
	}
	switch c := p.script[p.pos]; {
	case c == '$':
		p.pos++
		return &sedAddress{last: true}, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for !p.eof() && p.script[p.pos] >= '0' && p.script[p.pos] <= '9' {
			p.pos++
		}
		n, _ := strconv.Atoi(p.script[start:p.pos])
		return &sedAddress{line: n}, nil
	case c == '/':
		p.pos++
		pattern, err := p.delimited('/')
		if err != nil {
			return nil, errors.New("unterminated address regex")
		}
		flags := ""
		if !p.eof() && p.script[p.pos] == 'I' {
			flags = "(?i)"
			p.pos++
		}
		re, err := p.compile(pattern, flags)
		if err != nil {
			return nil, err
		}
		return &sedAddress{regex: re}, nil
	}
	return nil, nil
}

// text reads the argument of a, i or c: the rest of the line, with an
// optional leading backslash.
func (p *sedParser) text() string {
	if !p.eof() && p.script[p.pos] == '\\' {
		p.pos++
		if !p.eof() && p.script[p.pos] == '\n' {
			p.pos++
		}
	}
	p.skipSpace()
	end := strings.IndexByte(p.script[p.pos:], '\n')
	if end < 0 {
		end = len(p.script) - p.pos
	}
	text := p.script[p.pos : p.pos+end]
	p.pos += end
	return text
}

func (p *sedParser) command() (*sedCommand, error) {
	cmd := &sedCommand{}
	var err error
	if cmd.start, err = p.address(); err != nil {
		return nil, err
	}
	if cmd.start != nil && !p.eof() && p.script[p.pos] == ',' {
		p.pos++
		if cmd.end, err = p.address(); err != nil {
			return nil, err
		}
		if cmd.end == nil {
			return nil, errors.New("unexpected `,'")
		}
	}
	p.skipSpace()
	if !p.eof() && p.script[p.pos] == '!' {
		cmd.negate = true
		p.pos++
		p.skipSpace()
	}
	if p.eof() {
		return nil, errors.New("missing command")
	}

	cmd.name = p.script[p.pos]
	p.pos++
	switch cmd.name {
	case 'd', 'p', 'q', '=':
	case 'a', 'i', 'c':
		cmd.text = p.text()
	case 's':
		if p.eof() {
			return nil, errSedUnterminated
		}
		delim := p.script[p.pos]
		p.pos++
		pattern, err := p.delimited(delim)
		if err != nil {
			return nil, err
		}
		if cmd.replacement, err = p.delimited(delim); err != nil {
			return nil, err
		}
		flags := ""
	flagLoop:
		for !p.eof() {
			switch c := p.script[p.pos]; {
			case c == 'g':
				cmd.global = true
			case c == 'p':
				cmd.printResult = true
			case c == 'i' || c == 'I':
				flags = "(?i)"
			case c >= '0' && c <= '9':
				cmd.occurrence = cmd.occurrence*10 + int(c-'0')
			default:
				break flagLoop
			}
			p.pos++
		}
		if cmd.regex, err = p.compile(pattern, flags); err != nil {
			return nil, err
		}
	case 'y':
		if p.eof() {
			return nil, errors.New("unterminated `y' command")
		}
		delim := p.script[p.pos]
		p.pos++
		from, err := p.delimited(delim)
		if err != nil {
			return nil, errors.New("unterminated `y' command")
		}
		to, err := p.delimited(delim)
		if err != nil {
			return nil, errors.New("unterminated `y' command")
		}
		cmd.from, cmd.to = []rune(unescapeSedText(from)), []rune(unescapeSedText(to))
		if len(cmd.from) != len(cmd.to) {
			return nil, errors.New("strings for `y' command are different lengths")
		}
	default:
		return nil, fmt.Errorf("unknown command: `%c'", cmd.name)
	}
	return cmd, nil
}

func (p *sedParser) parse() ([]*sedCommand, error) {
	var out []*sedCommand
	for {
		for !p.eof() && strings.IndexByte(" \t\n;", p.script[p.pos]) >= 0 {
			p.pos++
		}
		if p.eof() {
			return out, nil
		}
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)

		p.skipSpace()
		if !p.eof() && strings.IndexByte(";\n}", p.script[p.pos]) < 0 {
			return nil, fmt.Errorf("-e expression #1, char %d: extra characters after command", p.pos+1)
		}
	}
}

// basicToExtended converts POSIX basic regular expression escapes into the
// extended syntax the regexp package understands.
func basicToExtended(pattern string) string {
	var out strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			next := pattern[i+1]
			i++
			switch next {
			case '(', ')', '{', '}', '+', '?', '|':
				out.WriteByte(next)
			default:
				out.WriteByte('\\')
				out.WriteByte(next)
			}
			continue
		}
		switch c {
		case '(', ')', '{', '}', '+', '?', '|':
			out.WriteByte('\\')
		}
		out.WriteByte(c)
	}
	return out.String()
}

func unescapeSedText(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(s)
}

// expandReplacement builds the text for one match: & is the whole match and
// \1 through \9 are groups.
func expandReplacement(repl, line string, match []int) string {
	var out strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '&':
			out.WriteString(line[match[0]:match[1]])
		case c == '\\' && i+1 < len(repl):
			i++
			next := repl[i]
			switch {
			case next >= '0' && next <= '9':
				g := int(next - '0')
				if 2*g+1 < len(match) && match[2*g] >= 0 {
					out.WriteString(line[match[2*g]:match[2*g+1]])
				}
			case next == 'n':
				out.WriteByte('\n')
			case next == 't':
				out.WriteByte('\t')
			default:
				out.WriteByte(next)
			}
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

func (c *sedCommand) substitute(line string) (string, bool) {
	matches := c.regex.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line, false
	}

	var out strings.Builder
	last := 0
	replaced := false
	for i, m := range matches {
		n := i + 1
		switch {
		case c.occurrence > 0 && n < c.occurrence:
			continue
		case c.occurrence > 0 && n > c.occurrence && !c.global:
			continue
		case c.occurrence == 0 && !c.global && n > 1:
			continue
		}
		out.WriteString(line[last:m[0]])
		out.WriteString(expandReplacement(c.replacement, line, m))
		last = m[1]
		replaced = true
	}
	out.WriteString(line[last:])
	return out.String(), replaced
}

func transliterate(line string, from, to []rune) string {
	return strings.Map(func(r rune) rune {
		for i, f := range from {
			if f == r {
				return to[i]
			}
		}
		return r
	}, line)
}

// runSed executes the script over text and returns the output.
func runSed(script []*sedCommand, text string, quiet bool) string {
	var out strings.Builder
	lines := splitLines(text)
	for i, line := range lines {
		lineNo, isLast := i+1, i == len(lines)-1
		deleted, quit := false, false
		var appended []string

	commands:
		for _, cmd := range script {
			if !cmd.selects(lineNo, isLast, line) {
				continue
			}
			switch cmd.name {
			case 'd':
				deleted = true
				break commands
			case 'p':
				out.WriteString(line + "\n")
			case 'q':
				quit = true
				break commands
			case '=':
				fmt.Fprintf(&out, "%d\n", lineNo)
			case 'a':
				appended = append(appended, cmd.text)
			case 'i':
				out.WriteString(cmd.text + "\n")
			case 'c':
				// Ranges are replaced as a whole.
				if cmd.end == nil || !cmd.inRange {
					out.WriteString(cmd.text + "\n")
				}
				deleted = true
				break commands
			case 's':
				var replaced bool
				line, replaced = cmd.substitute(line)
				if replaced && cmd.printResult {
					out.WriteString(line + "\n")
				}
			case 'y':
				line = transliterate(line, cmd.from, cmd.to)
			}
		}

		if !deleted && !quiet {
			out.WriteString(line + "\n")
		}
		for _, text := range appended {
			out.WriteString(text + "\n")
		}
		if quit {
			break
		}
	}
	return out.String()
}

// Sed implements a subset of the POSIX stream editor.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/sed.html
func Sed(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sed [OPTION]... {script} [FILE]...",
		Short: "Stream editor for filtering and transforming text.",
	}
	opts := cmd.Flags()
	quiet := opts.BoolLong("quiet", 'n', "suppress automatic printing of pattern space")
	var expressions stringList
	opts.FlagLong(&expressions, "expression", 'e', "add the script to the commands to be executed")
	inPlace := opts.BoolLong("in-place", 'i', "edit files in place")
	extended := opts.BoolLong("regexp-extended", 'E', "use extended regular expressions in the script")
	regexpExtended := opts.Bool('r', "same as -E")
	opts.BoolLong("separate", 's', "consider files as separate rather than as a single continuous long stream")

	return cmd.Run(virtOS, func() int {
		args := opts.Args()
		scripts := expressions
		if len(scripts) == 0 {
			if len(args) == 0 {
				fmt.Fprintln(virtOS.Stderr(), "Usage: sed [OPTION]... {script-only-if-no-other-script} [input-file]...")
				return 1
			}
			scripts, args = []string{args[0]}, args[1:]
		}

		parser := &sedParser{script: strings.Join(scripts, "\n"), extended: *extended || *regexpExtended}
		script, err := parser.parse()
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "sed: %s\n", err)
			return 1
		}

		if *inPlace {
			if len(args) == 0 {
				fmt.Fprintln(virtOS.Stderr(), "sed: no input files")
				return 1
			}
			exitCode := 0
			for _, name := range args {
				content, err := readFile(virtOS, name)
				if err != nil {
					fmt.Fprintf(virtOS.Stderr(), "sed: can't read %s\n", describe(err))
					exitCode = 2
					continue
				}
				// Each file starts with fresh range state.
				script, _ := (&sedParser{script: parser.script, extended: parser.extended}).parse()
				if err := virtOS.FS().Write(virtOS.Resolve(name), runSed(script, content, *quiet)); err != nil {
					cmd.LogProgramError(virtOS, fileError(name, err))
					exitCode = 4
				}
			}
			return exitCode
		}

		text, exitCode := cmd.readInputs(virtOS, args)
		fmt.Fprint(virtOS.Stdout(), runSed(script, text, *quiet))
		if exitCode != 0 {
			return 2
		}
		return 0
	})
}

var _ vos.ProcessFunc = Sed

func init() {
	mustAddUsrBinCmd("sed", Sed)
}
