package shell

import (
	"strings"
)

// Segment is one command of a pipeline.
type Segment struct {
	// Words holds the command and its arguments, unexpanded.
	Words []Token
	// Stdin is the target of "<", nil if there was none.
	Stdin *Token
	// Stdout is the target of ">" or ">>", nil if there was none.
	Stdout *Token
	// Append is set when Stdout came from ">>".
	Append bool
}

// Args returns the unexpanded values of the segment's words.
func (s *Segment) Args() []string {
	out := make([]string, len(s.Words))
	for i, w := range s.Words {
		out[i] = w.Value
	}
	return out
}

// ParsePipeline groups tokens into segments separated by pipes. An operator
// with no word after it is dropped, the last redirection of each kind wins.
func ParsePipeline(tokens []Token) []Segment {
	var (
		segments []Segment
		current  Segment
	)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		var target *Token
		if i+1 < len(tokens) && tokens[i+1].Kind == KindWord {
			next := tokens[i+1]
			target = &next
		}

		switch tok.Kind {
		case KindPipe:
			segments = append(segments, current)
			current = Segment{}

		case KindAppend, KindRedirOut:
			if target == nil {
				continue
			}
			current.Stdout = target
			current.Append = tok.Kind == KindAppend
			i++

		case KindRedirIn:
			if target == nil {
				continue
			}
			current.Stdin = target
			i++

		default:
			current.Words = append(current.Words, tok)
		}
	}

	return append(segments, current)
}

// SplitStatements splits a line on ";" outside of quotes. A backslash keeps
// the next character, including ";", in the statement. An unquoted "#" at the
// start of a word comments out the rest of the line. Statements are trimmed
// and empty ones dropped.
func SplitStatements(line string) []string {
	var (
		out     []string
		current strings.Builder
		quote   rune
	)

	push := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			out = append(out, stmt)
		}
		current.Reset()
	}

	atWordStart := func() bool {
		s := current.String()
		if s == "" {
			return true
		}
		switch s[len(s)-1] {
		case ' ', '\t', '\n', '|', '<', '>':
			return true
		}
		return false
	}

	input := []rune(line)
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote == '\'':
			current.WriteRune(c)
			if c == '\'' {
				quote = 0
			}

		case c == '\\':
			current.WriteRune(c)
			if i+1 < len(input) {
				i++
				current.WriteRune(input[i])
			}

		case quote == '"':
			current.WriteRune(c)
			if c == '"' {
				quote = 0
			}

		case c == '\'' || c == '"':
			quote = c
			current.WriteRune(c)

		case c == '#' && atWordStart():
			push()
			return out

		case c == ';':
			push()

		default:
			current.WriteRune(c)
		}
	}

	push()
	return out
}
