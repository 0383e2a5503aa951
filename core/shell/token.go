package shell

import (
	"strings"
)

// Kind is the type of a token.
type Kind string

const (
	KindWord     Kind = "word"
	KindPipe     Kind = "pipe"
	KindRedirOut Kind = "redir_out"
	KindRedirIn  Kind = "redir_in"
	KindAppend   Kind = "append"
)

// Part is a run of characters in a word that share the same quoting.
type Part struct {
	Text string
	// Protected text came from single quotes or a backslash escape and is
	// never expanded.
	Protected bool
}

// Token is a word or an operator.
type Token struct {
	Kind Kind
	// Value is the word with quotes and escapes removed.
	Value string
	// Literal is set for words made only of single-quoted text.
	Literal bool
	// Parts holds the quoting of Value, nil for operators.
	Parts []Part
}

// Word creates an unquoted, expandable word token.
func Word(value string) Token {
	return Token{Kind: KindWord, Value: value, Parts: []Part{{Text: value}}}
}

// LiteralWord creates a single-quoted word token.
func LiteralWord(value string) Token {
	return Token{Kind: KindWord, Value: value, Literal: true, Parts: []Part{{Text: value, Protected: true}}}
}

func operator(kind Kind, value string) Token {
	return Token{Kind: kind, Value: value}
}

// wordBuilder accumulates the parts of the current word.
type wordBuilder struct {
	parts   []Part
	started bool
	// unquoted is set once anything outside single quotes is added.
	unquoted bool
}

func (b *wordBuilder) add(c rune, protected bool) {
	b.started = true
	if n := len(b.parts); n > 0 && b.parts[n-1].Protected == protected {
		b.parts[n-1].Text += string(c)
		return
	}
	b.parts = append(b.parts, Part{Text: string(c), Protected: protected})
}

func (b *wordBuilder) token() Token {
	var value strings.Builder
	for _, p := range b.parts {
		value.WriteString(p.Text)
	}
	return Token{
		Kind:    KindWord,
		Value:   value.String(),
		Literal: !b.unquoted,
		Parts:   b.parts,
	}
}

// Tokenize splits a statement into words and operators. It never fails:
// unterminated quotes run to the end of the input and a trailing backslash
// is kept as-is.
func Tokenize(line string) []Token {
	var (
		tokens []Token
		word   wordBuilder
	)

	flush := func() {
		if word.started {
			tokens = append(tokens, word.token())
		}
		word = wordBuilder{}
	}

	input := []rune(line)
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '#' && !word.started:
			flush()
			return tokens

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()

		case c == '>':
			flush()
			if i+1 < len(input) && input[i+1] == '>' {
				tokens = append(tokens, operator(KindAppend, ">>"))
				i++
			} else {
				tokens = append(tokens, operator(KindRedirOut, ">"))
			}

		case c == '<':
			flush()
			tokens = append(tokens, operator(KindRedirIn, "<"))

		case c == '|':
			flush()
			tokens = append(tokens, operator(KindPipe, "|"))

		case c == '\\':
			word.unquoted = true
			if i+1 < len(input) {
				i++
				word.add(input[i], true)
			} else {
				word.add(c, true)
			}

		case c == '"':
			word.unquoted = true
			word.started = true
			for i++; i < len(input) && input[i] != '"'; i++ {
				if input[i] == '\\' && i+1 < len(input) {
					i++
					word.add(input[i], true)
					continue
				}
				word.add(input[i], false)
			}

		case c == '\'':
			word.started = true
			for i++; i < len(input) && input[i] != '\''; i++ {
				word.add(input[i], true)
			}

		default:
			word.unquoted = true
			word.add(c, false)
		}
	}

	flush()
	return tokens
}

// Quote renders a word so that Tokenize turns it back into an equivalent
// word: same value, same protected characters.
func Quote(w Token) string {
	if w.Kind != KindWord {
		return w.Value
	}
	if len(w.Parts) == 0 {
		if w.Literal {
			return "''"
		}
		return `""`
	}

	var out strings.Builder
	for _, p := range w.Parts {
		if p.Protected {
			out.WriteString("'")
			out.WriteString(strings.ReplaceAll(p.Text, "'", `'\''`))
			out.WriteString("'")
			continue
		}

		out.WriteString(`"`)
		for _, c := range p.Text {
			if c == '"' || c == '\\' {
				out.WriteRune('\\')
			}
			out.WriteRune(c)
		}
		out.WriteString(`"`)
	}
	return out.String()
}
