package shell

import (
	"strings"
)

// Env looks up variables during expansion.
type Env interface {
	Getenv(key string) string
}

// ExpandWord substitutes variables in the unprotected parts of a word.
// Literal words are returned verbatim. Expansion is a single pass, values
// are never re-expanded.
func ExpandWord(w Token, env Env) string {
	if w.Literal {
		return w.Value
	}

	var out strings.Builder
	for _, p := range w.Parts {
		if p.Protected {
			out.WriteString(p.Text)
		} else {
			out.WriteString(expandText(p.Text, env))
		}
	}
	return out.String()
}

// ExpandWords expands each word.
func ExpandWords(words []Token, env Env) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = ExpandWord(w, env)
	}
	return out
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}

// IsName returns true if s is a valid variable name.
func IsName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func expandText(s string, env Env) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}

		next := s[i+1]
		switch {
		case next == '?':
			out.WriteString(env.Getenv("?"))
			i++

		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				out.WriteByte('$')
				continue
			}
			name := s[i+2 : i+2+end]
			if !IsName(name) && name != "?" {
				out.WriteByte('$')
				continue
			}
			out.WriteString(env.Getenv(name))
			i += 2 + end

		case isNameStart(next):
			j := i + 1
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			out.WriteString(env.Getenv(s[i+1 : j]))
			i = j - 1

		default:
			out.WriteByte('$')
		}
	}
	return out.String()
}

// splitAssignment returns the name and raw value of a NAME=value word.
func splitAssignment(w Token) (name string, ok bool) {
	idx := strings.IndexByte(w.Value, '=')
	if idx <= 0 {
		return "", false
	}
	name = w.Value[:idx]
	if !IsName(name) {
		return "", false
	}
	// The name and "=" must not be quoted or escaped.
	if len(w.Parts) == 0 || w.Parts[0].Protected || len(w.Parts[0].Text) <= idx {
		return "", false
	}
	return name, true
}
