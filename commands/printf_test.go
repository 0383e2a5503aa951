package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintf(t *testing.T) {
	runCommandTests(t, Printf, []commandTest{
		{name: "plain", args: []string{"printf", "hello"}, want: "hello"},
		{name: "escapes", args: []string{"printf", `a\tb\n`}, want: "a\tb\n"},
		{name: "format reused", args: []string{"printf", `%s\n`, "a", "b"}, want: "a\nb\n"},
		{name: "missing args", args: []string{"printf", `%s-%s\n`, "a"}, want: "a-\n"},
		{name: "width", args: []string{"printf", "%-4s|%4s|", "a", "b"}, want: "a   |   b|"},
		{name: "zero padded", args: []string{"printf", "%05d", "42"}, want: "00042"},
		{name: "star width", args: []string{"printf", "%*d", "3", "7"}, want: "  7"},
		{name: "float", args: []string{"printf", "%.2f", "3.14159"}, want: "3.14"},
		{name: "upper exponent", args: []string{"printf", "%.1E", "1500"}, want: "1.5E+03"},
		{name: "hex", args: []string{"printf", "%x %X %o", "255", "255", "8"}, want: "ff FF 10"},
		{name: "hex input", args: []string{"printf", "%d", "0x10"}, want: "16"},
		{name: "character code", args: []string{"printf", "%d", "'A"}, want: "65"},
		{name: "char", args: []string{"printf", "%c", "hello"}, want: "h"},
		{name: "percent", args: []string{"printf", "100%%"}, want: "100%"},
		{name: "b escapes", args: []string{"printf", "%b", `x\ty\0101`}, want: "x\tyA"},
		{name: "b stops at c", args: []string{"printf", "%b|after", `one\ctwo`}, want: "one"},
		{name: "quoted", args: []string{"printf", "%q", "a b"}, want: "'a b'"},
		{name: "invalid number", args: []string{"printf", "%d", "abc"}, want: "0printf: abc: invalid number\n", wantCode: 1},
		{name: "no format", args: []string{"printf"}, want: "printf: usage: printf format [arguments]\n", wantCode: 2},
	})
}

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"plain":      "plain",
		"":           "''",
		"two words":  "'two words'",
		"it's":       `'it'\''s'`,
		"/tmp/a.txt": "/tmp/a.txt",
	}

	for in, want := range cases {
		assert.Equal(t, want, shellQuote(in), "input %q", in)
	}
}
