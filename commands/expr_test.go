package commands

import (
	"testing"
)

func TestExpr(t *testing.T) {
	runCommandTests(t, Expr, []commandTest{
		{name: "addition", args: []string{"expr", "1", "+", "2"}, want: "3\n"},
		{name: "precedence", args: []string{"expr", "2", "+", "3", "*", "4"}, want: "14\n"},
		{name: "parentheses", args: []string{"expr", "(", "2", "+", "3", ")", "*", "4"}, want: "20\n"},
		{name: "division", args: []string{"expr", "7", "/", "2"}, want: "3\n"},
		{name: "modulo", args: []string{"expr", "7", "%", "2"}, want: "1\n"},
		{name: "negative", args: []string{"expr", "1", "-", "5"}, want: "-4\n"},
		{name: "zero result", args: []string{"expr", "2", "-", "2"}, want: "0\n", wantCode: 1},
		{name: "numeric compare", args: []string{"expr", "3", "<", "10"}, want: "1\n"},
		{name: "string compare", args: []string{"expr", "b", "<", "a"}, want: "0\n", wantCode: 1},
		{name: "equal", args: []string{"expr", "abc", "=", "abc"}, want: "1\n"},
		{name: "or", args: []string{"expr", "", "|", "fallback"}, want: "fallback\n"},
		{name: "or both null", args: []string{"expr", "0", "|", ""}, want: "0\n", wantCode: 1},
		{name: "and", args: []string{"expr", "a", "&", "0"}, want: "0\n", wantCode: 1},
		{name: "match length", args: []string{"expr", "abcdef", ":", "abc"}, want: "3\n"},
		{name: "match group", args: []string{"expr", "abc", ":", `a\(.\)c`}, want: "b\n"},
		{name: "no match", args: []string{"expr", "abc", ":", "x"}, want: "0\n", wantCode: 1},
		{name: "match keyword", args: []string{"expr", "match", "hello", "h.l"}, want: "3\n"},
		{name: "length", args: []string{"expr", "length", "hello"}, want: "5\n"},
		{name: "index", args: []string{"expr", "index", "hello", "ol"}, want: "3\n"},
		{name: "substr", args: []string{"expr", "substr", "hello", "2", "3"}, want: "ell\n"},
		{name: "substr out of range", args: []string{"expr", "substr", "hello", "9", "1"}, want: "\n", wantCode: 1},
		{name: "quoted operator", args: []string{"expr", "+", "length"}, want: "length\n"},
		{name: "division by zero", args: []string{"expr", "1", "/", "0"}, want: "expr: division by zero\n", wantCode: 2},
		{name: "non integer", args: []string{"expr", "a", "+", "1"}, want: "expr: non-integer argument\n", wantCode: 2},
		{name: "dangling operator", args: []string{"expr", "1", "+"}, want: "expr: syntax error\n", wantCode: 2},
		{name: "extra argument", args: []string{"expr", "1", "2"}, want: "expr: syntax error: unexpected argument '2'\n", wantCode: 2},
		{name: "missing operand", args: []string{"expr"}, want: "expr: missing operand\n", wantCode: 2},
	})
}
