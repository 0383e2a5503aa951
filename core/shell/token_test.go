package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Kind == KindWord {
			out = append(out, t.Value)
		} else {
			out = append(out, string(t.Kind))
		}
	}
	return out
}

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		line string
		want []string
	}{
		"simple":             {"echo a  b", []string{"echo", "a", "b"}},
		"double quotes":      {`echo "a b" | cat`, []string{"echo", "a b", "pipe", "cat"}},
		"single quotes":      {`echo 'a "b"'`, []string{"echo", `a "b"`}},
		"adjacent spans":     {`echo a"b c"'d'`, []string{"echo", "ab cd"}},
		"escapes":            {`echo a\ b \"`, []string{"echo", "a b", `"`}},
		"escape in dquote":   {`echo "a\"b"`, []string{"echo", `a"b`}},
		"operators":          {"a>b<c>>d|e", []string{"a", "redir_out", "b", "redir_in", "c", "append", "d", "pipe", "e"}},
		"comment":            {"echo a # b c", []string{"echo", "a"}},
		"hash inside word":   {"echo a#b", []string{"echo", "a#b"}},
		"unterminated":       {`echo "abc`, []string{"echo", "abc"}},
		"unterminated sq":    {`echo 'abc`, []string{"echo", "abc"}},
		"trailing backslash": {`echo a\`, []string{"echo", `a\`}},
		"empty quotes":       {`echo "" ''`, []string{"echo", "", ""}},
		"empty":              {"   ", nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, words(Tokenize(tc.line)))
		})
	}
}

func TestTokenize_Literal(t *testing.T) {
	tokens := Tokenize(`'$X' "$X" $X a'$X'`)
	require.Len(t, tokens, 4)
	assert.True(t, tokens[0].Literal)
	assert.False(t, tokens[1].Literal)
	assert.False(t, tokens[2].Literal)
	assert.False(t, tokens[3].Literal)
	assert.Equal(t, []Part{{Text: "a"}, {Text: "$X", Protected: true}}, tokens[3].Parts)
}

func TestQuote(t *testing.T) {
	for _, line := range []string{
		`plain`,
		`'single $X'`,
		`"double $X"`,
		`mixed\$X"$Y"'$Z'`,
		`"it's"`,
		`'say "hi"'`,
		`back\\slash`,
		`""`,
		`''`,
	} {
		t.Run(line, func(t *testing.T) {
			original := Tokenize(line)
			require.Len(t, original, 1)

			requoted := Tokenize(Quote(original[0]))
			require.Len(t, requoted, 1)

			env := mapEnv{"X": "x", "Y": "y", "Z": "z"}
			assert.Equal(t, original[0].Value, requoted[0].Value)
			assert.Equal(t, ExpandWord(original[0], env), ExpandWord(requoted[0], env))
		})
	}
}

func TestParsePipeline(t *testing.T) {
	t.Run("two segments", func(t *testing.T) {
		segs := ParsePipeline(Tokenize(`echo "a b" | cat`))
		require.Len(t, segs, 2)
		assert.Equal(t, []string{"echo", "a b"}, segs[0].Args())
		assert.Equal(t, []string{"cat"}, segs[1].Args())
		assert.Nil(t, segs[0].Stdout)
	})

	t.Run("redirects", func(t *testing.T) {
		segs := ParsePipeline(Tokenize(`sort < in.txt > out.txt`))
		require.Len(t, segs, 1)
		assert.Equal(t, []string{"sort"}, segs[0].Args())
		assert.Equal(t, "in.txt", segs[0].Stdin.Value)
		assert.Equal(t, "out.txt", segs[0].Stdout.Value)
		assert.False(t, segs[0].Append)
	})

	t.Run("last redirect wins", func(t *testing.T) {
		segs := ParsePipeline(Tokenize(`echo hi > a >> b`))
		require.Len(t, segs, 1)
		assert.Equal(t, "b", segs[0].Stdout.Value)
		assert.True(t, segs[0].Append)
	})

	t.Run("dangling operator dropped", func(t *testing.T) {
		segs := ParsePipeline(Tokenize(`echo hi >`))
		require.Len(t, segs, 1)
		assert.Equal(t, []string{"echo", "hi"}, segs[0].Args())
		assert.Nil(t, segs[0].Stdout)
	})

	t.Run("zero word segment", func(t *testing.T) {
		segs := ParsePipeline(Tokenize(`echo hi | > f`))
		require.Len(t, segs, 2)
		assert.Empty(t, segs[1].Words)
		assert.Equal(t, "f", segs[1].Stdout.Value)
	})
}

func TestSplitStatements(t *testing.T) {
	cases := map[string][]string{
		"a; b;;c ":              {"a", "b", "c"},
		`echo "a;b"; c`:         {`echo "a;b"`, "c"},
		`echo 'a;b'`:            {`echo 'a;b'`},
		`find . -exec ls {} \;`: {`find . -exec ls {} \;`},
		"echo a # ; rm -rf /":   {"echo a"},
		"":                      nil,
	}

	for line, want := range cases {
		assert.Equal(t, want, SplitStatements(line), "SplitStatements(%q)", line)
	}
}

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string {
	return m[key]
}

func TestExpandWord(t *testing.T) {
	env := mapEnv{"X": "5", "HOME": "/home/user", "?": "1", "A_1": "a"}
	cases := map[string]string{
		`$X`:          "5",
		`${X}y`:       "5y",
		`$Xy`:         "",
		`'$X'`:        "$X",
		`"$X"`:        "5",
		`\$X`:         "$X",
		`"\$X"`:       "$X",
		`$?`:          "1",
		`$`:           "$",
		`a$`:          "a$",
		`$1`:          "$1",
		`${`:          "${",
		`${bad-name}`: "${bad-name}",
		`$A_1.txt`:    "a.txt",
		`$HOME/x`:     "/home/user/x",
		`$MISSING`:    "",
	}

	for input, want := range cases {
		tokens := Tokenize(input)
		require.Len(t, tokens, 1, input)
		assert.Equal(t, want, ExpandWord(tokens[0], env), "ExpandWord(%s)", input)
	}
}

func TestExpandWord_NoRecursion(t *testing.T) {
	env := mapEnv{"A": "$B", "B": "nope"}
	assert.Equal(t, "$B", ExpandWord(Word("$A"), env))
}

func TestSplitAssignment(t *testing.T) {
	name, ok := splitAssignment(Tokenize(`X=5`)[0])
	assert.True(t, ok)
	assert.Equal(t, "X", name)

	_, ok = splitAssignment(Tokenize(`'X=5'`)[0])
	assert.False(t, ok)
	_, ok = splitAssignment(Tokenize(`1X=5`)[0])
	assert.False(t, ok)
	_, ok = splitAssignment(Tokenize(`=5`)[0])
	assert.False(t, ok)
}

func TestParseSentinel(t *testing.T) {
	cases := []struct {
		output string
		kind   SentinelKind
		code   int
	}{
		{"plain\n", SentinelNone, 0},
		{"", SentinelNone, 0},
		{"__CLEAR__", SentinelKindClear, 0},
		{"__EXIT__3", SentinelKindExit, 3},
		{"__EXIT__-1", SentinelKindExit, -1},
		{"__EXIT__", SentinelKindExit, 0},
		{"__WIPEFS__", SentinelKindWipeFS, 0},
		{"__CLEAR____EXIT__1", SentinelKindClear, 0},
		{"bye\n__EXIT__3", SentinelNone, 0},
		{"see __WIPEFS__", SentinelNone, 0},
	}

	for _, tc := range cases {
		kind, code := ParseSentinel(tc.output)
		assert.Equal(t, tc.kind, kind, tc.output)
		assert.Equal(t, tc.code, code, tc.output)
	}

	assert.Equal(t, "__EXIT__42", ExitSentinel(42))
}

func TestAliasLoopError(t *testing.T) {
	var err error = &AliasLoopError{Name: "x", Chain: []string{"x", "x"}}
	assert.ErrorIs(t, err, ErrAliasLoop)
	assert.Equal(t, "x: alias loop detected (x -> x)", err.Error())
}
