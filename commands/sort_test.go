package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	runCommandTests(t, Sort, []commandTest{
		{name: "lexical", args: []string{"sort"}, stdin: stdin("pear\napple\nfig\n"), want: "apple\nfig\npear\n"},
		{name: "numeric reverse", args: []string{"sort", "-rn"}, stdin: stdin("1\n3\n2\n"), want: "3\n2\n1\n"},
		{name: "numeric with text", args: []string{"sort", "-n"}, stdin: stdin("10 ten\n9 nine\nnone\n"), want: "none\n9 nine\n10 ten\n"},
		{name: "unique", args: []string{"sort", "-u"}, stdin: stdin("b\na\nb\n"), want: "a\nb\n"},
		{name: "fold case", args: []string{"sort", "-f"}, stdin: stdin("b\nA\nC\n"), want: "A\nb\nC\n"},
		{name: "key and separator", args: []string{"sort", "-t", ",", "-k", "2"}, stdin: stdin("x,3\ny,1\nz,2\n"), want: "y,1\nz,2\nx,3\n"},
		{name: "numeric key", args: []string{"sort", "-k", "2n", "-n"}, stdin: stdin("a 10\nb 9\n"), want: "b 9\na 10\n"},
		{name: "human", args: []string{"sort", "-h"}, stdin: stdin("2K\n1G\n512\n"), want: "512\n2K\n1G\n"},
		{name: "month", args: []string{"sort", "-M"}, stdin: stdin("Mar\nJan\nFeb\n"), want: "Jan\nFeb\nMar\n"},
		{name: "files", args: []string{"sort", "a.txt", "b.txt"}, files: map[string]string{"a.txt": "c\na\n", "b.txt": "b\n"}, want: "a\nb\nc\n"},
		{name: "missing file", args: []string{"sort", "nope"}, want: "sort: nope: No such file or directory\n", wantCode: 2},
		{name: "check sorted", args: []string{"sort", "-c"}, stdin: stdin("a\nb\n")},
		{name: "check unsorted", args: []string{"sort", "-c"}, stdin: stdin("b\na\n"), want: "sort: -:2: disorder: a\n", wantCode: 1},
		{name: "bad key", args: []string{"sort", "-k", "0"}, stdin: stdin("a\n"), want: "sort: invalid number at field start: invalid count at start of '0'\n", wantCode: 2},
		{name: "multi char separator", args: []string{"sort", "-t", "ab"}, stdin: stdin("a\n"), want: "sort: multi-character tab 'ab'\n", wantCode: 2},
		{name: "empty", args: []string{"sort"}, stdin: stdin("")},
	})
}

func TestSort_output(t *testing.T) {
	cmd := newTestCommand(Sort, "sort", "-o", "sorted.txt")
	cmd.WithStdin("b\na\n")

	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Empty(t, cmd.Output)

	got, err := cmd.Engine().FS().Read("/home/user/sorted.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", got)
}

func TestUniq(t *testing.T) {
	runCommandTests(t, Uniq, []commandTest{
		{name: "adjacent", args: []string{"uniq"}, stdin: stdin("a\na\nb\na\n"), want: "a\nb\na\n"},
		{name: "count", args: []string{"uniq", "-c"}, stdin: stdin("a\na\nb\n"), want: "      2 a\n      1 b\n"},
		{name: "repeated", args: []string{"uniq", "-d"}, stdin: stdin("a\na\nb\n"), want: "a\n"},
		{name: "unique", args: []string{"uniq", "-u"}, stdin: stdin("a\na\nb\n"), want: "b\n"},
		{name: "ignore case", args: []string{"uniq", "-i"}, stdin: stdin("A\na\n"), want: "A\n"},
		{name: "skip fields", args: []string{"uniq", "-f", "1"}, stdin: stdin("1 x\n2 x\n3 y\n"), want: "1 x\n3 y\n"},
		{name: "skip chars", args: []string{"uniq", "-s", "1"}, stdin: stdin("ax\nbx\n"), want: "ax\n"},
		{name: "check chars", args: []string{"uniq", "-w", "1"}, stdin: stdin("ab\nac\n"), want: "ab\n"},
		{name: "input file", args: []string{"uniq", "in.txt"}, files: map[string]string{"in.txt": "z\nz\n"}, want: "z\n"},
		{name: "extra operand", args: []string{"uniq", "a", "b", "c"}, want: "uniq: extra operand 'c'\n", wantCode: 1},
	})
}
