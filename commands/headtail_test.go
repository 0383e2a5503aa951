package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHead(t *testing.T) {
	twelve := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n"

	runCommandTests(t, Head, []commandTest{
		{name: "default ten", args: []string{"head"}, stdin: stdin(twelve), want: "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"},
		{name: "lines", args: []string{"head", "-n", "2"}, stdin: stdin(twelve), want: "1\n2\n"},
		{name: "obsolete count", args: []string{"head", "-3"}, stdin: stdin(twelve), want: "1\n2\n3\n"},
		{name: "all but last", args: []string{"head", "-n", "-10"}, stdin: stdin(twelve), want: "1\n2\n"},
		{name: "bytes", args: []string{"head", "-c", "3"}, stdin: stdin("abcdef"), want: "abc"},
		{name: "more than input", args: []string{"head", "-n", "5"}, stdin: stdin("a\nb"), want: "a\nb"},
		{
			name:  "headers",
			args:  []string{"head", "-n", "1", "a.txt", "b.txt"},
			files: map[string]string{"a.txt": "a1\na2\n", "b.txt": "b1\n"},
			want:  "==> a.txt <==\na1\n\n==> b.txt <==\nb1\n",
		},
		{name: "quiet", args: []string{"head", "-q", "-n", "1", "a.txt", "b.txt"}, files: map[string]string{"a.txt": "a1\n", "b.txt": "b1\n"}, want: "a1\nb1\n"},
		{name: "missing", args: []string{"head", "nope"}, want: "head: nope: No such file or directory\n", wantCode: 1},
		{name: "invalid count", args: []string{"head", "-n", "x"}, want: "head: invalid number of lines: 'x'\n", wantCode: 1},
	})
}

func TestTail(t *testing.T) {
	twelve := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n"

	runCommandTests(t, Tail, []commandTest{
		{name: "default ten", args: []string{"tail"}, stdin: stdin(twelve), want: "3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n"},
		{name: "lines", args: []string{"tail", "-n", "2"}, stdin: stdin(twelve), want: "11\n12\n"},
		{name: "from line", args: []string{"tail", "-n", "+11"}, stdin: stdin(twelve), want: "11\n12\n"},
		{name: "obsolete count", args: []string{"tail", "-1"}, stdin: stdin(twelve), want: "12\n"},
		{name: "bytes", args: []string{"tail", "-c", "2"}, stdin: stdin("abcdef"), want: "ef"},
		{name: "bytes from", args: []string{"tail", "-c", "+5"}, stdin: stdin("abcdef"), want: "ef"},
		{name: "verbose stdin", args: []string{"tail", "-v", "-n", "1"}, stdin: stdin("x\n"), want: "==> standard input <==\nx\n"},
	})
}

func TestRewriteObsoleteCount(t *testing.T) {
	got := rewriteObsoleteCount(strings.Fields("head -5 -c 3 -- -7"))
	assert.Equal(t, strings.Fields("head -n 5 -c 3 -- -7"), got)
}
