package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	files := map[string]string{
		"a.txt":       "hello",
		"b.log":       "",
		"dir/c.txt":   "x",
		"dir/sub/d.c": "d",
	}

	runCommandTests(t, Find, []commandTest{
		{name: "everything", args: []string{"find"}, files: files, want: ".\n./a.txt\n./b.log\n./dir\n./dir/c.txt\n./dir/sub\n./dir/sub/d.c\n"},
		{name: "name", args: []string{"find", ".", "-name", "*.txt"}, files: files, want: "./a.txt\n./dir/c.txt\n"},
		{name: "iname", args: []string{"find", "dir", "-iname", "C.TXT"}, files: files, want: "dir/c.txt\n"},
		{name: "type directory", args: []string{"find", "dir", "-type", "d"}, files: files, want: "dir\ndir/sub\n"},
		{name: "max depth", args: []string{"find", ".", "-maxdepth", "1", "-type", "f"}, files: files, want: "./a.txt\n./b.log\n"},
		{name: "min depth", args: []string{"find", "dir", "-mindepth", "2"}, files: files, want: "dir/sub/d.c\n"},
		{name: "empty", args: []string{"find", ".", "-type", "f", "-empty"}, files: files, want: "./b.log\n"},
		{name: "size", args: []string{"find", ".", "-size", "+2c"}, files: files, want: "./a.txt\n"},
		{name: "or", args: []string{"find", ".", "-name", "*.log", "-o", "-name", "*.c"}, files: files, want: "./b.log\n./dir/sub/d.c\n"},
		{name: "not", args: []string{"find", "dir", "!", "-name", "*.txt", "-type", "f"}, files: files, want: "dir/sub/d.c\n"},
		{name: "parentheses", args: []string{"find", ".", "(", "-name", "a*", "-o", "-name", "b*", ")", "-print"}, files: files, want: "./a.txt\n./b.log\n"},
		{name: "print0", args: []string{"find", "dir", "-name", "*.txt", "-print0"}, files: files, want: "dir/c.txt\x00"},
		{name: "exec", args: []string{"find", "dir", "-name", "*.txt", "-exec", "cat", "{}", ";"}, files: files, want: "x"},
		{name: "absolute root", args: []string{"find", "/home/user/dir", "-name", "*.c"}, files: files, want: "/home/user/dir/sub/d.c\n"},
		{name: "missing root", args: []string{"find", "nope"}, want: "find: 'nope': No such file or directory\n", wantCode: 1},
		{name: "unknown predicate", args: []string{"find", ".", "-bogus"}, want: "find: unknown predicate `-bogus'\n", wantCode: 1},
		{name: "missing argument", args: []string{"find", ".", "-name"}, want: "find: missing argument to `-name'\n", wantCode: 1},
		{name: "bad type", args: []string{"find", ".", "-type", "q"}, want: "find: unknown argument to -type: q\n", wantCode: 1},
	})
}

func TestFind_delete(t *testing.T) {
	fsys, out, code := runInTree(t, map[string]string{"dir/sub/x": "", "keep": ""}, "find", "dir", "-delete")
	assert.Equal(t, 0, code, out)
	assert.False(t, fsys.Exists("/home/user/dir"))
	assert.True(t, fsys.Exists("/home/user/keep"))
}
