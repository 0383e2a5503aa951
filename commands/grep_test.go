package commands

import (
	"testing"
)

func TestGrep(t *testing.T) {
	fruit := stdin("apple\nBanana\ncherry\ndate\n")
	files := map[string]string{
		"a.txt":         "one\ntwo\nthree\n",
		"b.txt":         "four\nfive\n",
		"dir/c.txt":     "two words\n",
		"dir/sub/d.txt": "nothing\n",
	}

	runCommandTests(t, Grep, []commandTest{
		{name: "stdin", args: []string{"grep", "an"}, stdin: fruit, want: "Banana\n"},
		{name: "no match", args: []string{"grep", "zzz"}, stdin: fruit, want: "", wantCode: 1},
		{name: "ignore case", args: []string{"grep", "-i", "b"}, stdin: fruit, want: "Banana\n"},
		{name: "invert", args: []string{"grep", "-v", "a"}, stdin: fruit, want: "cherry\n"},
		{name: "count", args: []string{"grep", "-c", "e"}, stdin: fruit, want: "3\n"},
		{name: "line numbers", args: []string{"grep", "-n", "rr"}, stdin: fruit, want: "3:cherry\n"},
		{name: "only matching", args: []string{"grep", "-o", "an"}, stdin: fruit, want: "an\nan\n"},
		{name: "regex", args: []string{"grep", "^[a-c]"}, stdin: fruit, want: "apple\ncherry\n"},
		{name: "fixed", args: []string{"grep", "-F", "a.p"}, stdin: stdin("a.p\naxp\n"), want: "a.p\n"},
		{name: "word", args: []string{"grep", "-w", "two"}, stdin: stdin("two\ntwofold\n"), want: "two\n"},
		{name: "line", args: []string{"grep", "-x", "two"}, stdin: stdin("two\ntwo words\n"), want: "two\n"},
		{name: "multiple patterns", args: []string{"grep", "-e", "apple", "-e", "date"}, stdin: fruit, want: "apple\ndate\n"},
		{name: "max count", args: []string{"grep", "-m", "1", "a"}, stdin: fruit, want: "apple\n"},
		{name: "quiet", args: []string{"grep", "-q", "apple"}, stdin: fruit, want: ""},
		{
			name:  "context",
			args:  []string{"grep", "-C", "1", "cherry"},
			stdin: stdin("1\n2\ncherry\n4\n5\n"),
			want:  "2\ncherry\n4\n",
		},
		{
			name:  "context separator",
			args:  []string{"grep", "-A", "1", "x"},
			stdin: stdin("x\na\nb\nx\nc\n"),
			want:  "x\na\n--\nx\nc\n",
		},
		{name: "file", args: []string{"grep", "t", "a.txt"}, files: files, want: "two\nthree\n"},
		{
			name:  "multiple files",
			args:  []string{"grep", "f", "a.txt", "b.txt"},
			files: files,
			want:  "b.txt:four\nb.txt:five\n",
		},
		{
			name:  "files with matches",
			args:  []string{"grep", "-l", "o", "a.txt", "b.txt"},
			files: files,
			want:  "a.txt\nb.txt\n",
		},
		{
			name:  "recursive",
			args:  []string{"grep", "-r", "two", "."},
			files: files,
			want:  "./a.txt:two\n./dir/c.txt:two words\n",
		},
		{
			name:     "directory",
			args:     []string{"grep", "x", "dir"},
			files:    files,
			want:     "grep: dir: Is a directory\n",
			wantCode: 2,
		},
		{
			name:     "missing",
			args:     []string{"grep", "x", "nope.txt"},
			want:     "grep: nope.txt: No such file or directory\n",
			wantCode: 2,
		},
		{
			name:     "silent missing",
			args:     []string{"grep", "-s", "x", "nope.txt"},
			want:     "",
			wantCode: 2,
		},
		{
			name:     "no pattern",
			args:     []string{"grep"},
			want:     "Usage: grep [OPTION]... PATTERNS [FILE]...\n",
			wantCode: 2,
		},
	})
}
