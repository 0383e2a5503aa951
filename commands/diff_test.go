package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	files := map[string]string{
		"a.txt":     "a\nb\nc\n",
		"b.txt":     "a\nB\nc\n",
		"copy.txt":  "a\nb\nc\n",
		"short.txt": "a\n",
		"long.txt":  "a\nb\n",
		"upper.txt": "A\nB\nC\n",
		"space.txt": "a \nb\n  c\n",

		"d1/same.txt":  "same\n",
		"d1/only1.txt": "1\n",
		"d1/sub/x":     "x\n",
		"d2/same.txt":  "same\n",
		"d2/only2.txt": "2\n",
		"d2/sub/x":     "y\n",
	}

	runCommandTests(t, Diff, []commandTest{
		{
			name:     "unified",
			args:     []string{"diff", "a.txt", "b.txt"},
			files:    files,
			want:     "--- a.txt\n+++ b.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n",
			wantCode: 1,
		},
		{
			name:     "no context",
			args:     []string{"diff", "-U", "0", "a.txt", "b.txt"},
			files:    files,
			want:     "--- a.txt\n+++ b.txt\n@@ -2 +2 @@\n-b\n+B\n",
			wantCode: 1,
		},
		{
			name:     "pure addition",
			args:     []string{"diff", "-U", "0", "short.txt", "long.txt"},
			files:    files,
			want:     "--- short.txt\n+++ long.txt\n@@ -1,0 +2 @@\n+b\n",
			wantCode: 1,
		},
		{name: "identical", args: []string{"diff", "a.txt", "copy.txt"}, files: files},
		{name: "report identical", args: []string{"diff", "-s", "a.txt", "copy.txt"}, files: files, want: "Files a.txt and copy.txt are identical\n"},
		{name: "brief", args: []string{"diff", "-q", "a.txt", "b.txt"}, files: files, want: "Files a.txt and b.txt differ\n", wantCode: 1},
		{name: "ignore case", args: []string{"diff", "-i", "a.txt", "upper.txt"}, files: files},
		{name: "ignore all space", args: []string{"diff", "-w", "a.txt", "space.txt"}, files: files},
		{
			name:     "side by side",
			args:     []string{"diff", "-y", "-W", "21", "a.txt", "b.txt"},
			files:    files,
			want:     "a" + strings.Repeat(" ", 11) + "a\n" + "b" + strings.Repeat(" ", 8) + " | B\n" + "c" + strings.Repeat(" ", 11) + "c\n",
			wantCode: 1,
		},
		{
			name:     "directories",
			args:     []string{"diff", "d1", "d2"},
			files:    files,
			want:     "Only in d1: only1.txt\nOnly in d2: only2.txt\nCommon subdirectories: d1/sub and d2/sub\n",
			wantCode: 1,
		},
		{
			name:     "recursive",
			args:     []string{"diff", "-r", "d1", "d2"},
			files:    files,
			want:     "Only in d1: only1.txt\nOnly in d2: only2.txt\n--- d1/sub/x\n+++ d2/sub/x\n@@ -1 +1 @@\n-x\n+y\n",
			wantCode: 1,
		},
		{name: "file into directory", args: []string{"diff", "d1/same.txt", "d2"}, files: files},
		{name: "stdin", args: []string{"diff", "-", "copy.txt"}, files: files, stdin: stdin("a\nb\nc\n")},
		{name: "missing file", args: []string{"diff", "a.txt", "nope"}, files: files, want: "diff: nope: No such file or directory\n", wantCode: 2},
		{name: "no operands", args: []string{"diff"}, want: "diff: missing operand after 'diff'\n", wantCode: 2},
		{name: "one operand", args: []string{"diff", "a.txt"}, want: "diff: missing operand after 'a.txt'\n", wantCode: 2},
	})
}

func TestDiffHunks(t *testing.T) {
	lines := make([]diffLine, 20)
	for i := range lines {
		lines[i] = diffLine{tag: ' '}
	}
	lines[2].tag = '-'
	lines[6].tag = '+'
	lines[18].tag = '-'

	// The first two changes are close enough to share context.
	assert.Equal(t, []diffHunk{{0, 10}, {15, 20}}, diffHunks(lines, 3))
	assert.Equal(t, []diffHunk{{2, 3}, {6, 7}, {18, 19}}, diffHunks(lines, 0))
}

func TestHunkRange(t *testing.T) {
	assert.Equal(t, "4,0", hunkRange(5, 0))
	assert.Equal(t, "5", hunkRange(5, 1))
	assert.Equal(t, "5,3", hunkRange(5, 3))
}
