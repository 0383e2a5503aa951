package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSed(t *testing.T) {
	abc := stdin("apple\nbanana\ncherry\n")

	runCommandTests(t, Sed, []commandTest{
		{name: "substitute first", args: []string{"sed", "s/a/A/"}, stdin: abc, want: "Apple\nbAnana\ncherry\n"},
		{name: "substitute global", args: []string{"sed", "s/a/A/g"}, stdin: abc, want: "Apple\nbAnAnA\ncherry\n"},
		{name: "substitute nth", args: []string{"sed", "s/a/A/2"}, stdin: abc, want: "apple\nbanAna\ncherry\n"},
		{name: "ignore case", args: []string{"sed", "s/APPLE/pear/I"}, stdin: abc, want: "pear\nbanana\ncherry\n"},
		{name: "groups", args: []string{"sed", `s/\(b\)\(a\)/\2\1/`}, stdin: abc, want: "apple\nabnana\ncherry\n"},
		{name: "extended groups", args: []string{"sed", "-E", `s/(an)+/X/`}, stdin: abc, want: "apple\nbXa\ncherry\n"},
		{name: "ampersand", args: []string{"sed", "s/err/[&]/"}, stdin: abc, want: "apple\nbanana\nch[err]y\n"},
		{name: "alternate delimiter", args: []string{"sed", "s|a|/|"}, stdin: abc, want: "/pple\nb/nana\ncherry\n"},
		{name: "delete line", args: []string{"sed", "2d"}, stdin: abc, want: "apple\ncherry\n"},
		{name: "delete last", args: []string{"sed", "$d"}, stdin: abc, want: "apple\nbanana\n"},
		{name: "delete regex", args: []string{"sed", "/an/d"}, stdin: abc, want: "apple\ncherry\n"},
		{name: "negated address", args: []string{"sed", "/an/!d"}, stdin: abc, want: "banana\n"},
		{name: "range", args: []string{"sed", "1,2d"}, stdin: abc, want: "cherry\n"},
		{name: "quiet print", args: []string{"sed", "-n", "2p"}, stdin: abc, want: "banana\n"},
		{name: "print doubles", args: []string{"sed", "1p"}, stdin: abc, want: "apple\napple\nbanana\ncherry\n"},
		{name: "quit", args: []string{"sed", "1q"}, stdin: abc, want: "apple\n"},
		{name: "line numbers", args: []string{"sed", "-n", "$="}, stdin: abc, want: "3\n"},
		{name: "transliterate", args: []string{"sed", "y/abc/xyz/"}, stdin: abc, want: "xpple\nyxnxnx\nzherry\n"},
		{name: "append", args: []string{"sed", "1a after"}, stdin: abc, want: "apple\nafter\nbanana\ncherry\n"},
		{name: "insert", args: []string{"sed", "2i before"}, stdin: abc, want: "apple\nbefore\nbanana\ncherry\n"},
		{name: "change", args: []string{"sed", "3c changed"}, stdin: abc, want: "apple\nbanana\nchanged\n"},
		{name: "multiple commands", args: []string{"sed", "s/a/A/;s/e/E/"}, stdin: abc, want: "ApplE\nbAnana\nchErry\n"},
		{name: "expressions", args: []string{"sed", "-e", "1d", "-e", "s/n/N/g"}, stdin: abc, want: "baNaNa\ncherry\n"},
		{
			name:  "file",
			args:  []string{"sed", "s/o/0/g", "f.txt"},
			files: map[string]string{"f.txt": "foo\nboo\n"},
			want:  "f00\nb00\n",
		},
		{
			name:     "missing file",
			args:     []string{"sed", "p", "nope"},
			want:     "sed: nope: No such file or directory\n",
			wantCode: 2,
		},
		{
			name:     "no script",
			args:     []string{"sed"},
			want:     "Usage: sed [OPTION]... {script-only-if-no-other-script} [input-file]...\n",
			wantCode: 1,
		},
	})
}

func TestSed_inPlace(t *testing.T) {
	cmd := newTestCommand(Sed, "sed", "-i", "s/world/there/", "greeting.txt")
	cmd.Setup = writeTestFiles(map[string]string{"greeting.txt": "hello world\n"})

	assert.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Equal(t, "", cmd.Output)

	content, err := cmd.Engine().FS().Read("/home/user/greeting.txt")
	assert.NoError(t, err)
	assert.Equal(t, "hello there\n", content)
}

func TestBasicToExtended(t *testing.T) {
	cases := map[string]string{
		`a\(b\)c`: `a(b)c`,
		`a(b)c`:   `a\(b\)c`,
		`x\{2\}`:  `x{2}`,
		`a+`:      `a\+`,
		`a\+`:     `a+`,
		`\.`:      `\.`,
	}

	for in, want := range cases {
		assert.Equal(t, want, basicToExtended(in), in)
	}
}
