package commands

import (
	"strings"
	"testing"

	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/josephlewis42/mathshell/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasename(t *testing.T) {
	runCommandTests(t, Basename, []commandTest{
		{name: "path", args: []string{"basename", "/usr/lib/file.txt"}, want: "file.txt\n"},
		{name: "suffix operand", args: []string{"basename", "/usr/lib/file.txt", ".txt"}, want: "file\n"},
		{name: "suffix is whole name", args: []string{"basename", ".txt", ".txt"}, want: ".txt\n"},
		{name: "trailing slash", args: []string{"basename", "dir/"}, want: "dir\n"},
		{name: "root", args: []string{"basename", "/"}, want: "/\n"},
		{name: "multiple", args: []string{"basename", "-a", "a/b", "c/d"}, want: "b\nd\n"},
		{name: "suffix flag", args: []string{"basename", "-s", ".c", "x.c", "y.c"}, want: "x\ny\n"},
		{name: "zero", args: []string{"basename", "-z", "a/b"}, want: "b\x00"},
		{name: "missing operand", args: []string{"basename"}, want: "basename: missing operand\n", wantCode: 1},
		{name: "extra operand", args: []string{"basename", "a", "b", "c"}, want: "basename: extra operand 'c'\n", wantCode: 1},
	})
}

func TestDirname(t *testing.T) {
	runCommandTests(t, Dirname, []commandTest{
		{name: "path", args: []string{"dirname", "/usr/lib"}, want: "/usr\n"},
		{name: "bare name", args: []string{"dirname", "file"}, want: ".\n"},
		{name: "root", args: []string{"dirname", "/"}, want: "/\n"},
		{name: "trailing slash", args: []string{"dirname", "a/b/"}, want: "a\n"},
		{name: "top level", args: []string{"dirname", "//x"}, want: "/\n"},
		{name: "multiple", args: []string{"dirname", "a/b", "c"}, want: "a\n.\n"},
		{name: "missing operand", args: []string{"dirname"}, want: "dirname: missing operand\n", wantCode: 1},
	})
}

// withLink creates real.txt, a link to it and a nested directory.
func withLink(virtOS vos.VOS) error {
	fsys := virtOS.FS()
	if err := fsys.Write("/home/user/real.txt", "content"); err != nil {
		return err
	}
	if err := fsys.MkdirP("/home/user/dir/sub"); err != nil {
		return err
	}
	return fsys.Symlink("real.txt", "/home/user/real.txt", "/home/user/link")
}

func runPathTests(t *testing.T, proc vos.ProcessFunc, cases []commandTest) {
	t.Helper()

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cmd := newTestCommand(proc, tc.args[0], tc.args[1:]...)
			cmd.Setup = withLink

			require.NoError(t, cmd.Run())
			assert.Equal(t, tc.want, cmd.Output)
			assert.Equal(t, tc.wantCode, cmd.ExitStatus, "exit code")
		})
	}
}

func TestReadlink(t *testing.T) {
	runPathTests(t, Readlink, []commandTest{
		{name: "link target", args: []string{"readlink", "link"}, want: "real.txt\n"},
		{name: "no newline", args: []string{"readlink", "-n", "link"}, want: "real.txt"},
		{name: "not a link", args: []string{"readlink", "real.txt"}, wantCode: 1},
		{name: "verbose", args: []string{"readlink", "-v", "real.txt"}, want: "readlink: real.txt: Invalid argument\n", wantCode: 1},
		{name: "canonical", args: []string{"readlink", "-f", "link"}, want: "/home/user/real.txt\n"},
		{name: "canonical dots", args: []string{"readlink", "-f", "dir/sub/../../real.txt"}, want: "/home/user/real.txt\n"},
		{name: "canonical new file", args: []string{"readlink", "-f", "dir/new"}, want: "/home/user/dir/new\n"},
		{name: "canonical missing parent", args: []string{"readlink", "-f", "nope/new"}, wantCode: 1},
		{name: "existing", args: []string{"readlink", "-e", "dir/new"}, wantCode: 1},
		{name: "missing allowed", args: []string{"readlink", "-m", "nope/new"}, want: "/home/user/nope/new\n"},
		{name: "missing operand", args: []string{"readlink"}, want: "readlink: missing operand\n", wantCode: 1},
	})
}

func TestRealpath(t *testing.T) {
	runPathTests(t, Realpath, []commandTest{
		{name: "file", args: []string{"realpath", "real.txt"}, want: "/home/user/real.txt\n"},
		{name: "follows link", args: []string{"realpath", "link"}, want: "/home/user/real.txt\n"},
		{name: "home", args: []string{"realpath", "~"}, want: "/home/user\n"},
		{name: "missing", args: []string{"realpath", "nope"}, want: "realpath: nope: No such file or directory\n", wantCode: 1},
		{name: "quiet", args: []string{"realpath", "-q", "nope"}, wantCode: 1},
		{name: "missing allowed", args: []string{"realpath", "-m", "nope"}, want: "/home/user/nope\n"},
		{name: "relative to", args: []string{"realpath", "--relative-to", "dir/sub", "real.txt"}, want: "../../real.txt\n"},
	})
}

func TestRelativePath(t *testing.T) {
	cases := []struct {
		base, target, want string
	}{
		{"/a/b", "/a/b", "."},
		{"/a/b", "/a/b/c", "c"},
		{"/a/b", "/a/c", "../c"},
		{"/", "/x/y", "x/y"},
		{"/x/y", "/", "../.."},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, relativePath(tc.base, tc.target), "%s -> %s", tc.base, tc.target)
	}
}

func TestMktemp(t *testing.T) {
	t.Run("default file", func(t *testing.T) {
		cmd := newTestCommand(Mktemp, "mktemp")
		require.NoError(t, cmd.Run())
		require.Equal(t, 0, cmd.ExitStatus)

		name := strings.TrimSuffix(cmd.Output, "\n")
		assert.Regexp(t, `^/tmp/tmp\.[A-Za-z0-9]{10}$`, name)
		assert.True(t, cmd.Engine().FS().IsFile(name))
	})

	t.Run("directory from template", func(t *testing.T) {
		cmd := newTestCommand(Mktemp, "mktemp", "-d", "work.XXXX")
		require.NoError(t, cmd.Run())
		require.Equal(t, 0, cmd.ExitStatus)

		name := strings.TrimSuffix(cmd.Output, "\n")
		assert.Regexp(t, `^work\.[A-Za-z0-9]{4}$`, name)
		assert.True(t, cmd.Engine().FS().IsDir(vostest.Home+"/"+name))
	})

	t.Run("dry run", func(t *testing.T) {
		cmd := newTestCommand(Mktemp, "mktemp", "-u", "-p", "/tmp", "x.XXX")
		require.NoError(t, cmd.Run())

		name := strings.TrimSuffix(cmd.Output, "\n")
		assert.Regexp(t, `^/tmp/x\.[A-Za-z0-9]{3}$`, name)
		assert.False(t, cmd.Engine().FS().Exists(name))
	})

	runCommandTests(t, Mktemp, []commandTest{
		{name: "too few X", args: []string{"mktemp", "aXX"}, want: "mktemp: too few X's in template 'aXX'\n", wantCode: 1},
		{name: "too many templates", args: []string{"mktemp", "aXXX", "bXXX"}, want: "mktemp: too many templates\n", wantCode: 1},
	})
}
