package commands

import (
	"testing"

	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShell(t *testing.T) {
	runCommandTests(t, RunShell, []commandTest{
		{name: "echo", args: []string{"sh", "-c", `/bin/echo "hello"`}, want: "hello\n"},
		{name: "echo-cat", args: []string{"sh", "-c", `/bin/echo "hello" > foo; /bin/cat foo`}, want: "hello\n"},
		{name: "expand-after-set", args: []string{"sh", "-c", `A=B; AA=$A$A; /bin/echo $AA`}, want: "BB\n"},
		{name: "multiple lines", args: []string{"sh", "-c", "echo a\necho b"}, want: "a\nb\n"},
		{name: "exit status", args: []string{"sh", "-c", "false"}, wantCode: 1},
		{name: "exit stops script", args: []string{"sh", "-c", "echo a\nexit 3\necho b"}, want: "a\n", wantCode: 3},
		{name: "script file", args: []string{"sh", "run.sh"}, files: map[string]string{"run.sh": "echo from file\n"}, want: "from file\n"},
		{name: "missing script", args: []string{"sh", "nope.sh"}, want: "sh: nope.sh: No such file or directory\n", wantCode: 127},
		{name: "stdin script", args: []string{"sh"}, stdin: stdin("echo piped | tr a-z A-Z\n"), want: "PIPED\n"},
		{name: "redirect creates parents", args: []string{"sh", "-c", `echo hi > /does/not/exist; cat /does/not/exist`}, want: "hi\n"},
		{name: "unknown command", args: []string{"sh", "-c", "nosuch"}, want: "mash: nosuch: command not found\n", wantCode: 127},
		{name: "bash alias", args: []string{"bash", "-c", "echo ok"}, want: "ok\n"},
		{name: "nothing to run", args: []string{"sh"}},
	})
}

func TestRunShell_isSubshell(t *testing.T) {
	cmd := newTestCommand(RunShell, "sh", "-c", "cd /tmp; X=1; alias ll='ls -l'")
	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)

	state := cmd.Engine().State()
	assert.Equal(t, "/home/user", state.Cwd)
	assert.Equal(t, "", state.Env.Getenv("X"))
	assert.NotContains(t, state.Aliases, "ll")
}

func TestRunShell_passesSentinels(t *testing.T) {
	cmd := newTestCommand(RunShell, "sh", "-c", "echo before\nclear\necho after")
	require.NoError(t, cmd.Run())
	assert.Equal(t, "before\n", cmd.Output)
	assert.Equal(t, shell.SentinelClear, cmd.Sentinel)

	cmd = newTestCommand(RunShell, "sh", "-c", "echo before; exit 3")
	require.NoError(t, cmd.Run())
	assert.Equal(t, "before\n", cmd.Output)
	assert.Equal(t, 3, cmd.ExitStatus)
	assert.Empty(t, cmd.Sentinel)
}

func TestRunShell_sentinelTextInOutput(t *testing.T) {
	cmd := newTestCommand(RunShell, "sh", "-c", "cat notes.txt\necho after")
	cmd.Setup = writeTestFiles(map[string]string{"notes.txt": "todo: " + shell.SentinelWipeFS + "\n"})
	require.NoError(t, cmd.Run())
	assert.Equal(t, "todo: "+shell.SentinelWipeFS+"\nafter\n", cmd.Output)
	assert.Empty(t, cmd.Sentinel)
}

func TestSource(t *testing.T) {
	runCommandTests(t, Source, []commandTest{
		{name: "runs file", args: []string{"source", "env.sh"}, files: map[string]string{"env.sh": "echo sourced\n"}, want: "sourced\n"},
		{name: "dot", args: []string{".", "env.sh"}, files: map[string]string{"env.sh": "echo dotted\n"}, want: "dotted\n"},
		{name: "missing argument", args: []string{"source"}, want: "source: filename argument required\n", wantCode: 2},
		{name: "missing file", args: []string{"source", "nope"}, want: "source: nope: No such file or directory\n", wantCode: 1},
		{name: "exit", args: []string{"source", "quit.sh"}, files: map[string]string{"quit.sh": "exit 4\necho unreachable\n"}, wantSentinel: shell.ExitSentinel(4), wantCode: 4},
		{name: "output before exit", args: []string{"source", "quit.sh"}, files: map[string]string{"quit.sh": "echo bye\nexit 2\n"}, want: "bye\n", wantSentinel: shell.ExitSentinel(2), wantCode: 2},
	})
}

func TestSource_changesSession(t *testing.T) {
	cmd := newTestCommand(Source, "source", "profile")
	cmd.Setup = writeTestFiles(map[string]string{"profile": "GREETING=hi\nalias ll='ls -l'\ncd /tmp\n"})

	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)

	state := cmd.Engine().State()
	assert.Equal(t, "/tmp", state.Cwd)
	assert.Equal(t, "hi", state.Env.Getenv("GREETING"))
	assert.Equal(t, "ls -l", state.Aliases["ll"])
}
