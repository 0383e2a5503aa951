package cmd

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/ttylog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default, cobra keeps them between
// executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	rootCmd.SilenceErrors = false
	for _, child := range rootCmd.Commands() {
		child.SilenceErrors = false
	}

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(ioutil.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func initTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	_, err := runCLI(t, "", "init", "--config", dir)
	require.NoError(t, err)
	return dir
}

func TestExec_ephemeral(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "", "exec", "--config", dir, "--ephemeral", "-c", "echo hi; whoami; pwd")
	require.NoError(t, err)
	assert.Equal(t, "hi\nuser\n/home/user\n", out)
}

func TestExec_exitCode(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "", "exec", "--config", dir, "--ephemeral", "-c", "echo bye; exit 3")
	assert.Equal(t, "bye\n", out)

	var code exitCodeError
	require.True(t, errors.As(err, &code), "got %v", err)
	assert.Equal(t, exitCodeError(3), code)
}

func TestExec_requiresInit(t *testing.T) {
	_, err := runCLI(t, "", "exec", "--config", t.TempDir(), "-c", "true")
	assert.Error(t, err)
}

func TestExec_persists(t *testing.T) {
	dir := initTestConfig(t)

	_, err := runCLI(t, "", "exec", "--config", dir, "-c", "echo saved > note; alias ll='ls -l'")
	require.NoError(t, err)

	out, err := runCLI(t, "cat note\nalias\n", "exec", "--config", dir)
	require.NoError(t, err)
	assert.Equal(t, "saved\nalias ll='ls -l'\n", out)

	t.Run("users are separate", func(t *testing.T) {
		out, err := runCLI(t, "", "exec", "--config", dir, "--user", "alice", "-c", "pwd; cat /home/user/note")
		assert.Error(t, err)
		assert.Equal(t, "/home/alice\ncat: /home/user/note: No such file or directory\n", out)
	})
}

func TestExec_scriptFile(t *testing.T) {
	script := filepath.Join(t.TempDir(), "setup.sh")
	require.NoError(t, ioutil.WriteFile(script, []byte("# comment\nmkdir -p a/b\n\ncd a\npwd\n"), 0600))

	out, err := runCLI(t, "", "exec", "--config", t.TempDir(), "--ephemeral", script)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/a\n", out)
}

func TestRepl_batch(t *testing.T) {
	out, err := runCLI(t, "echo one\nexit 2\necho two\n", "repl", "--config", t.TempDir(), "--ephemeral")

	assert.Contains(t, out, "Welcome to MathShell!")
	assert.Contains(t, out, "one\n")
	assert.NotContains(t, out, "two\n")
	assert.Equal(t, exitCodeError(2), err)
}

func TestBuiltins(t *testing.T) {
	out, err := runCLI(t, "", "builtins")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Greater(t, len(lines), 50)
	assert.Contains(t, out, "/usr/bin/grep")
	assert.Contains(t, out, "/bin/echo")
}

func TestLogsReport(t *testing.T) {
	dir := initTestConfig(t)

	_, err := runCLI(t, "", "exec", "--config", dir, "-c", "echo hi; nosuchcommand")
	assert.Error(t, err)

	out, err := runCLI(t, "", "logs", "report", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "command_report")
	assert.Contains(t, out, "nosuchcommand")

	out, err = runCLI(t, "", "logs", "report", "--bugs", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "unknown_commands")
	assert.Contains(t, out, "nosuchcommand")

	out, err = runCLI(t, "", "logs", "report", "--sessions", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "username: user")
	assert.Contains(t, out, "- echo hi")
}

func TestLogsRecordings(t *testing.T) {
	dir := initTestConfig(t)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	start := time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	fd, err := cfg.CreateRecording("alice", start)
	require.NoError(t, err)
	sink := ttylog.NewAsciicastLogSink(fd, ttylog.AsciicastHeader{})
	for _, e := range []*ttylog.Entry{
		{TimestampMicros: 0, FD: ttylog.FDStdin, Data: []byte("ls\r")},
		{TimestampMicros: 1_000_000, FD: ttylog.FDStdout, Data: []byte("a.txt\n")},
		{TimestampMicros: 60_000_000, FD: ttylog.FDStdout, Data: []byte("bye\n")},
	} {
		require.NoError(t, sink(e))
	}
	require.NoError(t, fd.Close())

	name := "20060102T030405Z-alice.cast"

	t.Run("list", func(t *testing.T) {
		out, err := runCLI(t, "", "logs", "list", "--config", dir)
		require.NoError(t, err)
		assert.Equal(t, name+"\n", out)
	})

	t.Run("cat", func(t *testing.T) {
		out, err := runCLI(t, "", "logs", "cat", "--config", dir, name)
		require.NoError(t, err)
		assert.Equal(t, "a.txt\nbye\n", out)
	})

	t.Run("play", func(t *testing.T) {
		out, err := runCLI(t, "", "logs", "play", "--config", dir, "-i", "1ms", name)
		require.NoError(t, err)
		assert.Equal(t, "a.txt\r\nbye\r\n", out)
	})

	t.Run("asciicast", func(t *testing.T) {
		out, err := runCLI(t, "", "logs", "asciicast", "--config", dir, name)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], `"title":"20060102T030405Z-alice"`)
		assert.Equal(t, `[1,"o","a.txt\r\n"]`, lines[2])
		assert.Equal(t, `[4,"o","bye\r\n"]`, lines[3])
	})
}
