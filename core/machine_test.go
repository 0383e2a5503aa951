package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2021, 7, 4, 12, 0, 0, 0, time.UTC)

type eventLog struct {
	mu      sync.Mutex
	entries []*logger.LogEntry
}

func (e *eventLog) logger() *logger.Logger {
	return &logger.Logger{
		Record: func(le *logger.LogEntry) error {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.entries = append(e.entries, le)
			return nil
		},
		Now: func() time.Time { return testNow },
	}
}

func (e *eventLog) events(event logger.EventType) []*logger.LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []*logger.LogEntry
	for _, le := range e.entries {
		if le.Event == event {
			out = append(out, le)
		}
	}
	return out
}

func newTestMachine(t *testing.T, store vfs.Store) *Machine {
	t.Helper()

	m, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{
		Store: store,
		Clock: func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMachine_seedsFreshStore(t *testing.T) {
	m := newTestMachine(t, nil)

	assert.True(t, m.FS().IsFile("/etc/motd"))
	assert.True(t, m.FS().IsFile("/home/user/README.txt"))
	assert.Contains(t, m.Motd(), "MathShell")

	out := m.Execute("cat /etc/hostname")
	assert.Equal(t, "mathshell\n", out.Output)
	assert.Equal(t, 0, out.ExitCode)

	out = m.Execute("pwd")
	assert.Equal(t, "/home/user\n", out.Output)
}

func TestMachine_userHome(t *testing.T) {
	m, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{User: "alice"})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, "/home/alice\n", m.Execute("echo $HOME").Output)
	assert.Equal(t, "alice\n", m.Execute("whoami").Output)
	assert.True(t, m.FS().IsFile("/home/alice/README.txt"))
}

func TestMachine_Execute(t *testing.T) {
	cases := map[string]struct {
		line  string
		want  Outcome
		setup string
	}{
		"plain": {
			line: "echo hi | grep h",
			want: Outcome{Output: "hi\n"},
		},
		"failure": {
			line: "rm nonexistent_file",
			want: Outcome{Output: "rm: cannot remove 'nonexistent_file': No such file or directory\n", ExitCode: 1},
		},
		"clear": {
			line: "echo before; clear",
			want: Outcome{Output: "before\n", Clear: true},
		},
		"exit": {
			line: "exit 3",
			want: Outcome{ExitCode: 3, Exit: true},
		},
		"exit mentioned in output": {
			line: "echo 'see __EXIT__7 for details'",
			want: Outcome{Output: "see __EXIT__7 for details\n"},
		},
		"exit from sourced file": {
			setup: "echo 'echo bye; exit 4' > quit.sh",
			line:  "source quit.sh; echo unreachable",
			want:  Outcome{Output: "bye\n", ExitCode: 4, Exit: true},
		},
		"alias loop": {
			setup: "alias x='x'",
			line:  "x",
			want:  Outcome{Output: "mash: x: alias loop detected\n", ExitCode: 1},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := newTestMachine(t, nil)
			if tc.setup != "" {
				m.Execute(tc.setup)
			}
			assert.Equal(t, tc.want, m.Execute(tc.line))
		})
	}
}

func TestMachine_persistsAcrossSessions(t *testing.T) {
	store := vfs.NewMemStore()

	first, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{Store: store})
	require.NoError(t, err)
	first.Execute("mkdir notes; cd notes; echo a > f; echo b >> f")
	first.Execute("X=5; alias ll='ls -l'")
	require.NoError(t, first.Close())

	second, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{Store: store})
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, "a\nb\n", second.Execute("cat f").Output)
	assert.Equal(t, "/home/user/notes\n", second.Execute("pwd").Output)
	assert.Equal(t, "5\n", second.Execute("echo $X").Output)
	assert.Equal(t, "alias ll='ls -l'\n", second.Execute("alias ll").Output)

	history := second.Engine().State().History
	assert.Contains(t, history, "echo b >> f")
}

func TestMachine_wipe(t *testing.T) {
	store := vfs.NewMemStore()
	m := newTestMachine(t, store)

	m.Execute("cd /tmp; echo x > junk; Y=1")
	out := m.Execute("wipe-fs")
	assert.True(t, out.Wiped)
	assert.Equal(t, 0, out.ExitCode)

	assert.False(t, m.FS().Exists("/tmp/junk"))
	assert.True(t, m.FS().IsFile("/etc/motd"))
	assert.Equal(t, "/home/user\n", m.Execute("pwd").Output)
	assert.Equal(t, "\n", m.Execute("echo $Y").Output)

	require.NoError(t, m.Close())
	fresh, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{Store: store})
	require.NoError(t, err)
	defer fresh.Close()
	assert.False(t, fresh.FS().Exists("/tmp/junk"))
}

func TestMachine_wipeOnlyFromCommand(t *testing.T) {
	m := newTestMachine(t, nil)

	m.Execute("echo 'remember: never type __WIPEFS__' > notes.txt")
	out := m.Execute("cat notes.txt")
	assert.Equal(t, Outcome{Output: "remember: never type __WIPEFS__\n"}, out)

	out = m.Execute("echo 'todo:'; cat notes.txt; echo still here")
	assert.Equal(t, Outcome{Output: "todo:\nremember: never type __WIPEFS__\nstill here\n"}, out)

	assert.True(t, m.FS().IsFile("/home/user/notes.txt"))
}

func TestMachine_events(t *testing.T) {
	var log eventLog
	m, err := NewMachine(context.Background(), config.Ephemeral(), MachineOptions{
		Events: log.logger().NewSession(),
	})
	require.NoError(t, err)
	defer m.Close()

	m.Execute("echo hi")
	m.Execute("nosuchcommand")

	assert.Len(t, log.events(logger.EventCommand), 1)
	if unknown := log.events(logger.EventUnknownCommand); assert.Len(t, unknown, 1) {
		assert.Equal(t, "nosuchcommand", unknown[0].String("command"))
	}
}
