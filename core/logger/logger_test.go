package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLinesLogRecorder(&buf)
	log.Now = func() time.Time { return time.Unix(1, 500) }

	session := log.NewSession()
	require.NoError(t, session.Record(EventCommand, Fields{
		"command":   "ls",
		"args":      Strings([]string{"ls", "-l"}),
		"exit_code": 0,
	}))
	require.NoError(t, session.Record(EventSessionEnd, nil))

	var entries []*LogEntry
	require.NoError(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))

	require.Len(t, entries, 2)
	assert.Equal(t, int64(1000000), entries[0].TimestampMicros)
	assert.Equal(t, session.ID(), entries[0].SessionID)
	assert.Equal(t, EventCommand, entries[0].Event)
	assert.Equal(t, "ls", entries[0].String("command"))
	assert.Equal(t, []string{"ls", "-l"}, entries[0].StringList("args"))
	assert.Nil(t, entries[1].Fields)
}

func TestNilSessionLogger(t *testing.T) {
	var session *SessionLogger
	assert.NoError(t, session.Record(EventPanic, Fields{"message": "boom"}))
	assert.Equal(t, "", session.ID())
}

func TestBugReport(t *testing.T) {
	log := &Logger{}
	report := NewBugReport()
	log.Record = func(le *LogEntry) error {
		// Round trip through JSON like a report built from a file would.
		b, err := json.Marshal(le)
		if err != nil {
			return err
		}
		var decoded LogEntry
		if err := json.Unmarshal(b, &decoded); err != nil {
			return err
		}
		report.Update(&decoded)
		return nil
	}

	session := log.NewSession()
	session.Record(EventUnknownCommand, Fields{"command": "vim9"})
	session.Record(EventUnknownCommand, Fields{"command": "vim9"})
	session.Record(EventInvalidInvocation, Fields{"command": "ls", "error": "unknown option -Z"})
	session.Record(EventPanic, Fields{"command": "awk", "message": "index out of range"})
	session.Record(EventAliasLoop, Fields{"name": "x"})

	assert.Equal(t, 5, report.LogEntries)
	assert.Equal(t, 2, report.UnknownCommands.Count("vim9"))
	assert.Equal(t, 1, report.InvalidInvocations.Count("ls", "unknown option -Z"))
	assert.Equal(t, 1, report.AliasLoops.Count("x"))
	assert.Equal(t, []Panic{{Command: "awk", Message: "index out of range"}}, report.Panics)

	out, err := json.Marshal(report.UnknownCommands)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"count":2,"event":{"command":"vim9"}}]`, string(out))
}

func TestInteractionReport(t *testing.T) {
	var report InteractionReport
	for _, le := range []*LogEntry{
		{SessionID: "1", Event: EventSessionStart},
		{SessionID: "", Event: EventCommand},
		{SessionID: "1", Event: EventCommand},
		{SessionID: "2", Event: EventCommand},
	} {
		report.Update(le)
	}

	out, err := json.Marshal(&report)
	require.NoError(t, err)

	var decoded map[string]InteractiveSession
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, 2, decoded["1"].LogEntries)
}

func TestReport(t *testing.T) {
	var report Report
	for _, le := range []*LogEntry{
		{Event: EventLoginAttempt, Fields: mustFields(t, Fields{"username": "root", "method": "password", "success": false})},
		{Event: EventLoginAttempt, Fields: mustFields(t, Fields{"username": "user", "method": "password", "success": true})},
		{SessionID: "1", Event: EventCommand, Fields: mustFields(t, Fields{"command": "ls", "path": "/bin/ls", "exit_code": 0})},
		{SessionID: "1", Event: EventUnknownCommand, Fields: mustFields(t, Fields{"command": "vim9"})},
		{SessionID: "1", Event: "mystery"},
	} {
		report.Update(le)
	}

	assert.Equal(t, 5, report.LogEntries)
	assert.Equal(t, 1, report.LoginAttempt.Usernames.Count("root"))
	assert.Equal(t, 2, report.LoginAttempt.Methods.Count("password"))
	assert.Equal(t, 1, report.LoginAttempt.Results.Count("success"))
	assert.Equal(t, 1, report.LoginAttempt.Results.Count("failure"))
	assert.Equal(t, 1, report.Command.ResolvedCommandPaths.Count("/bin/ls"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("vim9"))
	assert.Equal(t, 1, report.InvalidEntries.Count(`"mystery"`))
}

func TestInteractiveSession(t *testing.T) {
	var session InteractiveSession
	for _, le := range []*LogEntry{
		{Event: EventSessionStart, Fields: mustFields(t, Fields{"username": "alice", "remote_addr": "127.0.0.1:22", "term": "xterm", "pty": true})},
		{Event: EventCommand, Fields: mustFields(t, Fields{"args": Strings([]string{"ls", "-l"})})},
		{Event: EventSessionEnd, Fields: mustFields(t, Fields{"exit_code": 3})},
	} {
		session.Update(le)
	}

	assert.Equal(t, "alice", session.Login.Username)
	assert.Equal(t, "127.0.0.1:22", session.Login.RemoteAddr)
	assert.Equal(t, "xterm", session.TerminalName)
	assert.True(t, session.IsPty)
	assert.Equal(t, []string{"ls -l"}, session.Commands)
	assert.Equal(t, 3, session.ExitCode)
}

func mustFields(t *testing.T, fields Fields) *structpb.Struct {
	t.Helper()

	out, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return out
}
