package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

func NewBugReport() *BugReport {
	return &BugReport{
		InvalidInvocations: NewPathCounter("command", "error"),
		UnknownCommands:    NewPathCounter("command"),
		AliasLoops:         NewPathCounter("name"),
		PersistErrors:      NewPathCounter("op", "error"),
	}
}

// Panic is a command that crashed.
type Panic struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

// BugReport pulls events that are likely bugs in the shell.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	InvalidInvocations *PathCounter `json:"invalid_invocations"`
	UnknownCommands    *PathCounter `json:"unknown_commands"`
	AliasLoops         *PathCounter `json:"alias_loops"`
	PersistErrors      *PathCounter `json:"persist_errors"`
	Panics             []Panic      `json:"panics"`
}

func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case EventPanic:
		r.Panics = append(r.Panics, Panic{
			Command: le.String("command"),
			Message: le.String("message"),
		})
	case EventUnknownCommand:
		r.UnknownCommands.Increment(le.String("command"))
	case EventInvalidInvocation:
		r.InvalidInvocations.Increment(le.String("command"), le.String("error"))
	case EventAliasLoop:
		r.AliasLoops.Increment(le.String("name"))
	case EventPersistError:
		r.PersistErrors.Increment(le.String("op"), le.String("error"))
	}
}

// InteractionReport groups events by session.
type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

// InteractiveSession summarizes a single session.
type InteractiveSession struct {
	Login struct {
		Username   string `json:"username"`
		RemoteAddr string `json:"remote_addr,omitempty"`
	} `json:"login"`
	LogEntries   int    `json:"log_entries"`
	TerminalName string `json:"terminal_name"`
	IsPty        bool   `json:"is_pty"`
	ExitCode     int    `json:"exit_code"`

	Commands []string `json:"commands"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch le.Event {
	case EventSessionStart:
		i.Login.Username = le.String("username")
		i.Login.RemoteAddr = le.String("remote_addr")
		i.TerminalName = le.String("term")
		i.IsPty = le.Bool("pty")
	case EventCommand, EventUnknownCommand:
		i.Commands = append(i.Commands, strings.Join(le.StringList("args"), " "))
	case EventSessionEnd:
		i.ExitCode = int(le.Number("exit_code"))
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	if le.SessionID == "" {
		return
	}
	report, ok := i.interactions[le.SessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[le.SessionID] = report
	}

	report.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	LoginAttempt      LoginAttemptReport      `json:"login_attempt_report"`
	Command           CommandReport           `json:"command_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	Panic             PanicReport             `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case EventLoginAttempt:
		r.LoginAttempt.update(le)
	case EventCommand:
		r.Command.update(le)
	case EventPanic:
		r.Panic.update(le)
	case EventUnknownCommand:
		r.UnknownCommand.update(le)
	case EventInvalidInvocation:
		r.InvalidInvocation.update(le)
	case EventSessionStart, EventSessionEnd, EventAliasLoop, EventPersistError:
		// Ignore
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%q", le.Event))
	}
}

type LoginAttemptReport struct {
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// Authentication methods tried.
	Methods StrCounter `json:"methods"`
	// List of login attempt results and their counts.
	Results StrCounter `json:"results"`
}

func (r *LoginAttemptReport) update(le *LogEntry) {
	r.Usernames.Increment(le.String("username"))
	r.Methods.Increment(le.String("method"))
	if le.Bool("success") {
		r.Results.Increment("success")
	} else {
		r.Results.Increment("failure")
	}
}

type CommandReport struct {
	// Resolved virtual path of the command.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	// Exit codes of commands.
	ExitCodes StrCounter `json:"exit_codes"`
}

func (r *CommandReport) update(le *LogEntry) {
	r.ResolvedCommandPaths.Increment(le.String("path"))
	r.CommandNames.Increment(le.String("command"))
	r.ExitCodes.Increment(fmt.Sprint(le.Number("exit_code")))
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
}

type InvalidInvocationReport struct {
	CommandNames StrCounter `json:"command_counts"`
}

func (r *InvalidInvocationReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(le *LogEntry) {
	r.Contexts = append(r.Contexts, fmt.Sprintf("%s: %s", le.String("command"), le.String("message")))
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns the number of times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
