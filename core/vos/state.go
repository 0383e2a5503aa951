package vos

import (
	"sort"
	"strconv"

	"github.com/josephlewis42/mathshell/core/vfs"
)

// ExitCodeVar is the environment variable holding the last exit code.
const ExitCodeVar = "?"

// DefaultPath is the search path reported by which and friends.
const DefaultPath = "/bin:/usr/bin"

// State is the mutable state of a shell session.
type State struct {
	Cwd     string
	Env     *MapEnv
	Aliases map[string]string
	History []string
}

// NewState creates the state of a fresh login for user with the given home
// directory.
func NewState(user, home string) *State {
	s := &State{
		Cwd:     home,
		Env:     NewMapEnv(),
		Aliases: make(map[string]string),
	}
	CopyEnv(s.Env, DefaultEnviron(user, home))
	return s
}

// DefaultEnviron is the environment of a fresh login.
func DefaultEnviron(user, home string) []string {
	return []string{
		"HOME=" + home,
		"USER=" + user,
		"LOGNAME=" + user,
		"PATH=" + DefaultPath,
		"PWD=" + home,
		"SHELL=/bin/sh",
		"TERM=xterm-256color",
		"LANG=C.UTF-8",
		ExitCodeVar + "=0",
	}
}

// SetExitCode records the exit code of the last command.
func (s *State) SetExitCode(code int) {
	s.Env.Setenv(ExitCodeVar, strconv.Itoa(code))
}

// ExitCode returns the exit code of the last command.
func (s *State) ExitCode() int {
	code, err := strconv.Atoi(s.Env.Getenv(ExitCodeVar))
	if err != nil {
		return 0
	}
	return code
}

// AddHistory appends a statement to the history, keeping at most limit
// entries. A limit of zero or less keeps everything.
func (s *State) AddHistory(line string, limit int) {
	s.History = append(s.History, line)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]string(nil), s.History[len(s.History)-limit:]...)
	}
}

// AliasNames returns the sorted alias names.
func (s *State) AliasNames() []string {
	names := make([]string, 0, len(s.Aliases))
	for name := range s.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot captures the state for persistence.
func (s *State) Snapshot() *vfs.Meta {
	aliases := make(map[string]string, len(s.Aliases))
	for k, v := range s.Aliases {
		aliases[k] = v
	}
	return &vfs.Meta{
		Cwd:     s.Cwd,
		Env:     s.Env.Map(),
		Aliases: aliases,
		History: append([]string(nil), s.History...),
	}
}

// Restore replaces the state with a saved snapshot. Missing fields keep
// their current values.
func (s *State) Restore(m *vfs.Meta) {
	if m == nil {
		return
	}
	if m.Cwd != "" {
		s.Cwd = vfs.Clean(m.Cwd)
	}
	if m.Env != nil {
		s.Env = NewMapEnvFromMap(m.Env)
		if _, ok := s.Env.LookupEnv(ExitCodeVar); !ok {
			s.SetExitCode(0)
		}
	}
	if m.Aliases != nil {
		s.Aliases = make(map[string]string, len(m.Aliases))
		for k, v := range m.Aliases {
			s.Aliases[k] = v
		}
	}
	if m.History != nil {
		s.History = append([]string(nil), m.History...)
	}
}
