// Package vos defines the context commands run in: a virtual OS made of the
// session's filesystem, shell state and captured I/O.
package vos

import (
	"io"
	"time"

	"github.com/josephlewis42/mathshell/core/vfs"
)

// ProcessFunc is the entrypoint of a command. It returns the exit code.
type ProcessFunc func(VOS) int

// ProcessResolver maps a command name to the virtual path it lives at and
// its implementation. A nil ProcessFunc means the command doesn't exist.
type ProcessResolver func(name string) (path string, proc ProcessFunc)

// Result is the outcome of running a command, a pipeline or a line of input.
type Result struct {
	Output   string
	ExitCode int
	// Sentinel is the output of the statement that stopped a line of input
	// because it began with a sentinel, or the sentinel a command raised.
	// It isn't part of Output.
	Sentinel string
}

// PTY describes the terminal attached to the session.
type PTY struct {
	Width  int
	Height int
	Term   string
	IsPTY  bool
}

// Utsname holds the system identification reported by uname.
type Utsname struct {
	Sysname         string `json:"sysname"`
	Nodename        string `json:"nodename"`
	Release         string `json:"release"`
	Version         string `json:"version"`
	Machine         string `json:"machine"`
	Processor       string `json:"processor"`
	OperatingSystem string `json:"operating_system"`
}

// DefaultUname returns the identification of a system with the given
// hostname.
func DefaultUname(hostname string) Utsname {
	return Utsname{
		Sysname:         "MASH",
		Nodename:        hostname,
		Release:         "1.0.0",
		Version:         "#1 MASH",
		Machine:         "wasm32",
		Processor:       "wasm32",
		OperatingSystem: "Mash/1.0",
	}
}

// System is the part of the virtual OS shared by every command run in a
// session. The shell engine implements it.
type System interface {
	// FS returns the session's filesystem.
	FS() *vfs.VFS
	// State returns the session's shell state.
	State() *State

	Hostname() string
	Username() string
	ShellName() string
	Now() time.Time
	GetPTY() PTY
	Uname() Utsname

	// Invoke dispatches a single command, stdin may be nil.
	Invoke(name string, args []string, stdin *string) Result
	// Eval runs a line of shell input.
	Eval(line string) Result
	// LookupCommand returns the virtual path of a registered command.
	LookupCommand(name string) (path string, ok bool)
	// LogInvalidInvocation records a command that was called incorrectly.
	LogInvalidInvocation(name string, err error)
}

// VOS is the virtual OS visible to a single command.
type VOS interface {
	FS() *vfs.VFS
	State() *State

	Hostname() string
	Username() string
	ShellName() string
	Now() time.Time
	GetPTY() PTY
	Uname() Utsname

	Invoke(name string, args []string, stdin *string) Result
	Eval(line string) Result
	LookupCommand(name string) (path string, ok bool)

	// Args holds command line arguments, including the command as Args[0].
	Args() []string

	// Stdin reads the command's input, it is empty when HasStdin is false.
	Stdin() io.Reader
	// HasStdin is true if the command was given input by a pipe or a
	// redirect.
	HasStdin() bool
	// Stdout and Stderr write to the same captured output.
	Stdout() io.Writer
	Stderr() io.Writer
	// Raise stops the line of input the command is part of as if the
	// command's output had begun with sentinel.
	Raise(sentinel string)

	// Getwd returns the working directory.
	Getwd() string
	// Chdir changes the working directory.
	Chdir(dir string) error
	// Resolve converts p to an absolute path using the working directory.
	Resolve(p string) string

	Getenv(key string) string
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	Environ() []string

	// LogInvalidInvocation records that the command was called incorrectly.
	LogInvalidInvocation(err error)
}
