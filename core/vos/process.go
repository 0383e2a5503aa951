package vos

import (
	"bytes"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/josephlewis42/mathshell/core/vfs"
)

// Process is the VOS given to a single command invocation. Stdout and Stderr
// share one buffer so the output keeps its interleaving.
type Process struct {
	sys   System
	args  []string
	stdin *string
	in    io.Reader
	out   bytes.Buffer

	raised string
}

var _ VOS = (*Process)(nil)

// NewProcess creates the context for running args[0] with the given input,
// stdin may be nil.
func NewProcess(sys System, args []string, stdin *string) *Process {
	p := &Process{
		sys:   sys,
		args:  args,
		stdin: stdin,
	}
	if stdin != nil {
		p.in = strings.NewReader(*stdin)
	} else {
		p.in = emptyStdin{}
	}
	return p
}

// Run calls proc and returns its result.
func (p *Process) Run(proc ProcessFunc) Result {
	code := proc(p)
	return Result{Output: p.Output(), ExitCode: code, Sentinel: p.raised}
}

// Raise implements VOS.Raise.
func (p *Process) Raise(sentinel string) {
	p.raised = sentinel
}

// Output returns everything the command wrote so far.
func (p *Process) Output() string {
	return p.out.String()
}

// FS implements VOS.FS.
func (p *Process) FS() *vfs.VFS {
	return p.sys.FS()
}

// State implements VOS.State.
func (p *Process) State() *State {
	return p.sys.State()
}

// Hostname implements VOS.Hostname.
func (p *Process) Hostname() string {
	return p.sys.Hostname()
}

// Username implements VOS.Username.
func (p *Process) Username() string {
	return p.sys.Username()
}

// ShellName implements VOS.ShellName.
func (p *Process) ShellName() string {
	return p.sys.ShellName()
}

// Now implements VOS.Now.
func (p *Process) Now() time.Time {
	return p.sys.Now()
}

// GetPTY implements VOS.GetPTY.
func (p *Process) GetPTY() PTY {
	return p.sys.GetPTY()
}

// Uname implements VOS.Uname.
func (p *Process) Uname() Utsname {
	return p.sys.Uname()
}

// Invoke implements VOS.Invoke.
func (p *Process) Invoke(name string, args []string, stdin *string) Result {
	return p.sys.Invoke(name, args, stdin)
}

// Eval implements VOS.Eval.
func (p *Process) Eval(line string) Result {
	return p.sys.Eval(line)
}

// LookupCommand implements VOS.LookupCommand.
func (p *Process) LookupCommand(name string) (string, bool) {
	return p.sys.LookupCommand(name)
}

// Args implements VOS.Args.
func (p *Process) Args() []string {
	return p.args
}

// Stdin implements VOS.Stdin.
func (p *Process) Stdin() io.Reader {
	return p.in
}

// HasStdin implements VOS.HasStdin.
func (p *Process) HasStdin() bool {
	return p.stdin != nil
}

// Stdout implements VOS.Stdout.
func (p *Process) Stdout() io.Writer {
	return &p.out
}

// Stderr implements VOS.Stderr.
func (p *Process) Stderr() io.Writer {
	return &p.out
}

// Getwd implements VOS.Getwd.
func (p *Process) Getwd() string {
	return p.State().Cwd
}

// Chdir implements VOS.Chdir.
func (p *Process) Chdir(dir string) error {
	target := p.Resolve(dir)
	stat, err := p.FS().Stat(target)
	switch {
	case err != nil:
		return err
	case !stat.IsDir():
		return &fs.PathError{Op: "chdir", Path: target, Err: vfs.ErrNotDir}
	}

	p.State().Cwd = target
	return nil
}

// Resolve implements VOS.Resolve.
func (p *Process) Resolve(path string) string {
	return p.FS().Resolve(path, p.Getwd())
}

// Getenv implements VOS.Getenv.
func (p *Process) Getenv(key string) string {
	return p.State().Env.Getenv(key)
}

// LookupEnv implements VOS.LookupEnv.
func (p *Process) LookupEnv(key string) (string, bool) {
	return p.State().Env.LookupEnv(key)
}

// Setenv implements VOS.Setenv.
func (p *Process) Setenv(key, value string) error {
	return p.State().Env.Setenv(key, value)
}

// Unsetenv implements VOS.Unsetenv.
func (p *Process) Unsetenv(key string) error {
	return p.State().Env.Unsetenv(key)
}

// Environ implements VOS.Environ.
func (p *Process) Environ() []string {
	return p.State().Env.Environ()
}

// LogInvalidInvocation implements VOS.LogInvalidInvocation.
func (p *Process) LogInvalidInvocation(err error) {
	name := ""
	if len(p.args) > 0 {
		name = p.args[0]
	}
	p.sys.LogInvalidInvocation(name, err)
}
