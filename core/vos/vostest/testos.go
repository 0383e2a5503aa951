// Package vostest runs commands against a deterministic in-memory system.
package vostest

import (
	"fmt"
	"strings"
	"time"

	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

const (
	Hostname = "localhost"
	User     = "user"
	Home     = "/home/user"
)

// Now is the time reported by deterministic systems: Go's reference
// timestamp with a different value in each position.
func Now() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

// SingleProcessResolver resolves every name to process.
func SingleProcessResolver(process vos.ProcessFunc) vos.ProcessResolver {
	return func(name string) (string, vos.ProcessFunc) {
		return "/bin/" + name, process
	}
}

// NewDeterministicVFS creates a filesystem with a home directory and /tmp
// whose clock is fixed.
func NewDeterministicVFS() *vfs.VFS {
	fsys := vfs.New()
	fsys.Now = Now
	fsys.SetHome(Home)
	if err := fsys.MkdirP(Home); err != nil {
		panic(err)
	}
	if err := fsys.MkdirP("/tmp"); err != nil {
		panic(err)
	}
	return fsys
}

// NewDeterministicEngine creates an engine with a fixed clock, hostname and
// user, starting in the home directory.
func NewDeterministicEngine(resolver vos.ProcessResolver) *shell.Engine {
	return shell.NewEngine(
		NewDeterministicVFS(),
		vos.NewState(User, Home),
		resolver,
		shell.Options{
			Hostname: Hostname,
			User:     User,
			Clock:    Now,
		})
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function
	Process vos.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// creating the process. It's created if it doesn't exist.
	Dir string
	// Env holds extra KEY=value variables set before the process starts.
	Env []string
	// Stdin is the process input, nil means no input.
	Stdin *string
	// Resolver looks up commands the process invokes, the default resolves
	// every name to Process.
	Resolver vos.ProcessResolver

	ExitStatus int
	Output     string

	// Sentinel is what the process raised, if anything.
	Sentinel string

	// Setup runs before the process with access to the same system, it can
	// be used to create files.
	Setup func(vos.VOS) error

	engine *shell.Engine
}

func Command(process vos.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
	}
}

// WithStdin sets the command's input and returns it.
func (c *Cmd) WithStdin(in string) *Cmd {
	c.Stdin = &in
	return c
}

// Engine returns the system the command ran on, nil before Run.
func (c *Cmd) Engine() *shell.Engine {
	return c.engine
}

func (c *Cmd) CombinedOutput() ([]byte, error) {
	if err := c.Run(); err != nil {
		return nil, err
	}
	return []byte(c.Output), nil
}

// Run starts the comand and waits for it to complete.
func (c *Cmd) Run() error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("vostest: no process name")
	}

	resolver := c.Resolver
	if resolver == nil {
		resolver = SingleProcessResolver(c.Process)
	}
	c.engine = NewDeterministicEngine(resolver)

	setupProc := vos.NewProcess(c.engine, c.Argv, nil)
	if c.Dir != "" {
		if err := c.engine.FS().MkdirP(setupProc.Resolve(c.Dir)); err != nil {
			return err
		}
		if err := setupProc.Chdir(c.Dir); err != nil {
			return err
		}
	}
	for _, kv := range c.Env {
		k, v, _ := strings.Cut(kv, "=")
		if err := setupProc.Setenv(k, v); err != nil {
			return err
		}
	}
	if c.Setup != nil {
		if err := c.Setup(setupProc); err != nil {
			return err
		}
	}

	res := vos.NewProcess(c.engine, c.Argv, c.Stdin).Run(c.Process)
	c.ExitStatus = res.ExitCode
	c.Output = res.Output
	c.Sentinel = res.Sentinel
	return nil
}

// WriteFiles returns a Setup function that creates the given files relative
// to the working directory.
func WriteFiles(files map[string]string) func(vos.VOS) error {
	return func(virtOS vos.VOS) error {
		for name, content := range files {
			if err := virtOS.FS().Write(virtOS.Resolve(name), content); err != nil {
				return err
			}
		}
		return nil
	}
}
