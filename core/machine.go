package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/josephlewis42/mathshell/commands"
	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// MachineOptions configures a Machine.
type MachineOptions struct {
	// Store holds the persisted filesystem, nil keeps everything in memory.
	Store vfs.Store
	// User overrides the configured login name.
	User string

	Events *logger.SessionLogger
	Logger *log.Logger
	PTY    vos.PTY
	Clock  func() time.Time
}

// Machine is a simulated computer: a filesystem, the state of the shell
// logged into it and the engine running commands against both.
type Machine struct {
	cfg    *config.Configuration
	opts   MachineOptions
	fs     *vfs.VFS
	writer *vfs.Writer
	engine *shell.Engine
}

// Outcome is the host-facing result of one line of input.
type Outcome struct {
	// Output is the text to display, sentinels removed.
	Output   string
	ExitCode int

	Clear bool
	Exit  bool
	Wiped bool
}

// NewMachine hydrates a machine from its store, seeding the filesystem if
// the store was empty.
func NewMachine(ctx context.Context, cfg *config.Configuration, opts MachineOptions) (*Machine, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.User == "" {
		opts.User = cfg.User
	}

	m := &Machine{cfg: cfg, opts: opts}

	if opts.Store != nil {
		m.writer = vfs.NewWriter(opts.Store, vfs.WriterConfig{
			WritesPerSecond: cfg.PersistWritesPerSecond,
			OnError:         m.persistError,
		})
		m.fs = vfs.NewPersistent(m.writer)
	} else {
		m.fs = vfs.New()
	}
	m.fs.Now = opts.Clock
	m.fs.SetHome(m.home())

	var meta *vfs.Meta
	if opts.Store != nil {
		loaded, err := m.fs.Load(ctx, opts.Store)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("loading filesystem: %w", err)
		}
		meta = loaded
	}

	if m.fs.Len() == 0 {
		if err := m.seed(); err != nil {
			m.Close()
			return nil, err
		}
	}

	state := vos.NewState(opts.User, m.home())
	state.Restore(meta)

	m.engine = shell.NewEngine(m.fs, state, commands.BuiltinProcessResolver, shell.Options{
		ShellName:     cfg.ShellName,
		Hostname:      cfg.Hostname,
		User:          opts.User,
		Clock:         opts.Clock,
		PTY:           opts.PTY,
		Uname:         cfg.Uname.Utsname(cfg.Hostname),
		Events:        opts.Events,
		MaxAliasDepth: cfg.MaxAliasDepth,
		HistoryLimit:  cfg.HistorySize,
	})

	return m, nil
}

func (m *Machine) home() string {
	if m.opts.User == m.cfg.User {
		return m.cfg.Home
	}
	return "/home/" + m.opts.User
}

func (m *Machine) seed() error {
	err := m.fs.Seed(vfs.SeedOptions{
		Hostname: m.cfg.Hostname,
		User:     m.opts.User,
		Home:     m.home(),
		Motd:     m.cfg.Motd,
	})
	if err != nil {
		return fmt.Errorf("seeding filesystem: %w", err)
	}
	return nil
}

func (m *Machine) persistError(op, key string, err error) {
	m.opts.Logger.Printf("persistence: %s %q failed: %v", op, key, err)
	m.opts.Events.Record(logger.EventPersistError, logger.Fields{
		"op":    op,
		"key":   key,
		"error": err.Error(),
	})
}

// Engine returns the engine running the machine's shell.
func (m *Machine) Engine() *shell.Engine {
	return m.engine
}

// FS returns the machine's filesystem.
func (m *Machine) FS() *vfs.VFS {
	return m.fs
}

// SetPTY updates the terminal the machine's commands see.
func (m *Machine) SetPTY(pty vos.PTY) {
	m.engine.SetPTY(pty)
}

// Motd returns the message of the day shown at login.
func (m *Machine) Motd() string {
	motd, _ := m.fs.Read("/etc/motd")
	return motd
}

// Execute runs a line of input and acts on the sentinel that stopped it, if
// any.
func (m *Machine) Execute(line string) Outcome {
	res, err := m.engine.ExecuteInput(line)
	if err != nil {
		m.opts.Logger.Printf("%q: %v", line, err)
	}

	out := Outcome{Output: res.Output, ExitCode: res.ExitCode}
	kind, code := shell.ParseSentinel(res.Sentinel)
	switch kind {
	case shell.SentinelKindClear:
		out.Clear = true
	case shell.SentinelKindExit:
		out.Exit = true
		out.ExitCode = code
	case shell.SentinelKindWipeFS:
		out.Wiped = true
		if err := m.Wipe(); err != nil {
			out.Output += fmt.Sprintf("%s: wipe-fs: %v\n", m.cfg.ShellName, err)
			out.ExitCode = 1
		}
	}
	return out
}

// Wipe deletes every file and the saved session, then starts over with a
// fresh skeleton and login state.
func (m *Machine) Wipe() error {
	m.fs.Wipe()
	if err := m.seed(); err != nil {
		return err
	}
	state := vos.NewState(m.opts.User, m.home())
	m.engine.SetState(state)
	m.fs.SaveMeta(state.Snapshot())
	return nil
}

// Close flushes pending writes to the store.
func (m *Machine) Close() error {
	if m.writer == nil {
		return nil
	}
	if m.engine != nil {
		m.fs.SaveMeta(m.engine.State().Snapshot())
	}
	return m.writer.Close()
}
