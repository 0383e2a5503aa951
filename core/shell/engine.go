package shell

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

const (
	// DefaultShellName prefixes the shell's own error messages.
	DefaultShellName = "mash"
	// DefaultMaxAliasDepth bounds nested alias expansion.
	DefaultMaxAliasDepth = 16
	// DefaultHistoryLimit is the number of statements kept in the history.
	DefaultHistoryLimit = 1000

	maxEvalDepth = 32
)

// Options configures an Engine. Zero values use the defaults.
type Options struct {
	ShellName string
	Hostname  string
	User      string

	// Clock returns the current time, time.Now if nil.
	Clock func() time.Time
	PTY   vos.PTY
	// Uname is reported by uname, empty fields use vos.DefaultUname.
	Uname vos.Utsname

	// Events receives structured events, nil discards them.
	Events *logger.SessionLogger

	MaxAliasDepth int
	HistoryLimit  int
}

// Engine runs shell input against a filesystem and session state. It
// implements vos.System for the commands it dispatches.
//
// An Engine is not safe for concurrent use, one statement runs at a time.
type Engine struct {
	fs       *vfs.VFS
	state    *vos.State
	resolver vos.ProcessResolver
	opts     Options

	ptyMu sync.Mutex
	pty   vos.PTY

	evalDepth int
}

var _ vos.System = (*Engine)(nil)

// NewEngine creates an engine, commands are looked up with resolver.
func NewEngine(fsys *vfs.VFS, state *vos.State, resolver vos.ProcessResolver, opts Options) *Engine {
	if opts.ShellName == "" {
		opts.ShellName = DefaultShellName
	}
	if opts.Hostname == "" {
		opts.Hostname = "localhost"
	}
	if opts.User == "" {
		opts.User = "user"
	}
	opts.Uname = withDefaultUname(opts.Uname, opts.Hostname)
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.MaxAliasDepth <= 0 {
		opts.MaxAliasDepth = DefaultMaxAliasDepth
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}

	return &Engine{
		fs:       fsys,
		state:    state,
		resolver: resolver,
		opts:     opts,
		pty:      opts.PTY,
	}
}

// FS implements vos.System.FS.
func (e *Engine) FS() *vfs.VFS {
	return e.fs
}

// State implements vos.System.State.
func (e *Engine) State() *vos.State {
	return e.state
}

// SetState replaces the session state, used after the filesystem is wiped.
func (e *Engine) SetState(state *vos.State) {
	e.state = state
}

// Hostname implements vos.System.Hostname.
func (e *Engine) Hostname() string {
	return e.opts.Hostname
}

// Username implements vos.System.Username.
func (e *Engine) Username() string {
	return e.opts.User
}

// ShellName implements vos.System.ShellName.
func (e *Engine) ShellName() string {
	return e.opts.ShellName
}

// Now implements vos.System.Now.
func (e *Engine) Now() time.Time {
	return e.opts.Clock()
}

// GetPTY implements vos.System.GetPTY.
func (e *Engine) GetPTY() vos.PTY {
	e.ptyMu.Lock()
	defer e.ptyMu.Unlock()
	return e.pty
}

// SetPTY updates the terminal, it may be called from any goroutine.
func (e *Engine) SetPTY(pty vos.PTY) {
	e.ptyMu.Lock()
	defer e.ptyMu.Unlock()
	e.pty = pty
}

// Uname implements vos.System.Uname.
func (e *Engine) Uname() vos.Utsname {
	return e.opts.Uname
}

func withDefaultUname(u vos.Utsname, hostname string) vos.Utsname {
	def := vos.DefaultUname(hostname)
	for _, field := range []struct {
		value *string
		def   string
	}{
		{&u.Sysname, def.Sysname},
		{&u.Nodename, def.Nodename},
		{&u.Release, def.Release},
		{&u.Version, def.Version},
		{&u.Machine, def.Machine},
		{&u.Processor, def.Processor},
		{&u.OperatingSystem, def.OperatingSystem},
	} {
		if *field.value == "" {
			*field.value = field.def
		}
	}
	return u
}

// LookupCommand implements vos.System.LookupCommand.
func (e *Engine) LookupCommand(name string) (string, bool) {
	path, proc := e.resolver(name)
	return path, proc != nil
}

// LogInvalidInvocation implements vos.System.LogInvalidInvocation.
func (e *Engine) LogInvalidInvocation(name string, err error) {
	e.opts.Events.Record(logger.EventInvalidInvocation, logger.Fields{
		"command": name,
		"error":   err.Error(),
	})
}

// ExecuteInput runs a line of input: every statement is added to the
// history and run in order, outputs are concatenated and the exit code is
// the last statement's. Processing stops after a statement whose output
// begins with a sentinel, that output is moved to Result.Sentinel. It also
// stops on an alias loop which is returned as the error. The session state
// is persisted afterwards.
func (e *Engine) ExecuteInput(line string) (vos.Result, error) {
	defer func() { e.fs.SaveMeta(e.state.Snapshot()) }()
	return e.execute(line, true)
}

// Eval implements vos.System.Eval, it runs input without recording history.
func (e *Engine) Eval(line string) vos.Result {
	if e.evalDepth >= maxEvalDepth {
		return vos.Result{
			Output:   fmt.Sprintf("%s: maximum nesting level exceeded\n", e.opts.ShellName),
			ExitCode: 1,
		}
	}
	e.evalDepth++
	defer func() { e.evalDepth-- }()

	res, _ := e.execute(line, false)
	return res
}

func (e *Engine) execute(line string, recordHistory bool) (vos.Result, error) {
	var out strings.Builder
	exitCode := 0

	for _, stmt := range SplitStatements(line) {
		if recordHistory {
			e.state.AddHistory(stmt, e.opts.HistoryLimit)
		}

		res, err := e.RunPipeline(ParsePipeline(Tokenize(stmt)))
		exitCode = res.ExitCode
		if res.Sentinel == "" && HasSentinelPrefix(res.Output) {
			res.Sentinel, res.Output = res.Output, ""
		}
		out.WriteString(res.Output)
		if err != nil {
			return vos.Result{Output: out.String(), ExitCode: exitCode}, err
		}
		if res.Sentinel != "" {
			return vos.Result{Output: out.String(), ExitCode: exitCode, Sentinel: res.Sentinel}, nil
		}
	}

	return vos.Result{Output: out.String(), ExitCode: exitCode}, nil
}

// RunPipeline runs segments in order, each one reading the output of the
// one before it. The result is the last segment's.
func (e *Engine) RunPipeline(segments []Segment) (vos.Result, error) {
	return e.runPipeline(segments, nil, nil)
}

func (e *Engine) runPipeline(segments []Segment, input *string, aliasChain []string) (vos.Result, error) {
	carried := input
	var result vos.Result

	for _, seg := range segments {
		stdin := carried

		if seg.Stdin != nil {
			content, errRes := e.readRedirect(*seg.Stdin)
			if errRes != nil {
				e.state.SetExitCode(errRes.ExitCode)
				return *errRes, nil
			}
			stdin = &content
		}

		res, err := e.runSegment(seg, stdin, aliasChain)
		e.state.SetExitCode(res.ExitCode)
		if err != nil {
			return res, err
		}

		if seg.Stdout != nil {
			if errRes := e.writeRedirect(*seg.Stdout, seg.Append, res.Output); errRes != nil {
				e.state.SetExitCode(errRes.ExitCode)
				return *errRes, nil
			}
			res.Output = ""
		}

		output := res.Output
		carried = &output
		result = res
	}

	return result, nil
}

func (e *Engine) runSegment(seg Segment, stdin *string, aliasChain []string) (vos.Result, error) {
	switch {
	case len(seg.Words) == 0:
		if stdin == nil {
			return vos.Result{}, nil
		}
		return vos.Result{Output: *stdin}, nil

	case len(seg.Words) == 1:
		if name, ok := splitAssignment(seg.Words[0]); ok {
			value := ExpandWord(seg.Words[0], e.state.Env)[len(name)+1:]
			e.state.Env.Setenv(name, value)
			return vos.Result{}, nil
		}
	}

	return e.dispatch(seg, stdin, aliasChain)
}

func (e *Engine) dispatch(seg Segment, stdin *string, aliasChain []string) (vos.Result, error) {
	first := seg.Words[0]
	name := ExpandWord(first, e.state.Env)

	if !first.Literal {
		if value, ok := e.state.Aliases[first.Value]; ok {
			if inChain(aliasChain, first.Value) {
				if _, registered := e.LookupCommand(name); !registered {
					return e.aliasLoop(first.Value, aliasChain)
				}
			} else {
				if len(aliasChain) >= e.opts.MaxAliasDepth {
					return e.aliasLoop(first.Value, aliasChain)
				}
				return e.expandAlias(value, seg, stdin, append(aliasChain, first.Value))
			}
		}
	}

	args := ExpandWords(seg.Words, e.state.Env)
	return e.Invoke(args[0], args[1:], stdin), nil
}

func (e *Engine) expandAlias(value string, seg Segment, stdin *string, chain []string) (vos.Result, error) {
	var line strings.Builder
	line.WriteString(value)
	for _, w := range seg.Words[1:] {
		line.WriteByte(' ')
		line.WriteString(Quote(w))
	}

	// The value may hold several statements. Input goes to the first, the
	// arguments end up on the last and the outputs are joined so pipes and
	// redirects after the alias see all of them.
	chain = append([]string(nil), chain...)
	var out strings.Builder
	var res vos.Result
	for i, stmt := range SplitStatements(line.String()) {
		var in *string
		if i == 0 {
			in = stdin
		}

		var err error
		res, err = e.runPipeline(ParsePipeline(Tokenize(stmt)), in, chain)
		if res.Sentinel == "" && HasSentinelPrefix(res.Output) {
			res.Sentinel, res.Output = res.Output, ""
		}
		out.WriteString(res.Output)
		res.Output = out.String()
		if err != nil || res.Sentinel != "" {
			return res, err
		}
	}
	return res, nil
}

func (e *Engine) aliasLoop(name string, chain []string) (vos.Result, error) {
	err := &AliasLoopError{
		Name:  name,
		Chain: append(append([]string(nil), chain...), name),
	}
	e.opts.Events.Record(logger.EventAliasLoop, logger.Fields{
		"name":  name,
		"chain": logger.Strings(err.Chain),
	})

	return vos.Result{
		Output:   fmt.Sprintf("%s: %s: %v\n", e.opts.ShellName, name, ErrAliasLoop),
		ExitCode: 1,
	}, err
}

func inChain(chain []string, name string) bool {
	for _, c := range chain {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Engine) readRedirect(target Token) (string, *vos.Result) {
	name := ExpandWord(target, e.state.Env)
	content, err := e.fs.Read(e.fs.Resolve(name, e.state.Cwd))
	if err != nil {
		return "", &vos.Result{
			Output:   fmt.Sprintf("%s: %s: %s\n", e.opts.ShellName, name, vfs.Describe(err)),
			ExitCode: 1,
		}
	}
	return content, nil
}

func (e *Engine) writeRedirect(target Token, appending bool, content string) *vos.Result {
	name := ExpandWord(target, e.state.Env)
	p := e.fs.Resolve(name, e.state.Cwd)

	var err error
	if appending {
		err = e.fs.Append(p, content)
	} else {
		err = e.fs.Write(p, content)
	}
	if err != nil {
		return &vos.Result{
			Output:   fmt.Sprintf("%s: %s: %s\n", e.opts.ShellName, name, vfs.Describe(err)),
			ExitCode: 1,
		}
	}
	return nil
}

// Invoke implements vos.System.Invoke. It's the boundary between the shell
// and commands: unknown names exit 127 and a panicking command exits 1.
func (e *Engine) Invoke(name string, args []string, stdin *string) (res vos.Result) {
	argv := append([]string{name}, args...)

	path, proc := e.resolver(name)
	if proc == nil {
		e.opts.Events.Record(logger.EventUnknownCommand, logger.Fields{
			"command": name,
			"args":    logger.Strings(argv),
		})
		return vos.Result{
			Output:   fmt.Sprintf("%s: %s: command not found\n", e.opts.ShellName, name),
			ExitCode: 127,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.opts.Events.Record(logger.EventPanic, logger.Fields{
				"command": name,
				"message": fmt.Sprint(r),
				"stack":   string(debug.Stack()),
			})
			res = vos.Result{
				Output:   fmt.Sprintf("%s: internal error: %v\n", name, r),
				ExitCode: 1,
			}
		}
	}()

	res = vos.NewProcess(e, argv, stdin).Run(proc)

	e.opts.Events.Record(logger.EventCommand, logger.Fields{
		"command":   name,
		"path":      path,
		"args":      logger.Strings(argv),
		"exit_code": res.ExitCode,
	})
	return res
}
