package core

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/mathshell/commands"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/vfs"
)

const (
	EnvPrompt = "PS1"

	DefaultPrompt = `\u@\h:\w\$ `

	clearScreen = "\x1b[H\x1b[2J"
)

// Terminal is the connection a Session reads lines from and writes output
// to.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// IsTerminal enables line editing, otherwise lines are read verbatim.
	IsTerminal bool
	// CRLF translates newlines in output for terminals in raw mode.
	CRLF bool
	// Width returns the number of columns, zero if unknown.
	Width func() int

	// MakeRaw and ExitRaw switch the terminal in and out of raw mode around
	// each line, nil does nothing.
	MakeRaw func() error
	ExitRaw func() error
	// OnWidthChanged registers a callback for window resizes, nil never
	// calls it.
	OnWidthChanged func(func())
}

// Session is an interactive shell loop over a Terminal.
type Session struct {
	machine *Machine
	term    Terminal
	rl      *readline.Instance
	events  *logger.SessionLogger
	logger  *log.Logger

	userColor *color.Color
	dirColor  *color.Color
}

// NewSession prepares a shell loop for machine on term.
func NewSession(machine *Machine, term Terminal) (*Session, error) {
	nop := func() error { return nil }
	if term.MakeRaw == nil {
		term.MakeRaw = nop
	}
	if term.ExitRaw == nil {
		term.ExitRaw = nop
	}
	if term.Width == nil {
		term.Width = func() int { return 0 }
	}
	if term.OnWidthChanged == nil {
		term.OnWidthChanged = func(func()) {}
	}

	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(term.In),
		Stdout:       term.Out,
		Stderr:       term.Out,
		HistoryLimit: machine.cfg.HistorySize,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItemDynamic(func(string) []string {
				return commands.CommandNames()
			}),
		),
		FuncGetWidth: term.Width,
		FuncIsTerminal: func() bool {
			return term.IsTerminal
		},
		FuncMakeRaw:        term.MakeRaw,
		FuncExitRaw:        term.ExitRaw,
		FuncOnWidthChanged: term.OnWidthChanged,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	// Carry the persisted history into line editing.
	for _, line := range machine.Engine().State().History {
		_ = rl.SaveHistory(line)
	}

	s := &Session{
		machine:   machine,
		term:      term,
		rl:        rl,
		events:    machine.opts.Events,
		logger:    machine.opts.Logger,
		userColor: color.New(color.FgGreen, color.Bold),
		dirColor:  color.New(color.FgBlue, color.Bold),
	}
	if term.IsTerminal {
		s.userColor.EnableColor()
		s.dirColor.EnableColor()
	} else {
		s.userColor.DisableColor()
		s.dirColor.DisableColor()
	}
	return s, nil
}

// Prompt expands PS1, or the default prompt if it's unset.
func (s *Session) Prompt() string {
	engine := s.machine.Engine()
	user := engine.Username()
	host := engine.Hostname()

	wd := engine.State().Cwd
	if home := s.machine.FS().Home(); vfs.IsWithin(wd, home) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}

	prompt := engine.State().Env.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = strings.Replace(DefaultPrompt, `\u@\h`, s.userColor.Sprint(user+"@"+host), 1)
		wd = s.dirColor.Sprint(wd)
	}

	prompt = strings.ReplaceAll(prompt, `\u`, user)
	prompt = strings.ReplaceAll(prompt, `\h`, host)
	prompt = strings.ReplaceAll(prompt, `\w`, wd)

	if user == "root" {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

func (s *Session) write(text string) {
	if text == "" {
		return
	}
	if s.term.CRLF {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if _, err := io.WriteString(s.term.Out, text); err != nil {
		s.logger.Printf("write: %v", err)
	}
}

// Run shows the message of the day and reads lines until the input closes
// or the shell exits. It returns the session's exit code.
func (s *Session) Run() (exitCode int) {
	defer func() {
		s.events.Record(logger.EventSessionEnd, logger.Fields{
			"exit_code": exitCode,
		})
	}()

	s.write(s.machine.Motd())

	for {
		s.rl.SetPrompt(s.Prompt())
		line, err := s.rl.Readline()

		switch {
		case err == io.EOF:
			return s.machine.Engine().State().ExitCode()

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			s.logger.Printf("Error readline: %v", err)
			return 1

		case strings.TrimSpace(line) == "":
			continue
		}

		out := s.machine.Execute(line)
		s.write(out.Output)
		if out.Clear {
			s.write(clearScreen)
		}
		if out.Exit {
			return out.ExitCode
		}
	}
}

// Close releases the line editor.
func (s *Session) Close() error {
	return s.rl.Close()
}

// RunScript executes each line of script in order without line editing and
// writes the output to w. It stops early if the script exits.
func RunScript(machine *Machine, script string, w io.Writer) (exitCode int, err error) {
	defer func() {
		machine.opts.Events.Record(logger.EventSessionEnd, logger.Fields{
			"exit_code": exitCode,
		})
	}()

	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		out := machine.Execute(line)
		if _, err := fmt.Fprint(w, out.Output); err != nil {
			return 1, err
		}
		exitCode = out.ExitCode
		if out.Exit {
			break
		}
	}
	return exitCode, nil
}
