package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

const (
	binDir    = "/bin"
	usrBinDir = "/usr/bin"
)

// AllCommands holds every registered command keyed by its virtual path.
var AllCommands = make(map[string]vos.ProcessFunc)

// commandDirs maps a command name to the directory it's registered in.
var commandDirs = make(map[string]string)

func mustAddCmd(dir, name string, cmd vos.ProcessFunc) {
	if _, ok := commandDirs[name]; ok {
		panic(fmt.Sprintf("command %q registered twice", name))
	}
	commandDirs[name] = dir
	AllCommands[path.Join(dir, name)] = cmd
}

// mustAddBinCmd adds a command under /bin.
func mustAddBinCmd(name string, cmd vos.ProcessFunc) {
	mustAddCmd(binDir, name, cmd)
}

// mustAddUsrBinCmd adds a command under /usr/bin.
func mustAddUsrBinCmd(name string, cmd vos.ProcessFunc) {
	mustAddCmd(usrBinDir, name, cmd)
}

// BuiltinProcessResolver finds a registered command by name or by its full
// virtual path.
func BuiltinProcessResolver(name string) (string, vos.ProcessFunc) {
	if strings.HasPrefix(name, "/") {
		p := vfs.Clean(name)
		return p, AllCommands[p]
	}
	if strings.Contains(name, "/") {
		return "", nil
	}

	dir, ok := commandDirs[name]
	if !ok {
		return "", nil
	}
	p := path.Join(dir, name)
	return p, AllCommands[p]
}

// CommandEntry describes a command implementation and the paths it's
// installed at.
type CommandEntry struct {
	Names []string
	Proc  vos.ProcessFunc
}

// ListBuiltinCommands returns the registered commands, commands sharing a
// named implementation are grouped together. Closures such as the no-op
// commands share code but not behavior so they're listed separately.
func ListBuiltinCommands() []CommandEntry {
	var paths []string
	for p := range AllCommands {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	index := make(map[uintptr]int)
	var out []CommandEntry
	for _, p := range paths {
		proc := AllCommands[p]
		ptr := reflect.ValueOf(proc).Pointer()
		if fn := runtime.FuncForPC(ptr); fn != nil && strings.Contains(fn.Name(), ".func") {
			out = append(out, CommandEntry{Names: []string{p}, Proc: proc})
			continue
		}
		if i, ok := index[ptr]; ok {
			out[i].Names = append(out[i].Names, p)
			continue
		}
		index[ptr] = len(out)
		out = append(out, CommandEntry{Names: []string{p}, Proc: proc})
	}
	return out
}

// CommandNames returns the sorted names of all commands.
func CommandNames() []string {
	var out []string
	for name := range commandDirs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1 << 50},
		{"T", 1 << 40},
		{"G", 1 << 30},
		{"M", 1 << 20},
		{"K", 1 << 10},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient >= 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
	args  []string
}

// SetArgs overrides the arguments parsed by Run, Args()[0] is still the
// command name.
func (s *SimpleCommand) SetArgs(args []string) {
	s.args = args
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
//
// Bad flags print the error and usage and exit 2.
func (s *SimpleCommand) Run(virtOS vos.VOS, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	args := s.args
	if args == nil {
		args = virtOS.Args()
	}

	err := opts.Getopt(args, nil)
	if err != nil {
		virtOS.LogInvalidInvocation(err)
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", commandName(virtOS), err)
		fmt.Fprintf(virtOS.Stderr(), "usage: %s\n", s.Use)
		return 2
	}

	if *s.ShowHelp {
		s.PrintHelp(virtOS.Stdout())
		return 0
	}

	return callback()
}

// RunE is like Run, but a returned error is printed and exits 1.
func (s *SimpleCommand) RunE(virtOS vos.VOS, callback func() error) int {
	return s.Run(virtOS, func() int {
		if err := callback(); err != nil {
			s.LogProgramError(virtOS, err)
			return 1
		}
		return 0
	})
}

// RunEachArg calls callback for every positional argument. Errors are
// printed and the remaining arguments still run.
func (s *SimpleCommand) RunEachArg(virtOS vos.VOS, callback func(arg string) error) int {
	return s.Run(virtOS, func() int {
		exitCode := 0
		for _, arg := range s.Flags().Args() {
			if err := callback(arg); err != nil {
				s.LogProgramError(virtOS, err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

// RunEachFileOrStdin calls callback with the contents of each file, or with
// stdin if there are no files. The name "-" also reads stdin.
func (s *SimpleCommand) RunEachFileOrStdin(virtOS vos.VOS, files []string, callback func(name string, fd io.Reader) error) int {
	if len(files) == 0 {
		files = []string{"-"}
	}

	exitCode := 0
	for _, name := range files {
		if name == "-" {
			if err := callback(name, virtOS.Stdin()); err != nil {
				s.LogProgramError(virtOS, err)
				exitCode = 1
			}
			continue
		}

		content, err := readFile(virtOS, name)
		if err != nil {
			s.LogProgramError(virtOS, err)
			exitCode = 1
			continue
		}
		if err := callback(name, strings.NewReader(content)); err != nil {
			s.LogProgramError(virtOS, err)
			exitCode = 1
		}
	}
	return exitCode
}

// LogProgramError prints an error prefixed by the command name.
func (s *SimpleCommand) LogProgramError(virtOS vos.VOS, err error) {
	fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", commandName(virtOS), describe(err))
}

func commandName(virtOS vos.VOS) string {
	args := virtOS.Args()
	if len(args) == 0 {
		return ""
	}
	return path.Base(args[0])
}

// describe renders filesystem errors the way coreutils does:
// "NAME: No such file or directory".
func describe(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Sprintf("%s: %s", pathErr.Path, vfs.Describe(pathErr.Err))
	}
	return err.Error()
}

// fileError is a filesystem error reported against the name the user typed.
func fileError(name string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &fs.PathError{Op: pathErr.Op, Path: name, Err: pathErr.Err}
	}
	return &fs.PathError{Op: "open", Path: name, Err: err}
}

// readFile reads a file relative to the working directory, errors mention
// name as given.
func readFile(virtOS vos.VOS, name string) (string, error) {
	content, err := virtOS.FS().Read(virtOS.Resolve(name))
	if err != nil {
		return "", fileError(name, err)
	}
	return content, nil
}

// readInputs concatenates the named files, or returns stdin if there are
// none. Unreadable files are reported and make the exit code 1.
func (s *SimpleCommand) readInputs(virtOS vos.VOS, files []string) (string, int) {
	var out strings.Builder
	exitCode := s.RunEachFileOrStdin(virtOS, files, func(_ string, fd io.Reader) error {
		_, err := io.Copy(&out, fd)
		return err
	})
	return out.String(), exitCode
}

// splitLines splits text into lines, a trailing newline doesn't produce an
// empty last line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// joinLines is the inverse of splitLines.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// stringList is a repeatable flag, unlike getopt's List it doesn't split
// values on commas.
type stringList []string

var _ getopt.Value = (*stringList)(nil)

func (l *stringList) Set(value string, _ getopt.Option) error {
	*l = append(*l, value)
	return nil
}

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
	ColorMatch     = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	value  *string
	virtOS vos.VOS
}

// Init sets up the flag and virtual OS to determine the color output.
func (c *ColorPrinter) Init(flags *getopt.Set, virtOS vos.VOS) {
	c.virtOS = virtOS
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		return c.virtOS.GetPTY().IsPTY
	}
}

func (c *ColorPrinter) Sprintf(clr *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		// The package level switch turns color off when the host process
		// isn't a terminal, sessions decide for themselves.
		clr = copyColor(clr)
		clr.EnableColor()
		return clr.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

func copyColor(c *color.Color) *color.Color {
	out := *c
	return &out
}
