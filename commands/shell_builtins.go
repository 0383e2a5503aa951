package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/shell"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

const (
	envHome   = "HOME"
	envPwd    = "PWD"
	envOldPwd = "OLDPWD"
)

// Pwd implements the UNIX pwd command.
func Pwd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "pwd [-LP]",
		Short: "Print the name of the current working directory.",
	}
	cmd.Flags().Bool('L', "print the logical path (default)")
	cmd.Flags().Bool('P', "print the physical path, the same as -L")

	return cmd.Run(virtOS, func() int {
		fmt.Fprintln(virtOS.Stdout(), virtOS.Getwd())
		return 0
	})
}

// Cd is the cd shell builtin.
func Cd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cd [DIR]",
		Short: "Change the working directory to DIR, HOME by default. - is the previous directory.",
	}
	cmd.Flags().Bool('L', "follow symbolic links (default)")
	cmd.Flags().Bool('P', "use the physical directory structure")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		w := virtOS.Stdout()

		var target, display string
		switch len(args) {
		case 0:
			target = virtOS.Getenv(envHome)
			if target == "" {
				target = virtOS.FS().Home()
			}
			display = target
		case 1:
			target, display = args[0], args[0]
			if target == "-" {
				prev, ok := virtOS.LookupEnv(envOldPwd)
				if !ok {
					prev = virtOS.Getwd()
				}
				target, display = prev, prev
			}
		default:
			fmt.Fprintln(w, "cd: too many arguments")
			return 1
		}

		previous := virtOS.Getwd()
		if err := virtOS.Chdir(target); err != nil {
			fmt.Fprintf(w, "cd: %s: %s\n", display, vfs.Describe(err))
			return 1
		}

		virtOS.Setenv(envOldPwd, previous)
		virtOS.Setenv(envPwd, virtOS.Getwd())
		if len(args) == 1 && args[0] == "-" {
			fmt.Fprintln(w, virtOS.Getwd())
		}
		return 0
	})
}

// splitAssignment splits NAME=value, ok is false if arg has no "=".
func splitAssignment(arg string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(arg, "=")
	return name, value, ok && name != ""
}

// trimQuotes removes one pair of matching surrounding quotes.
func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Export sets or lists environment variables.
func Export(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "export [NAME[=VALUE]...]",
		Short: "Set environment variables, list them with no arguments.",
	}
	cmd.Flags().Bool('p', "list all exported variables")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			env := virtOS.State().Env
			for _, key := range env.Keys() {
				if key == vos.ExitCodeVar {
					continue
				}
				value := strings.TrimSuffix(env.Getenv(key), "\n")
				fmt.Fprintf(virtOS.Stdout(), "export %s=\"%s\"\n", key, value)
			}
			return 0
		}

		exitCode := 0
		for _, arg := range args {
			name, value, ok := splitAssignment(arg)
			switch {
			case !shell.IsName(name):
				fmt.Fprintf(virtOS.Stderr(), "export: `%s': not a valid identifier\n", arg)
				exitCode = 1
			case ok:
				virtOS.Setenv(name, value)
			case !hasEnv(virtOS, name):
				// Exporting an unset variable makes it exist, empty.
				virtOS.Setenv(name, "")
			}
		}
		return exitCode
	})
}

func hasEnv(virtOS vos.VOS, name string) bool {
	_, ok := virtOS.LookupEnv(name)
	return ok
}

// Unset removes environment variables.
func Unset(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "unset [-fv] [NAME...]",
		Short: "Unset shell values and functions.",
	}
	cmd.Flags().Bool('f', "treat NAME as a function")
	cmd.Flags().Bool('v', "treat NAME as a variable")

	return cmd.Run(virtOS, func() int {
		for _, name := range cmd.Flags().Args() {
			virtOS.Unsetenv(name)
		}
		return 0
	})
}

// Read stores the first line of input in a variable.
func Read(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "read [-r] [NAME...]",
		Short: "Read a line from standard input into variables, REPLY by default.",
	}
	cmd.Flags().Bool('r', "don't treat backslashes as escapes (always on)")
	prompt := cmd.Flags().String('p', "", "output PROMPT before reading")

	return cmd.Run(virtOS, func() int {
		if *prompt != "" {
			fmt.Fprint(virtOS.Stdout(), *prompt)
		}
		if !virtOS.HasStdin() {
			return 1
		}

		input := vos.ReadAllStdin(virtOS)
		if input == "" {
			return 1
		}
		line, _, _ := strings.Cut(input, "\n")

		names := cmd.Flags().Args()
		if len(names) == 0 {
			names = []string{"REPLY"}
		}

		// Words are split between names, the last one gets the rest.
		fields := strings.Fields(line)
		for i, name := range names {
			switch {
			case len(names) == 1:
				virtOS.Setenv(name, line)
			case i == len(names)-1 && i < len(fields):
				virtOS.Setenv(name, strings.Join(fields[i:], " "))
			case i < len(fields):
				virtOS.Setenv(name, fields[i])
			default:
				virtOS.Setenv(name, "")
			}
		}
		return 0
	})
}

// Alias defines or lists aliases.
func Alias(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "alias [NAME[=VALUE]...]",
		Short: "Define or display aliases.",
	}
	cmd.Flags().Bool('p', "print all defined aliases")

	return cmd.Run(virtOS, func() int {
		state := virtOS.State()
		args := cmd.Flags().Args()
		w := virtOS.Stdout()

		if len(args) == 0 {
			names := state.AliasNames()
			if len(names) == 0 {
				fmt.Fprintln(w, "(no aliases)")
			}
			for _, name := range names {
				fmt.Fprintf(w, "alias %s='%s'\n", name, state.Aliases[name])
			}
			return 0
		}

		exitCode := 0
		for _, arg := range args {
			name, value, ok := splitAssignment(arg)
			if ok {
				state.Aliases[name] = trimQuotes(value)
				continue
			}
			if value, found := state.Aliases[arg]; found {
				fmt.Fprintf(w, "alias %s='%s'\n", arg, value)
			} else {
				fmt.Fprintf(w, "alias: %s: not found\n", arg)
				exitCode = 1
			}
		}
		return exitCode
	})
}

// Unalias removes aliases.
func Unalias(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "unalias [-a] NAME...",
		Short: "Remove each NAME from the list of defined aliases.",
	}
	all := cmd.Flags().Bool('a', "remove all alias definitions")

	return cmd.Run(virtOS, func() int {
		state := virtOS.State()
		if *all {
			state.Aliases = make(map[string]string)
			return 0
		}

		exitCode := 0
		for _, name := range cmd.Flags().Args() {
			if _, ok := state.Aliases[name]; !ok {
				fmt.Fprintf(virtOS.Stderr(), "unalias: %s: not found\n", name)
				exitCode = 1
				continue
			}
			delete(state.Aliases, name)
		}
		return exitCode
	})
}

// History displays or clears the statement history.
func History(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "history [-c] [N]",
		Short: "Display the history list with line numbers, the last N entries if given.",
	}
	clearAll := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(virtOS, func() int {
		state := virtOS.State()
		if *clearAll {
			state.History = nil
			return 0
		}

		entries := state.History
		offset := 0
		if args := cmd.Flags().Args(); len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				fmt.Fprintf(virtOS.Stderr(), "history: %s: numeric argument required\n", args[0])
				return 1
			}
			if n < len(entries) {
				offset = len(entries) - n
			}
		}

		for i, line := range entries[offset:] {
			fmt.Fprintf(virtOS.Stdout(), "  %4d  %s\n", offset+i+1, line)
		}
		return 0
	})
}

// Exit asks the host to end the session.
func Exit(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "exit [N]",
		Short: "Exit the shell with a status of N, 0 by default.",

		// Negative codes look like flags.
		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		code := 0
		if args := virtOS.Args(); len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				code = n
			}
		}
		fmt.Fprint(virtOS.Stdout(), shell.ExitSentinel(code))
		return code
	})
}

// Clear asks the host to clear the screen.
func Clear(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "clear",
		Short: "Clear the terminal screen.",
	}

	return cmd.Run(virtOS, func() int {
		fmt.Fprint(virtOS.Stdout(), shell.SentinelClear)
		return 0
	})
}

// WipeFS asks the host to delete every persisted file and start over.
func WipeFS(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "wipe-fs",
		Short: "Permanently delete all persisted files and reset to defaults.",
	}

	return cmd.Run(virtOS, func() int {
		if !virtOS.FS().Persistent() {
			fmt.Fprintln(virtOS.Stderr(), "wipe-fs: persistent storage not available")
			return 1
		}
		fmt.Fprint(virtOS.Stdout(), shell.SentinelWipeFS)
		return 0
	})
}

// Motd prints the message of the day.
func Motd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "motd",
		Short: "Display the message of the day.",
	}

	return cmd.Run(virtOS, func() int {
		content, _ := virtOS.FS().Read("/etc/motd")
		io.WriteString(virtOS.Stdout(), content)
		return 0
	})
}

// Help lists the available commands or shows help for one.
func Help(virtOS vos.VOS) int {
	args := virtOS.Args()
	w := virtOS.Stdout()

	if len(args) > 1 {
		exitCode := 0
		for _, name := range args[1:] {
			if _, ok := virtOS.LookupCommand(name); !ok {
				fmt.Fprintf(w, "help: no help topics match `%s'.\n", name)
				exitCode = 1
				continue
			}
			res := virtOS.Invoke(name, []string{"--help"}, nil)
			io.WriteString(w, res.Output)
		}
		return exitCode
	}

	fmt.Fprintf(w, "%s, version 1.0\n", virtOS.ShellName())
	fmt.Fprintln(w, "Type `help name' to find out more about the command `name'.")
	fmt.Fprintln(w)

	names := CommandNames()
	sort.Strings(names)

	const perRow = 6
	for i := 0; i < len(names); i += perRow {
		end := i + perRow
		if end > len(names) {
			end = len(names)
		}
		var row []string
		for _, name := range names[i:end] {
			row = append(row, fmt.Sprintf("%-12s", name))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, ""), " "))
	}
	return 0
}

var _ vos.ProcessFunc = Pwd
var _ vos.ProcessFunc = Cd
var _ vos.ProcessFunc = Export
var _ vos.ProcessFunc = Unset
var _ vos.ProcessFunc = Read
var _ vos.ProcessFunc = Alias
var _ vos.ProcessFunc = Unalias
var _ vos.ProcessFunc = History
var _ vos.ProcessFunc = Exit
var _ vos.ProcessFunc = Clear
var _ vos.ProcessFunc = WipeFS
var _ vos.ProcessFunc = Motd
var _ vos.ProcessFunc = Help

func init() {
	mustAddBinCmd("pwd", Pwd)
	mustAddBinCmd("cd", Cd)
	mustAddBinCmd("export", Export)
	mustAddBinCmd("unset", Unset)
	mustAddBinCmd("read", Read)
	mustAddBinCmd("alias", Alias)
	mustAddBinCmd("unalias", Unalias)
	mustAddBinCmd("history", History)
	mustAddBinCmd("exit", Exit)
	mustAddBinCmd("clear", Clear)
	mustAddBinCmd("wipe-fs", WipeFS)
	mustAddBinCmd("motd", Motd)
	mustAddBinCmd("help", Help)
}
