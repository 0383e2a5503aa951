package commands

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Which implements the UNIX which command.
func Which(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "which: missing argument")
			return 1
		}

		exitCode := 0
		for _, name := range args {
			switch path, ok := virtOS.LookupCommand(name); {
			case ok:
				fmt.Fprintln(virtOS.Stdout(), path)
			default:
				fmt.Fprintf(virtOS.Stderr(), "which: no %s in (%s)\n", name, searchPath(virtOS))
				exitCode = 1
			}
		}
		return exitCode
	})
}

func searchPath(virtOS vos.VOS) string {
	if p := virtOS.Getenv("PATH"); p != "" {
		return p
	}
	return vos.DefaultPath
}

var errNotFound = errors.New("not found")

// describeCommand explains how the shell interprets name.
func describeCommand(virtOS vos.VOS, name string) (string, error) {
	if value, ok := virtOS.State().Aliases[name]; ok {
		return fmt.Sprintf("%s is aliased to '%s'", name, value), nil
	}
	if path, ok := virtOS.LookupCommand(name); ok {
		return fmt.Sprintf("%s is %s", name, path), nil
	}
	return "", fmt.Errorf("%s: %w", name, errNotFound)
}

// Type describes how each name would be interpreted as a command.
func Type(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "type NAME...",
		Short: "Display information about command type.",
	}
	pathOnly := cmd.Flags().Bool('p', "print the path a command would run")
	kindOnly := cmd.Flags().Bool('t', "print a single word: alias, file or nothing")

	return cmd.RunEachArg(virtOS, func(name string) error {
		_, isAlias := virtOS.State().Aliases[name]
		path, isCommand := virtOS.LookupCommand(name)

		switch {
		case *kindOnly && isAlias:
			fmt.Fprintln(virtOS.Stdout(), "alias")
		case *kindOnly && isCommand:
			fmt.Fprintln(virtOS.Stdout(), "file")
		case *pathOnly && isCommand:
			fmt.Fprintln(virtOS.Stdout(), path)
		case *kindOnly || *pathOnly:
			if !isAlias && !isCommand {
				return fmt.Errorf("%s: %w", name, errNotFound)
			}
		default:
			desc, err := describeCommand(virtOS, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(virtOS.Stdout(), desc)
		}
		return nil
	})
}

// Command runs a command, bypassing aliases, or describes it.
func Command(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "command [-vV] COMMAND [ARG...]",
		Short: "Run COMMAND with ARGs ignoring aliases, or display information about it.",
	}
	short := cmd.Flags().Bool('v', "print the path or alias COMMAND resolves to")
	verbose := cmd.Flags().Bool('V', "print a description of COMMAND")

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			return 0
		}

		switch {
		case *verbose:
			desc, err := describeCommand(virtOS, args[0])
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "command: %s\n", err)
				return 1
			}
			fmt.Fprintln(virtOS.Stdout(), desc)
			return 0

		case *short:
			if value, ok := virtOS.State().Aliases[args[0]]; ok {
				fmt.Fprintf(virtOS.Stdout(), "alias %s='%s'\n", args[0], value)
				return 0
			}
			path, ok := virtOS.LookupCommand(args[0])
			if !ok {
				return 1
			}
			fmt.Fprintln(virtOS.Stdout(), path)
			return 0
		}

		res := virtOS.Invoke(args[0], args[1:], stdinString(virtOS))
		return forward(virtOS, res)
	})
}

// stdinString returns the command's input for handing to a child, nil if it
// had none.
func stdinString(virtOS vos.VOS) *string {
	if !virtOS.HasStdin() {
		return nil
	}
	in := vos.ReadAllStdin(virtOS)
	return &in
}

var _ vos.ProcessFunc = Which
var _ vos.ProcessFunc = Type
var _ vos.ProcessFunc = Command

func init() {
	mustAddBinCmd("which", Which)
	mustAddBinCmd("type", Type)
	mustAddBinCmd("command", Command)
}
