package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// exported drops shell-internal variables like $? from an environment list.
func exported(environ []string) []string {
	out := environ[:0:0]
	for _, kv := range environ {
		if !strings.HasPrefix(kv, vos.ExitCodeVar+"=") {
			out = append(out, kv)
		}
	}
	return out
}

// Env implements the POSIX env command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "env [OPTION]... [NAME=VALUE]... [COMMAND [ARG]...]",
		Short: "Set each NAME to VALUE in the environment and run COMMAND.",
	}
	flags := cmd.Flags()
	ignore := flags.BoolLong("ignore-environment", 'i', "start with an empty environment")
	var unset stringList
	flags.FlagLong(&unset, "unset", 'u', "remove variable from the environment")
	nul := flags.BoolLong("null", '0', "end each output line with NUL, not newline")

	return cmd.Run(virtOS, func() int {
		state := virtOS.State()
		env := vos.NewMapEnvFromMap(state.Env.Map())
		if *ignore {
			env = vos.NewMapEnv()
		}
		for _, name := range unset {
			env.Unsetenv(name)
		}

		args := flags.Args()
		for len(args) > 0 && strings.Contains(args[0], "=") {
			key, value, _ := strings.Cut(args[0], "=")
			if key == "" {
				fmt.Fprintf(virtOS.Stderr(), "env: cannot set '%s': Invalid argument\n", args[0])
				return 125
			}
			env.Setenv(key, value)
			args = args[1:]
		}

		if len(args) == 0 {
			end := "\n"
			if *nul {
				end = "\x00"
			}
			for _, envDef := range exported(env.Environ()) {
				fmt.Fprint(virtOS.Stdout(), envDef+end)
			}
			return 0
		}

		// The command sees the modified environment, the session doesn't.
		saved := state.Env
		state.Env = env
		defer func() { state.Env = saved }()

		res := virtOS.Invoke(args[0], args[1:], stdinString(virtOS))
		return forward(virtOS, res)
	})
}

// Printenv prints all or part of the environment.
func Printenv(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "printenv [OPTION]... [VARIABLE]...",
		Short: "Print the values of the specified environment VARIABLE(s).",
	}
	nul := cmd.Flags().BoolLong("null", '0', "end each output line with NUL, not newline")

	return cmd.Run(virtOS, func() int {
		end := "\n"
		if *nul {
			end = "\x00"
		}

		names := cmd.Flags().Args()
		if len(names) == 0 {
			for _, envDef := range exported(virtOS.Environ()) {
				fmt.Fprint(virtOS.Stdout(), envDef+end)
			}
			return 0
		}

		exitCode := 0
		for _, name := range names {
			value, ok := virtOS.LookupEnv(name)
			if !ok || name == vos.ExitCodeVar {
				exitCode = 1
				continue
			}
			fmt.Fprint(virtOS.Stdout(), value+end)
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Env
var _ vos.ProcessFunc = Printenv

func init() {
	mustAddUsrBinCmd("env", Env)
	mustAddUsrBinCmd("printenv", Printenv)
}
