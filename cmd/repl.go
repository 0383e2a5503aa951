package cmd

import (
	"log"
	"os"

	"github.com/josephlewis42/mathshell/core"
	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replFlags machineFlags

// replCmd runs the shell on the local terminal
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive shell in the current terminal.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		replLogger := log.New(cmd.ErrOrStderr(), "[repl] ", 0)
		cfg, err := replFlags.config()
		if err != nil {
			return err
		}

		fd := int(os.Stdin.Fd())
		isTerminal := cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd)

		pty := vos.PTY{Width: 80, Height: 24, Term: os.Getenv("TERM"), IsPTY: isTerminal}
		if isTerminal {
			if w, h, err := term.GetSize(fd); err == nil {
				pty.Width, pty.Height = w, h
			}
		}

		machine, closeMachine, err := replFlags.openMachine(cmd.Context(), cfg, replLogger, pty)
		if err != nil {
			return err
		}
		defer closeMachine()

		var oldState *term.State
		session, err := core.NewSession(machine, core.Terminal{
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
			IsTerminal: isTerminal,
			Width: func() int {
				if !isTerminal {
					return 0
				}
				w, _, err := term.GetSize(fd)
				if err != nil {
					return 0
				}
				return w
			},
			MakeRaw: func() error {
				if !isTerminal {
					return nil
				}
				state, err := term.MakeRaw(fd)
				if err != nil {
					return err
				}
				oldState = state
				return nil
			},
			ExitRaw: func() error {
				if oldState == nil {
					return nil
				}
				state := oldState
				oldState = nil
				return term.Restore(fd, state)
			},
		})
		if err != nil {
			return err
		}
		defer session.Close()

		return exitWith(cmd, session.Run())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replFlags.register(replCmd)
}
