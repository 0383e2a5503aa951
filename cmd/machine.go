package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/josephlewis42/mathshell/core"
	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/spf13/cobra"
)

// machineFlags selects the machine a local command runs against.
type machineFlags struct {
	user      string
	ephemeral bool
}

func (f *machineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "Log in as USER rather than the configured user.")
	cmd.Flags().BoolVar(&f.ephemeral, "ephemeral", false, "Keep the filesystem in memory and discard it on exit.")
}

// config loads the configuration, ephemeral machines fall back to the
// defaults if init was never run.
func (f *machineFlags) config() (*config.Configuration, error) {
	cfg, err := loadConfig()
	if err != nil && f.ephemeral && errors.Is(err, fs.ErrNotExist) {
		return config.Ephemeral(), nil
	}
	return cfg, err
}

// openMachine starts a machine backed by the user's store, recording its
// events in the event log. The returned function closes both.
func (f *machineFlags) openMachine(ctx context.Context, cfg *config.Configuration, appLogger *log.Logger, pty vos.PTY) (*core.Machine, func(), error) {
	user := f.user
	if user == "" {
		user = cfg.User
	}

	var store vfs.Store
	if f.ephemeral {
		store = vfs.NewMemStore()
	} else {
		userFs, err := cfg.UserDataFs(user)
		if err != nil {
			return nil, nil, err
		}
		store = vfs.NewAferoStore(userFs)
	}

	eventFd, err := cfg.OpenEventLog()
	if err != nil {
		return nil, nil, err
	}
	events := logger.NewJSONLinesLogRecorder(eventFd).NewSession()
	events.Record(logger.EventSessionStart, logger.Fields{
		"username": user,
		"term":     pty.Term,
		"pty":      pty.IsPTY,
	})

	machine, err := core.NewMachine(ctx, cfg, core.MachineOptions{
		Store:  store,
		User:   user,
		Events: events,
		Logger: appLogger,
		PTY:    pty,
	})
	if err != nil {
		eventFd.Close()
		return nil, nil, err
	}

	return machine, func() {
		if err := machine.Close(); err != nil {
			appLogger.Printf("closing machine: %v", err)
		}
		eventFd.Close()
	}, nil
}
