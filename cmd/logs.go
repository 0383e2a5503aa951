package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/ttylog"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	idleTimeLimit  time.Duration
	bugReport      bool
	sessionsReport bool
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the event log and session recordings.",
}

// reportCommand summarizes the event log
var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of logged events.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report interface{}
		var update func(*logger.LogEntry)
		switch {
		case bugReport:
			r := logger.NewBugReport()
			report, update = r, r.Update
		case sessionsReport:
			r := &logger.InteractionReport{}
			report, update = r, r.Update
		default:
			r := &logger.Report{}
			report, update = r, r.Update
		}

		if err := logger.ReadJSONLinesLog(fd, update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

// listCommand shows the available recordings
var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		names, err := config.ListRecordings()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// playCommand represents the playLog command
var playCommand = &cobra.Command{
	Use:   "play RECORDING",
	Short: "Replay a recorded interactive session in the terminal.",
	Long:  `Plays a recorded interactive session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), ttylog.NewCRLFAdapter(sink))
	},
}

// catCommand represents the playLog command
var catCommand = &cobra.Command{
	Use:   "cat RECORDING",
	Short: "Print full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// asciicastCmd rewrites a recording for sharing
var asciicastCmd = &cobra.Command{
	Use:   "asciicast RECORDING > OUTPUT.cast",
	Short: "Export a recording as asciicast (asciinema) with long pauses removed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewAsciicastLogSink(cmd.OutOrStdout(), ttylog.AsciicastHeader{
			Title: strings.TrimSuffix(filepath.Base(args[0]), "."+ttylog.AsciicastFileExt),
		})
		sink = ttylog.NewIdleTimeLimit(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), ttylog.NewCRLFAdapter(sink))
	},
}

// openRecording opens a recording from the recordings directory, or a path
// on disk if no configuration has been initialized.
func openRecording(name string) (io.ReadCloser, error) {
	if cfg, err := config.Load(cfgPath); err == nil {
		if fd, err := cfg.OpenRecording(name); err == nil {
			return fd, nil
		}
	}
	return os.Open(name)
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCommand)
	logsCmd.AddCommand(listCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(asciicastCmd)
	logsCmd.AddCommand(catCommand)

	reportCommand.Flags().BoolVar(&bugReport, "bugs", false, "Only report events that point to bugs in the shell.")
	reportCommand.Flags().BoolVar(&sessionsReport, "sessions", false, "Summarize each session separately.")

	// cat doesn't allow idle time
	for _, cmd := range []*cobra.Command{playCommand, asciicastCmd} {
		cmd.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
	}
}
