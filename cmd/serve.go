package cmd

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/mathshell/core"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/spf13/cobra"
)

var (
	serveEphemeral bool
	servePort      int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a shell to SSH clients on a local port.",
	Long: `Serve a shell to SSH clients. Each user gets their own machine whose
filesystem persists between logins under the data directory.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true
		log.Println("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			configuration.SSHPort = servePort
			if err := configuration.Validate(); err != nil {
				return err
			}
		}

		log.Println("Starting logger...")
		appLogFd, err := configuration.OpenAppLog()
		if err != nil {
			return err
		}
		defer appLogFd.Close()
		appLogger := log.New(io.MultiWriter(cmd.ErrOrStderr(), appLogFd), "", log.LstdFlags)

		eventFd, err := configuration.OpenEventLog()
		if err != nil {
			return err
		}
		defer eventFd.Close()

		server, err := core.NewServer(configuration, logger.NewJSONLinesLogRecorder(eventFd), appLogger, core.ServerOptions{
			Ephemeral: serveEphemeral,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Fatal(err)
			}
		}()

		sigs := make(chan os.Signal, 1)

		log.Println("- Starting interrupt handler")
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		sig := <-sigs
		log.Printf("Got signal %q, terminating...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown failed: %s", err)
		}
		log.Print("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "Keep every user's filesystem in memory.")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen on PORT instead of the configured ssh_port.")
}
