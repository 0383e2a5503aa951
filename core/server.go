package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/mathshell/core/config"
	"github.com/josephlewis42/mathshell/core/logger"
	"github.com/josephlewis42/mathshell/core/ttylog"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
	gossh "golang.org/x/crypto/ssh"
)

type sshContextKey struct {
	name string
}

var (
	// ContextAuthPublicKey holds the fingerprint of the public key the client
	// offered.
	ContextAuthPublicKey = sshContextKey{"auth-public-key"}
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// Ephemeral keeps every session's filesystem in memory.
	Ephemeral bool
	// Clock is used for recordings and filesystem times, time.Now if nil.
	Clock func() time.Time
}

// Server gives each SSH login a shell on its own persistent machine.
type Server struct {
	configuration *config.Configuration
	opts          ServerOptions
	events        *logger.Logger
	logger        *log.Logger
	sshServer     *ssh.Server

	// Sessions of the same user share a store, only one may be active.
	activeUsers sync.Map
}

// NewServer creates an SSH server using the configuration's host key.
func NewServer(configuration *config.Configuration, events *logger.Logger, appLogger *log.Logger, opts ServerOptions) (*Server, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	server := &Server{
		configuration: configuration,
		opts:          opts,
		events:        events,
		logger:        appLogger,
	}

	server.sshServer = &ssh.Server{
		Addr:             fmt.Sprintf(":%d", configuration.SSHPort),
		Handler:          server.HandleConnection,
		PasswordHandler:  server.checkPassword,
		PublicKeyHandler: server.checkPublicKey,
	}

	keyPem, err := configuration.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

func (s *Server) checkPassword(ctx ssh.Context, password string) bool {
	ok := s.configuration.CheckPassword(password)
	s.events.Sessionless().Record(logger.EventLoginAttempt, logger.Fields{
		"username":    ctx.User(),
		"remote_addr": ctx.RemoteAddr().String(),
		"method":      "password",
		"success":     ok,
	})
	return ok
}

func (s *Server) checkPublicKey(ctx ssh.Context, key ssh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)
	ctx.SetValue(ContextAuthPublicKey, fingerprint)
	s.events.Sessionless().Record(logger.EventLoginAttempt, logger.Fields{
		"username":    ctx.User(),
		"remote_addr": ctx.RemoteAddr().String(),
		"method":      "publickey",
		"fingerprint": fingerprint,
		"success":     false,
	})
	return false
}

func (s *Server) store(username string) (vfs.Store, error) {
	if s.opts.Ephemeral {
		return vfs.NewMemStore(), nil
	}
	fs, err := s.configuration.UserDataFs(username)
	if err != nil {
		return nil, err
	}
	return vfs.NewAferoStore(fs), nil
}

// lockUser marks a user as logged in, it returns false if they already are.
func (s *Server) lockUser(username string) bool {
	_, loaded := s.activeUsers.LoadOrStore(username, struct{}{})
	return !loaded
}

func (s *Server) unlockUser(username string) {
	s.activeUsers.Delete(username)
}

// HandleConnection runs a single SSH session to completion.
func (s *Server) HandleConnection(sess ssh.Session) {
	sessionLogger := s.events.NewSession()
	username := sess.User()
	ptyInfo, winch, isPTY := sess.Pty()

	sessionLogger.Record(logger.EventSessionStart, logger.Fields{
		"username":    username,
		"remote_addr": sess.RemoteAddr().String(),
		"command":     sess.RawCommand(),
		"term":        ptyInfo.Term,
		"pty":         isPTY,
	})

	if !s.lockUser(username) {
		fmt.Fprintf(sess, "%s is already logged in\n", username)
		sessionLogger.Record(logger.EventSessionEnd, logger.Fields{"exit_code": 1})
		sess.Exit(1)
		return
	}

	code, err := s.runSession(sess, sessionLogger, ptyInfo, winch, isPTY)
	// The store is flushed by now, a new login may load it.
	s.unlockUser(username)
	if err != nil {
		s.logger.Printf("session %s: %v", sessionLogger.ID(), err)
		fmt.Fprintln(sess, "internal error")
	}
	sess.Exit(code)
}

func (s *Server) runSession(sess ssh.Session, sessionLogger *logger.SessionLogger, ptyInfo ssh.Pty, winch <-chan ssh.Window, isPTY bool) (int, error) {
	var rw io.ReadWriter = sess

	if s.configuration.RecordSessions {
		fd, err := s.configuration.CreateRecording(sess.User(), s.opts.Clock())
		if err != nil {
			return 1, err
		}
		defer fd.Close()

		sink := ttylog.NewAsciicastLogSink(fd, ttylog.AsciicastHeader{
			Width:  ptyInfo.Window.Width,
			Height: ptyInfo.Window.Height,
			Title:  sess.User() + "@" + s.configuration.Hostname,
		})
		recorder := ttylog.NewRecorder(sess, sink)
		recorder.Now = s.opts.Clock
		rw = recorder
	}

	store, err := s.store(sess.User())
	if err != nil {
		return 1, err
	}

	machine, err := NewMachine(sess.Context(), s.configuration, MachineOptions{
		Store:  store,
		User:   sess.User(),
		Events: sessionLogger,
		Logger: s.logger,
		Clock:  s.opts.Clock,
		PTY: vos.PTY{
			Width:  ptyInfo.Window.Width,
			Height: ptyInfo.Window.Height,
			Term:   ptyInfo.Term,
			IsPTY:  isPTY,
		},
	})
	if err != nil {
		return 1, err
	}
	defer machine.Close()

	if sess.RawCommand() != "" {
		return RunScript(machine, sess.RawCommand(), rw)
	}

	width := int32(ptyInfo.Window.Width)
	var onResize func()
	var resizeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)
	if isPTY {
		go watchWindow(done, winch, func(window ssh.Window) {
			atomic.StoreInt32(&width, int32(window.Width))
			machine.SetPTY(vos.PTY{
				Width:  window.Width,
				Height: window.Height,
				Term:   ptyInfo.Term,
				IsPTY:  isPTY,
			})

			resizeMu.Lock()
			cb := onResize
			resizeMu.Unlock()
			if cb != nil {
				cb()
			}
		})
	}

	session, err := NewSession(machine, Terminal{
		In:         rw,
		Out:        rw,
		IsTerminal: isPTY,
		CRLF:       isPTY,
		Width: func() int {
			return int(atomic.LoadInt32(&width))
		},
		OnWidthChanged: func(cb func()) {
			resizeMu.Lock()
			onResize = cb
			resizeMu.Unlock()
		},
	})
	if err != nil {
		return 1, err
	}
	defer session.Close()

	return session.Run(), nil
}

// watchWindow calls resize for every window change until winch is closed or
// done is.
func watchWindow(done <-chan struct{}, winch <-chan ssh.Window, resize func(ssh.Window)) {
	for {
		select {
		case <-done:
			return
		case window, ok := <-winch:
			if !ok {
				return
			}
			resize(window)
		}
	}
}

// Serve accepts connections on l until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Printf("- Starting SSH server on %s\n", l.Addr())
	return s.sshServer.Serve(l)
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("- Starting SSH server on %s\n", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active ones to close.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
