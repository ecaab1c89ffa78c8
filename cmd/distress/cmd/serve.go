package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"distress/internal/config"
	"distress/internal/devserver"
	"distress/internal/logging"
)

var serveFlags struct {
	addr   string
	secret string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory SOS server for local testing",
	Long: `Run a local stand-in for the SOS server. Accounts live in memory and
SOS emails are logged instead of sent.

Examples:
  distress serve
  distress serve --addr :8080
  DISTRESS_SESSION_SECRET=... distress serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides $DISTRESS_LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&serveFlags.secret, "session-secret", "", "cookie signing key, 32+ bytes (overrides $DISTRESS_SESSION_SECRET)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.ListenAddr = serveFlags.addr
	}
	if f.Changed("session-secret") {
		cfg.SessionSecret = serveFlags.secret
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	srv, err := newDevServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return listen(ctx, cfg.ListenAddr, srv, logger)
}

// newDevServer builds the dev server from cfg. Without a configured secret
// a random one is used, so sessions do not survive a restart.
func newDevServer(cfg *config.Config, logger *slog.Logger) (*devserver.Server, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("no session secret configured, using a random one", "env", config.EnvSessionSecret)
	}
	return devserver.New(secret,
		devserver.WithLogger(logger),
		devserver.WithMailer(&devserver.Outbox{Logger: logger.With("component", "mailer")}),
	)
}

// listen serves h on addr until ctx ends, then shuts down gracefully.
func listen(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("dev server listening", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
