package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	security "github.com/goliatone/go-security-jwt"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath string
	addr       string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the token HTTP server",
		Long: `Start the token HTTP server.

Settings are read from --config when given, otherwise from SECURITY_*
environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return runServe(cmd.Context(), opts, debug)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML settings file")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")

	return cmd
}

func newZapLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadSettings(path string) (*security.Settings, error) {
	if path != "" {
		return security.LoadSettingsFile(path)
	}
	return security.LoadSettingsFromEnv()
}

func runServe(ctx context.Context, opts *serveOptions, debug bool) error {
	zl, err := newZapLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger := security.NewZapLogger(zl.Sugar())
	defer func() { _ = logger.Sync() }()

	settings, err := loadSettings(opts.configPath)
	if err != nil {
		logger.Error("failed to load settings: %v", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := NewServer(settings, logger, reg)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("token server listening on %s", opts.addr)
		errCh <- app.Listen(opts.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("token server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
