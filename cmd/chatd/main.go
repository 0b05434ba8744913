package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chatd/internal/common/fsutil"
	"chatd/internal/config"
	"chatd/internal/httpapi"
	"chatd/internal/manager"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	model      string
	port       int
	portSet    bool
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "chatd",
		Short:         "Local HTTP gateway serving chat completions from a single GGUF model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.portSet = cmd.Flags().Changed("port")
			return run(f)
		},
	}
	cmd.Flags().StringVar(&f.model, "model", "", "Path to the GGUF model file (required)")
	cmd.Flags().IntVar(&f.port, "port", 8000, "Port to listen on (loopback only)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Optional config file (yaml/json/toml)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// resolveModel expands and verifies the model path. The existence check runs
// before any server socket is opened; a missing artifact aborts startup.
func resolveModel(path string) (string, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	if !fsutil.FileExists(p) {
		return "", fmt.Errorf("model file not found at %s", p)
	}
	return p, nil
}

func run(f flags) error {
	lvl, err := zerolog.ParseLevel(f.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", f.logLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).With().Timestamp().Logger()

	var cfg config.Config
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	// Explicit --port wins over the config file.
	port := f.port
	if cfg.Port != 0 && !f.portSet {
		port = cfg.Port
	}

	modelPath, err := resolveModel(f.model)
	if err != nil {
		return err
	}

	mgr := manager.New(manager.Config{
		CtxSize:   cfg.CtxSize,
		GPULayers: cfg.GPULayers,
		Threads:   cfg.Threads,
		MaxWait:   time.Duration(cfg.MaxWaitSeconds) * time.Second,
	}, logger)

	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(f.logLevel)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	httpapi.SetResponseMode(httpapi.ResponseMode(cfg.ResponseMode))
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	// The server accepts connections independent of load completion; requests
	// arriving before Ready are rejected, not queued.
	go mgr.Load(modelPath)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(mgr)}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("model", modelPath).Msg("chatd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase() // abort in-flight streams
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		logger.Error().Err(err).Msg("engine close error")
	}
	return nil
}
