package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/japa/internal/config"
	"github.com/verte-zerg/japa/internal/server"
	"github.com/verte-zerg/japa/internal/store"
)

var (
	serveAddr    string
	serveEnvFile string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "dotenv file with JAPA_* settings")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	loaded, err := config.LoadDotEnv(serveEnvFile)
	if err != nil {
		return err
	}
	if !loaded {
		slog.Info("No .env file found, using environment variables")
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.DefaultServerConfig()
	config.ApplyServerFile(&cfg, fileCfg.Server)
	config.ApplyServerEnv(&cfg)
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if err := config.ValidateServer(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Error("Failed to close store", "error", cerr)
		}
	}()
	if err := st.Ping(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	slog.Info("Database connected", "path", cfg.DBPath)
	if cfg.AdminToken == "" {
		slog.Warn("Admin routes disabled (no admin token configured)")
	}

	srv, err := server.New(st, cfg, logger)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	slog.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server stopped successfully")
	return nil
}
