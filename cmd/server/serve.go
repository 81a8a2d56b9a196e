package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/api"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply pending Postgres migrations before serving")
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if autoMigrate && cfg.DBType == "postgres" {
		if err := storage.MigrateUp(cfg.DBDSN, logger); err != nil {
			return err
		}
	}

	store, err := storage.New(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("failed to init storage: %v", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	app := newApplication(cfg, logger, store)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server running on %s (env=%s, storage=%s, week_start=%s)", cfg.HTTPAddr, cfg.Env, cfg.DBType, cfg.WeekStart())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("server failed: %v", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
