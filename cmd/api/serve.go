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

	"indiflow-dashboard-api/collector"
	"indiflow-dashboard-api/handlers"
	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := repository.Migrate(a.db); err != nil {
		return err
	}

	registry := services.NewSessionRegistry()
	refresher, err := services.NewRefresher(services.RefresherOpts{
		Schedule:   a.cfg.Dashboard.RefreshSchedule,
		Registry:   registry,
		Aggregator: a.aggregator,
		SessionTTL: a.cfg.Dashboard.SessionTTL,
		Logger:     a.log,
	})
	if err != nil {
		return fmt.Errorf("refresh schedule %q: %w", a.cfg.Dashboard.RefreshSchedule, err)
	}
	refresher.Start()
	defer func() { <-refresher.Stop().Done() }()

	if a.cfg.MQTT.URL != "" {
		c := collector.New(a.stores.Training, a.log)
		go func() {
			if err := c.Run(ctx, a.cfg.MQTT); err != nil {
				a.log.Error("training collector stopped", zap.Error(err))
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.RouterDeps{
		Config:     a.cfg,
		DB:         a.db,
		Stores:     a.stores,
		Cache:      a.cache,
		Auth:       services.NewAuthService(a.cfg.JWT),
		Registry:   registry,
		Aggregator: a.aggregator,
		Ingestor:   a.ingestor,
		Chat:       services.NewChatService(services.ChatOpts{Delay: a.cfg.Dashboard.ChatDelay, Logger: a.log}),
		Logger:     a.log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
