package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sngor/bayon-coagent-sub013/internal/handler"
	"github.com/sngor/bayon-coagent-sub013/internal/health"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/logging"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/metrics"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the batch trigger and the optimal-times read API over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		slog.Error("failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.Close()

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return err
	}

	optimizerHandler := handler.NewOptimizerHandler(a.orchestrator, a.cacheManager, time.Now)

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.Module("optimizer"),
		TracerName:  "github.com/sngor/bayon-coagent-sub013/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(Version, a.dependencies()...)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/optimal-times/batch", optimizerHandler.HandleBatch)
		v1.GET("/optimal-times/:userId/:channel/:contentType", optimizerHandler.HandleGetOptimalTimes)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", a.cfg.Port),
			slog.String("cache_store", string(a.cfg.CacheStore.Store)),
			slog.String("engagement_source", string(a.cfg.Engagement.Source)),
			slog.Duration("time_budget", a.cfg.Optimizer.TimeBudget),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}

		slog.Info("server exited properly")
		return nil

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return err
	}
}
