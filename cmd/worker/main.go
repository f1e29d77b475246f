package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmarchan/docuvault/internal/bootstrap"
	"github.com/rmarchan/docuvault/internal/config"
	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/observability/logging"
	"github.com/rmarchan/docuvault/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", workerMetrics.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentFiled(ctx, func(handlerCtx context.Context, event domain.DocumentFiledEvent) error {
		workerMetrics.ObserveQueueLag("worker", time.Since(event.FiledAt))
		workerMetrics.StartEvent()
		start := time.Now()

		handleCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
		defer cancel()
		handleErr := app.Notify.HandleDocumentFiled(handleCtx, event)

		workerMetrics.FinishEvent("worker", time.Since(start), handleErr)
		return handleErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
