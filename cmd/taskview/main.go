package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecociel/taskview/lib/config"
	"github.com/ecociel/taskview/lib/index"
	"github.com/ecociel/taskview/lib/ingest/kafka"
	"github.com/ecociel/taskview/lib/ingest/postgres"
	"github.com/ecociel/taskview/lib/ingest/runner"
	"github.com/ecociel/taskview/lib/kafkaclient"
	"github.com/ecociel/taskview/lib/telemetry"
	"github.com/ecociel/taskview/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := telemetry.Logger()

	cfg, err := config.Load()
	if err != nil {
		// the otel logger is not installed yet
		os.Stderr.WriteString("taskview: " + err.Error() + "\n")
		os.Exit(1)
	}

	shutdown, err := telemetry.Setup(ctx, "taskview", cfg.TracingEnabled)
	if err != nil {
		os.Stderr.WriteString("taskview: telemetry: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPromMetrics(reg)

	idx := index.New(cfg.MaxTasks)

	kClient, err := kafkaclient.NewConsumer(cfg.QueueHostPorts, cfg.EventsTopic)
	if err != nil {
		logger.ErrorContext(ctx, "kafka client", "error", err)
		return
	}
	defer kClient.Close()
	go kafka.NewConsumer(kClient, idx, m).Run(ctx)

	if cfg.DbConnectionUri != "" {
		pool, err := pgxpool.New(ctx, cfg.DbConnectionUri)
		if err != nil {
			logger.ErrorContext(ctx, "postgres pool", "error", err)
			return
		}
		defer pool.Close()

		var notify <-chan *pq.Notification
		listener, err := postgres.Listen(cfg.DbConnectionUri, cfg.NotifyChannel, logger)
		if err != nil {
			logger.WarnContext(ctx, "reloading on interval only", "error", err)
		} else {
			defer listener.Close()
			notify = listener.Notify
		}
		go runner.New(cfg.ReloadInterval, postgres.New(pool), idx, notify, m).Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newHandler(idx, m, reg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}()

	logger.InfoContext(ctx, "listening", "addr", cfg.ListenAddr, "topic", cfg.EventsTopic)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "http server", "error", err)
	}
}
