package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"order-service/services/task-worker/internal/notify"
	"order-service/services/task-worker/internal/worker"
	"order-service/shared/pkg/config"
	"order-service/shared/pkg/logger"
	"order-service/shared/pkg/models"
	"order-service/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("task-worker", cfg.Common.LogLevel)

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareExchanges(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare exchanges failed")
	}

	bindKeys := []string{models.TaskEmailConfirmation, models.TaskPaymentProcess}
	if err := rabbit.DeclareTaskQueue(rc.Ch, bindKeys, cfg.Worker.Prefetch); err != nil {
		log.Fatal().Err(err).Msg("declare task topology failed")
	}

	for _, key := range bindKeys {
		name := "tasks.retry." + key + ".5s"
		if err := rabbit.DeclareRetryQueue(rc.Ch, name, "tasks."+key, key, 5000); err != nil {
			log.Fatal().Err(err).Msg("declare retry queue failed")
		}
	}

	deliveries, err := rabbit.NewConsumer(rc.Ch).Consume(rabbit.TaskQueue, cfg.Worker.Prefetch)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	retryPub := rabbit.NewPublisher(rc.Ch, rabbit.ExchangeRetry)
	dlqPub := rabbit.NewPublisher(rc.Ch, rabbit.ExchangeDLX)

	w := &worker.Consumer{
		Log:      log,
		Notifier: &notify.EmailSender{Log: log},
		Requeue: func(ctx context.Context, d amqp.Delivery, maxAttempts int32) error {
			return rabbit.RetryOrDLQ(ctx, d, "tasks", maxAttempts, retryPub, dlqPub, rabbit.TaskDLQKey)
		},
		MaxAttempts:  cfg.Worker.MaxAttempts,
		EmailDelay:   cfg.Worker.EmailDelay,
		PaymentDelay: cfg.Worker.PaymentDelay,
		FailRate:     cfg.Worker.PaymentFailRate,
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(appCtx, deliveries)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Worker.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	log.Info().Msg("task-worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutdown...")

	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
