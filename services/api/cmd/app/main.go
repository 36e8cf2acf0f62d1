package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/services/api/internal/dispatch"
	"order-service/services/api/internal/events"
	httpx "order-service/services/api/internal/http"
	"order-service/services/api/internal/http/handlers"
	"order-service/services/api/internal/repo"
	"order-service/services/api/internal/service"
	"order-service/shared/pkg/cache"
	"order-service/shared/pkg/config"
	"order-service/shared/pkg/kafka"
	"order-service/shared/pkg/logger"
	"order-service/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("api", cfg.Common.LogLevel)

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()
	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	redis := cache.New(cfg.Redis.Addr)
	defer func() { _ = redis.Close() }()
	if err := redis.Ping(ctxDB); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, user cache degraded")
	}

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareExchanges(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare exchanges failed")
	}

	logPub := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = logPub.Close() }()

	sub := kafka.NewSubscriber(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group, log)
	defer func() { _ = sub.Close() }()

	usersRepo := &repo.UsersCached{
		PG:    &repo.UsersPG{DB: db},
		Redis: redis,
		TTL:   cfg.Redis.UserTTL,
	}
	productsRepo := &repo.ProductsPG{DB: db}
	ordersRepo := &repo.OrdersPG{DB: db}

	orders := &service.Orders{
		Users:    usersRepo,
		Products: productsRepo,
		Store:    ordersRepo,
		Tasks:    &dispatch.TaskQueue{Pub: rabbit.NewPublisher(rc.Ch, rabbit.ExchangeTasks)},
		Events:   &dispatch.LogPublisher{Pub: logPub},
		Log:      log,
	}

	router := httpx.NewRouter(&httpx.Handlers{
		Orders:   &handlers.OrdersHandler{Svc: orders, Log: log},
		Users:    &handlers.UsersHandler{Store: usersRepo, Log: log},
		Products: &handlers.ProductsHandler{Store: productsRepo, Log: log},
	})

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter := &events.Reporter{Log: log}
	go sub.Run(appCtx, reporter.Handle)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	log.Info().Msg("api started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutdown...")

	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
