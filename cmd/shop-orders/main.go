package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/shop-orders/internal/cache"
	"github.com/vasiliy-maslov/shop-orders/internal/config"
	"github.com/vasiliy-maslov/shop-orders/internal/db"
	"github.com/vasiliy-maslov/shop-orders/internal/events"
	"github.com/vasiliy-maslov/shop-orders/internal/order"
	"github.com/vasiliy-maslov/shop-orders/internal/product"
	"github.com/vasiliy-maslov/shop-orders/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "shop-orders").Logger()

	log.Info().Msg("Shop orders service starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	redisClient := cache.New(cfg.Redis.Addr)
	defer redisClient.Close()
	guard := cache.NewIdempotencyGuard(redisClient, cfg.Redis.IdempotencyTTL)

	producerCtx, stopProducer := context.WithCancel(context.Background())
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Buffer)
	producer.Start(producerCtx)
	publisher := events.NewOrderEvents(producer, "shop-orders")

	orderRepo := order.NewRepository(dbConn.Pool)
	orderSvc := order.NewService(orderRepo, guard, publisher)
	productRepo := product.NewRepository(dbConn.Pool)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewRouter(orderSvc, productRepo),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	stopProducer()
	producer.WaitClosed()

	log.Info().Msg("Server stopped")
}
