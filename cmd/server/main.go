package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/LavenderPOS/internal/api"
	"github.com/honeynil/LavenderPOS/internal/config"
	"github.com/honeynil/LavenderPOS/internal/handler"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/agent"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/auth"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/kafka"
	infraobs "github.com/honeynil/LavenderPOS/internal/infrastructure/observability"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/redis"
	"github.com/honeynil/LavenderPOS/internal/observability"
	core "github.com/honeynil/LavenderPOS/internal/repository/postgres"
	service "github.com/honeynil/LavenderPOS/internal/services"
	_ "github.com/lib/pq"
)

const serviceName = "lavender-pos"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем логи, метрики, трейсы
	shutdownTracing := observability.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	defer shutdownTracing(context.Background())
	metricsServer := infraobs.ServeMetrics(cfg.MetricsAddr)

	// Подключаемся к Postgres
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to open Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	if err := core.EnsureSchema(ctx, db); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		os.Exit(1)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// Инициализируем сервис
	svc := service.NewPOSService(service.Deps{
		Users:        core.NewPostgresUserRepository(db),
		Vendors:      core.NewPostgresVendorRepository(db),
		Pending:      core.NewPostgresPendingTransactionRepository(db),
		Transactions: core.NewPostgresTransactionRepository(db),
		Cache:        redisClient,
		Events:       producer,
		Agents:       agent.NewClient(cfg.AgentTimeout),
		Barcodes:     service.RandomBarcode,
		ImageBaseURL: cfg.BarcodeImageURL,
	})
	if err := svc.SeedVendors(ctx, cfg.Vendors); err != nil {
		slog.Error("failed to seed vendors", "error", err)
		os.Exit(1)
	}

	// Настраиваем Kafka-консьюмер
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, serviceName+"-group", redisClient)
	go consumer.Consume(ctx)
	defer consumer.Close()

	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, redisClient)
	router := api.SetupRouter(handler.NewHandler(svc, sessions), sessions)

	// Запускаем сервер
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
