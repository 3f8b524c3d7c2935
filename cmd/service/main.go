package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-service/config"
	"rental-service/internal/cache"
	"rental-service/internal/middleware"
	"rental-service/internal/producer"
	"rental-service/internal/repository"
	"rental-service/internal/service"
	transport "rental-service/internal/transport/http"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Redis опционален: без него развёртка комплектов не кэшируется,
	// а rate-limit живёт в памяти процесса
	var bundleCache service.Cache
	var counter middleware.WindowCounter
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rdb.Close()
		bundleCache = rdb
		counter = rdb
	}

	// Kafka опциональна: без брокеров события заказов не публикуются
	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		events = p
		log.Info("Kafka producer инициализирован",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	bundles := service.NewBundleService(repos, bundleCache, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	availability := service.NewAvailabilityService(repos)
	booking := service.NewBookingResolver()
	orders := service.NewOrderService(repos, booking, bundles, events)
	catalog := service.NewCatalogService(repos, bundles)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, counter, log)
	limiter.Start()
	defer limiter.Stop()

	r := transport.Router(transport.Services{
		Availability: availability,
		Catalog:      catalog,
		Bundles:      bundles,
		Orders:       orders,
	}, limiter, log)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting rental HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down rental HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Ошибка при остановке HTTP сервера", zap.Error(err))
	}
	log.Info("Rental HTTP server stopped gracefully")
}
