package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zamora/config"
	"zamora/internal/api"
	"zamora/internal/auth"
	"zamora/internal/broker"
	"zamora/internal/notify"
	"zamora/internal/realtime"
	"zamora/internal/redisclient"
	"zamora/internal/service"
	"zamora/internal/store"
	"zamora/internal/util"
	"zamora/internal/worker"
)

type runner interface {
	Start(ctx context.Context) error
	Stop() error
}

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting zamora API", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer("zamora", cfg.Observ.JaegerEndpoint, cfg.Observ.TraceSampleRatio)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))

	eventPublisher := broker.NewEventPublisher(producer)

	svc := api.Services{
		Orders: service.NewOrderService(db, redisClient, eventPublisher,
			cfg.Business.BarServiceChargePercent, cfg.Business.IdempotencyTTL),
		Folios:     service.NewFolioService(db, eventPublisher),
		Bookings:   service.NewBookingService(db, eventPublisher),
		Rooms:      service.NewRoomService(db, eventPublisher),
		Inventory:  service.NewInventoryService(db, redisClient, eventPublisher),
		Menu:       service.NewMenuService(db, redisClient),
		Properties: service.NewPropertyService(db, redisClient),
		Requests:   service.NewServiceRequestService(db, eventPublisher),
		Push:       service.NewPushService(db),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	sms := notify.NewSMSClient(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.Sender, logger)
	push := notify.NewPushSender(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber, cfg.Push.TTLSeconds)

	workers := []runner{
		worker.NewNotificationWorker(
			broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.NotificationsGroup),
			db, sms, push),
	}

	mqttPublisher, err := realtime.Connect(cfg.MQTT, logger)
	if err != nil {
		logger.Warn("Realtime relay disabled", zap.Error(err))
	} else {
		defer mqttPublisher.Disconnect()
		workers = append(workers, worker.NewRealtimeWorker(
			broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.RealtimeGroup),
			mqttPublisher))
		logger.Info("MQTT connected", zap.String("broker", cfg.MQTT.Broker))
	}

	for _, w := range workers {
		go func(w runner) {
			if err := w.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Worker stopped", zap.Error(err))
			}
		}(w)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authenticator := auth.NewAuthenticator(
		auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience), db, cfg.Auth.CookieName, logger)

	router := gin.New()
	handler := api.NewHandler(svc, authenticator, map[string]api.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	for _, w := range workers {
		if err := w.Stop(); err != nil {
			logger.Warn("Error stopping worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
