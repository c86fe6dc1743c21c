package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/config"
	httpDelivery "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/infra/mysql"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/infra/redis"
	mysqlRepo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/mysql"
	redisRepo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	pkgKafka "github.com/vogiaan1904/ticketbottle-checkin/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	db, err := mysql.Connect(ctx, cfg.MySQL)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to MySQL: %v", err)
	}
	defer mysql.Disconnect(db)

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	store := mysqlRepo.NewStore(db, l)
	eventRepo := mysqlRepo.NewEventRepository(db, l)
	ticketRepo := mysqlRepo.NewTicketRepository(db, l)
	categoryRepo := mysqlRepo.NewCategoryRepository(db, l)
	fieldRepo := mysqlRepo.NewFieldRepository(db, l)
	settingsRepo := mysqlRepo.NewSettingsRepository(db, l)
	exportCache := redisRepo.NewExportCache(redisCli, l)

	// Initialize Kafka producer
	kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RetryMax:     cfg.Kafka.ProducerRetryMax,
		RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
	})
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
	}

	// Initialize Kafka consumer
	kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroupID,
	})
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
	}

	prod := producer.NewProducer(kafkaSyncProd, l)
	defer prod.Close()

	// Initialize services
	settingsSvc := service.NewSettingsService(l, settingsRepo)
	paymentSvc := service.NewPaymentService(l)
	checkInSvc := service.NewCheckInService(l, store, eventRepo, ticketRepo, categoryRepo, paymentSvc, prod)
	exportSvc := service.NewAttendeeExportService(l, service.ExportConfig{
		Concurrency: cfg.CheckIn.ExportConcurrency,
		CacheTTL:    cfg.CheckIn.ExportCacheTTL,
	}, eventRepo, ticketRepo, categoryRepo, fieldRepo, settingsSvc, exportCache)

	// Ticket update consumer keeps the offline bundle cache fresh
	cons := consumer.NewConsumer(kafkaConsGr, exportSvc, l)
	cons.Start(ctx)
	defer cons.Close()

	// HTTP server
	handler := httpDelivery.NewHTTPHandler(checkInSvc, exportSvc, l)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpDelivery.NewRouter(handler, cfg.JWT.Secret, l),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf(ctx, "Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(shutdownCtx, "HTTP server shutdown: %v", err)
	}

	l.Info(ctx, "Server exited")
}
