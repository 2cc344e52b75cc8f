package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/stockroom-service/config"
	"github.com/fekuna/stockroom-service/internal/auth"
	"github.com/fekuna/stockroom-service/internal/events"
	"github.com/fekuna/stockroom-service/internal/httpserver"
	"github.com/fekuna/stockroom-service/internal/notify"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/broker"
	"github.com/fekuna/stockroom-service/pkg/cache"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/messaging"
	"github.com/fekuna/stockroom-service/pkg/search"

	invH "github.com/fekuna/stockroom-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/stockroom-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/stockroom-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/stockroom-service/internal/inventory/usecase"

	itemH "github.com/fekuna/stockroom-service/internal/item/handler"
	itemRepoPkg "github.com/fekuna/stockroom-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/stockroom-service/internal/item/usecase"

	locH "github.com/fekuna/stockroom-service/internal/location/handler"
	locRepoPkg "github.com/fekuna/stockroom-service/internal/location/repository"
	locUCPkg "github.com/fekuna/stockroom-service/internal/location/usecase"

	orderH "github.com/fekuna/stockroom-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/stockroom-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/stockroom-service/internal/order/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv != "production",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Connect to Database
	dbHandle := database.NewHandle(database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		SQLitePath:      cfg.Database.SQLitePath,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	defer dbHandle.Close()

	db, err := dbHandle.DB(context.Background())
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	// 4. Initialize Repositories
	itemRepo := itemRepoPkg.NewSQLRepository(db)
	locRepo := locRepoPkg.NewSQLRepository(db)
	orderRepo := orderRepoPkg.NewSQLRepository(db)
	invRepo := invRepoPkg.NewSQLRepository(db)
	txManager := database.NewTxManager(db)

	// 5. Optional infrastructure
	var (
		itemCache  itemUCPkg.Cache
		orderCache orderUCPkg.Cache
		invCache   invUCPkg.Cache
		viewBus    views.Invalidator = views.Noop{}
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		itemCache, orderCache, invCache = redisClient, redisClient, redisClient
		viewBus = views.NewRedisInvalidator(redisClient, appLogger)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	var itemSearch itemUCPkg.SearchIndex
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to SQL", zap.Error(err))
		} else {
			itemSearch = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	var sinks []notify.Sink
	if cfg.Notifier.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notifier.WebhookURL, cfg.Notifier.WebhookTimeout))
	}
	if cfg.RabbitMQ.Enabled {
		rabbit := messaging.NewRabbitMQClient(&messaging.RabbitMQConfig{
			Host:       cfg.RabbitMQ.Host,
			Port:       cfg.RabbitMQ.Port,
			Username:   cfg.RabbitMQ.Username,
			Password:   cfg.RabbitMQ.Password,
			VHost:      cfg.RabbitMQ.VHost,
			Exchange:   cfg.RabbitMQ.Exchange,
			RetryCount: 3,
			RetryDelay: 2 * time.Second,
		})
		if err := rabbit.Connect(); err != nil {
			appLogger.Warn("Could not connect to RabbitMQ, alerts go to the webhook only", zap.Error(err))
		} else {
			defer rabbit.Close()
			sinks = append(sinks, notify.NewAMQPSink(rabbit))
			appLogger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}
	if len(sinks) == 0 {
		appLogger.Warn("No alert sink configured, low stock alerts are dropped")
	}
	dispatcher := notify.NewDispatcher(appLogger, cfg.Notifier.WebhookTimeout, sinks...)

	var (
		emitter       events.Emitter = events.Noop{}
		kafkaEmitter  *events.KafkaEmitter
		kafkaConsumer *broker.KafkaConsumer
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.StockTopic,
		})
		defer producer.Close()
		kafkaEmitter = events.NewKafkaEmitter(producer, 10*time.Second, appLogger)
		emitter = kafkaEmitter

		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.CartTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("cart_topic", cfg.Kafka.CartTopic),
			zap.String("stock_topic", cfg.Kafka.StockTopic),
		)
	}

	// 6. Initialize UseCases
	itemUC := itemUCPkg.NewItemUseCase(itemRepo, itemUCPkg.Options{
		Cache:    itemCache,
		CacheTTL: cfg.Redis.CacheTTL,
		Search:   itemSearch,
		Views:    viewBus,
	}, appLogger)
	locUC := locUCPkg.NewLocationUseCase(locRepo, viewBus, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, locRepo, itemRepo, txManager, orderUCPkg.Options{
		SplitByStorage: cfg.Orders.SplitByStorage,
		Cache:          orderCache,
		CacheTTL:       cfg.Redis.CacheTTL,
		Views:          viewBus,
	}, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, txManager, invUCPkg.Options{
		Orders:   orderUC,
		Notifier: dispatcher,
		Events:   emitter,
		Views:    viewBus,
		Cache:    invCache,
		CacheTTL: cfg.Redis.CacheTTL,
		Timeout:  cfg.Server.RequestTimeout,
	}, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if itemSearch != nil {
		go func() {
			if err := itemUC.SyncSearchIndex(ctx); err != nil {
				appLogger.Warn("Search index sync failed", zap.Error(err))
			}
		}()
	}

	// 6.5 Initialize Listeners
	if kafkaConsumer != nil {
		cartListener := invListenerPkg.NewCartListener(kafkaConsumer, invUC, appLogger)
		go cartListener.Start(ctx)
	}

	// 7. HTTP API
	app := httpserver.New(httpserver.Config{
		AppName: "Stockroom",
		Gate:    auth.NewGate(cfg.Server.SitePassword, cfg.Server.AppEnv == "production", appLogger),
		Ready:   db.PingContext,
	}, appLogger,
		itemH.NewItemHandler(itemUC, appLogger),
		locH.NewLocationHandler(locUC, appLogger),
		orderH.NewOrderHandler(orderUC, locUC, appLogger),
		invH.NewInventoryHandler(invUC, appLogger),
	)

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := app.Listen(listenAddr(cfg.Server.HTTPPort)); err != nil {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 8. gRPC health and reflection for orchestrators
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	dispatcher.Wait()
	if kafkaEmitter != nil {
		kafkaEmitter.Wait()
	}
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
