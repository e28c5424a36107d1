package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/internal/router"
	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/config"
	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/logging"
	"github.com/a2b-grocery/storefront/pkg/mongo"
	"github.com/a2b-grocery/storefront/pkg/redis"
	"github.com/a2b-grocery/storefront/pkg/storage"
	"github.com/a2b-grocery/storefront/pkg/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	orderLog, closeOrders := openOrderLog(cfg, logger)
	defer closeOrders()

	app, err := storefront.New(ctx, cfg, logger, store, orderLog)
	if err != nil {
		logger.Fatal("failed to build storefront", zap.Error(err))
	}
	app.Start(ctx)

	engine := router.NewEngine(cfg, logger)
	router.InitializeRoutes(engine, app)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("server is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := global.GetDefaultTimer()
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	app.Close()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func()) {
	if cfg.StoreDriver != config.StoreDriverRedis {
		return storage.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(cfg)
	store := redis.NewStore(client, cfg.StorePrefix)
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("failed to connect to redis", zap.String("address", cfg.RedisAddress), zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("address", cfg.RedisAddress))
	return store, func() { _ = client.Close() }
}

// openOrderLog returns nil unless ORDER_LOG selects MongoDB. A nil log makes
// the storefront keep orders in the durable store.
func openOrderLog(cfg *config.Config, logger *zap.Logger) (checkout.OrderLog, func()) {
	if cfg.OrderLog != config.OrderLogMongo {
		return nil, func() {}
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.MongoURI, logger.Named("mongo"))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(ctx, db, logger.Named("mongo")); err != nil {
		logger.Warn("failed to ensure indexes", zap.Error(err))
	}

	return mongo.NewOrderLog(db), func() {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}
