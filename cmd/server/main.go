package main

import (
	"log/slog"
	"os"
	"time"

	"kidswear-backend/internal/config"
	handlers "kidswear-backend/internal/controllers/http"
	"kidswear-backend/internal/infra"
	"kidswear-backend/internal/infra/mysql"
	"kidswear-backend/internal/infra/rabbitmq"
	"kidswear-backend/internal/metrics"
	mysqlrepo "kidswear-backend/internal/repository/mysql"
	"kidswear-backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	db, err := mysql.New(cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	productRepo := mysqlrepo.NewProductRepository(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)
	cartRepo := mysqlrepo.NewCartRepository(db)
	wishlistRepo := mysqlrepo.NewWishlistRepository(db)

	var gateway infra.GatewayClient
	if cfg.MockMode() {
		slog.Warn("razorpay keys not configured, running payment gateway in mock mode")
		gateway = infra.NewMockGatewayClient()
	} else {
		gateway = infra.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, 10*time.Second)
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			slog.Error("rabbitmq connect failed", "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
	}

	paymentMetrics := metrics.NewPaymentMetrics()

	catalogService := services.NewCatalogService(productRepo)
	cartService := services.NewCartService(cartRepo, wishlistRepo)
	paymentService := services.NewPaymentService(orderRepo, gateway, publisher, paymentMetrics, cfg.RazorpayKeySecret)

	var redisClient *redis.Client
	if cfg.RedisHost != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":6379",
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		catalogService.SetRedisClient(redisClient)
	}

	handler := handlers.NewHandler(catalogService, cartService, paymentService, redisClient, db, !cfg.MockMode())

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	handler.RegisterRoutes(r)

	slog.Info("starting storefront api", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server run failed", "err", err)
		os.Exit(1)
	}
}
