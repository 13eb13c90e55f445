package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wholesale-service/cache"
	apperrors "wholesale-service/common/errors"
	"wholesale-service/common/logger"
	commonmw "wholesale-service/common/middleware"
	"wholesale-service/controllers"
	"wholesale-service/database"
	awspkg "wholesale-service/pkg/aws"
	"wholesale-service/repository"
	"wholesale-service/routes"
	"wholesale-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "wholesale-service"

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize(os.Getenv("ENV")).Fatal("Config load failed", zap.Error(err))
	}

	// --- AWS setup ---
	awsCfg, err := awspkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Initialize(cfg.Env).Fatal("Failed to load AWS config", zap.Error(err))
	}

	var log *zap.Logger
	if cfg.CloudWatchEnabled {
		cwLogs, cwErr := awspkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if cwErr == nil {
			log = logger.InitializeWithWriter(cfg.Env, cwLogs)
		} else {
			log = logger.Initialize(cfg.Env)
			log.Warn("CloudWatch Logs unavailable (non-fatal)", zap.Error(cwErr))
		}
	} else {
		log = logger.Initialize(cfg.Env)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsClient := awspkg.NewMetricsClient(awsCfg, "Wholesale", cfg.CloudWatchEnabled)
	snsClient := awspkg.NewSNSClient(awsCfg)

	var docs awspkg.DocumentStore
	if cfg.POS3Bucket != "" {
		docs = awspkg.NewS3DocumentStore(awsCfg, cfg.POS3Bucket)
	} else {
		log.Warn("PO_S3_BUCKET not set, purchase order documents are rendered on request")
	}

	// --- Database ---
	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB, log); err != nil {
		log.Fatal("MongoDB connection failed", zap.Error(err))
	}

	orderRepo := repository.NewMongoOrderRepository(database.DB)
	poRepo := repository.NewMongoPurchaseOrderRepository(database.DB)
	catalogRepo := repository.NewMongoCatalogRepository(database.DB)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := orderRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("Failed to ensure order indexes", zap.Error(err))
	}
	if err := poRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("Failed to ensure purchase order indexes", zap.Error(err))
	}
	cancelIndex()

	// --- Cache (non-fatal) ---
	var imageCache services.ImageCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, image lookups are not cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			imageCache = cache.NewImageCache(redisClient, cfg.ImageCacheTTL)
		}
	}

	// --- Dependency injection ---
	imageResolver := services.NewImageResolver(catalogRepo, imageCache, metricsClient, log)
	orderService := services.NewOrderService(orderRepo, catalogRepo, snsClient, cfg.OrderSNSTopicARN, metricsClient, cfg.GSTRate, log)
	reviewService := services.NewReviewService(orderRepo, snsClient, cfg.OrderSNSTopicARN, metricsClient, cfg.GSTRate, log)
	catalogService := services.NewCatalogService(catalogRepo, log)
	poService := services.NewPurchaseOrderService(orderRepo, poRepo, imageResolver, docs, snsClient, cfg.OrderSNSTopicARN, metricsClient,
		services.PurchaseOrderConfig{
			GSTRate:        cfg.GSTRate,
			DocumentPrefix: cfg.POS3Prefix,
			PlaceholderURL: cfg.PlaceholderImageURL,
		}, log)

	orderController := controllers.NewOrderController(orderService, reviewService)
	catalogController := controllers.NewCatalogController(catalogService)
	poController := controllers.NewPurchaseOrderController(poService)

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(commonmw.MetricsMiddleware(metricsClient, serviceName))
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	limiter := commonmw.NewRateLimiter(rate.Limit(cfg.StorefrontRPS), cfg.StorefrontBurst, 10*time.Minute)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)

	routes.RegisterStorefrontRoutes(r, limiter.Middleware(), orderController, catalogController)
	routes.RegisterAdminRoutes(r, orderController, poController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx); err != nil {
			apperrors.Respond(c, apperrors.ErrServiceUnavailable)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Wholesale Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	close(stopSweep)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	log.Info("Wholesale Service stopped gracefully")
}
