package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	marketapp "github.com/wyfcoding/brokerage/internal/marketdata/application"
	marketdomain "github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/internal/marketdata/infrastructure/alpaca"
	quotecache "github.com/wyfcoding/brokerage/internal/marketdata/infrastructure/persistence/redis"
	"github.com/wyfcoding/brokerage/internal/marketdata/infrastructure/yahoo"
	markethttp "github.com/wyfcoding/brokerage/internal/marketdata/interfaces/http"
	portfolioapp "github.com/wyfcoding/brokerage/internal/portfolio/application"
	portfoliohttp "github.com/wyfcoding/brokerage/internal/portfolio/interfaces/http"
	tradingapp "github.com/wyfcoding/brokerage/internal/trading/application"
	tradingdomain "github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/internal/trading/infrastructure/messaging"
	"github.com/wyfcoding/brokerage/internal/trading/infrastructure/persistence/mysql"
	tradinghttp "github.com/wyfcoding/brokerage/internal/trading/interfaces/http"
	"github.com/wyfcoding/brokerage/pkg/cache"
	"github.com/wyfcoding/brokerage/pkg/config"
	"github.com/wyfcoding/brokerage/pkg/db"
	"github.com/wyfcoding/brokerage/pkg/logger"
	"github.com/wyfcoding/brokerage/pkg/metrics"
	"github.com/wyfcoding/brokerage/pkg/middleware"
	"github.com/wyfcoding/brokerage/pkg/mq"
	"github.com/wyfcoding/brokerage/pkg/ratelimit"
)

var configPath = flag.String("config", "configs/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 初始化配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 3. 初始化指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}
	if cfg.Metrics.Enabled {
		metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. 初始化基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, m)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Auto Migrate (仅用于开发方便)
	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(
			&tradingdomain.User{},
			&tradingdomain.Position{},
			&tradingdomain.Transaction{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// Redis（行情缓存与限流，可整体关闭）
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			slog.Error("failed to init redis", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
	}

	// Kafka（成交事件发布，可关闭）
	var publisher tradingdomain.EventPublisher
	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:    cfg.Kafka.Brokers,
			MaxRetries: cfg.Kafka.MaxRetries,
		})
		defer producer.Close()
		publisher = messaging.NewKafkaTradePublisher(producer, cfg.Kafka.TradeTopic)
	}

	// 5. 初始化行情源
	var source marketdomain.QuoteSource
	var searcher marketdomain.SymbolSearcher
	switch cfg.MarketData.Provider {
	case "alpaca":
		source = alpaca.New(cfg.MarketData.AlpacaKey, cfg.MarketData.AlpacaSecret)
	default:
		yahooClient := yahoo.NewClient(time.Duration(cfg.MarketData.QuoteTimeout) * time.Second)
		source = yahooClient
		searcher = yahooClient
	}
	if redisCache != nil && cfg.MarketData.CacheTTL > 0 {
		source = quotecache.NewCachedQuoteSource(source, redisCache, time.Duration(cfg.MarketData.CacheTTL)*time.Second)
	}

	aggregator := marketapp.NewQuoteAggregator(source, marketapp.AggregatorConfig{
		BatchSize:  cfg.MarketData.BatchSize,
		BatchDelay: time.Duration(cfg.MarketData.BatchDelayMs) * time.Millisecond,
	}, m)

	// 6. 初始化仓储与应用服务
	userRepo := mysql.NewUserRepository(database)
	positionRepo := mysql.NewPositionRepository(database)
	transactionRepo := mysql.NewTransactionRepository(database)
	txManager := mysql.NewTxManager(database)

	tradingSvc := tradingapp.NewTradingService(
		userRepo, positionRepo, transactionRepo, txManager,
		aggregator, publisher, m,
	)
	portfolioSvc := portfolioapp.NewPortfolioService(userRepo, positionRepo, aggregator)

	// 7. 初始化接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging(m), middleware.CORS())
	if cfg.RateLimit.Enabled && redisCache != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		r.Use(middleware.RateLimit(limiter, cfg.RateLimit.QPS, cfg.RateLimit.Burst))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := r.Group("/api")
	markethttp.NewStockHandler(aggregator, searcher).RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Identity())
	tradinghttp.NewTradeHandler(tradingSvc).RegisterRoutes(authed)
	portfoliohttp.NewPortfolioHandler(portfolioSvc).RegisterRoutes(authed)

	// 8. 启动服务
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 9. 优雅关闭
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
