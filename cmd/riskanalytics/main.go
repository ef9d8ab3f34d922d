package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	marketdataapp "github.com/wyfcoding/riskanalytics/internal/marketdata/application"
	marketdatarepo "github.com/wyfcoding/riskanalytics/internal/marketdata/infrastructure/repository"
	marketdatahttp "github.com/wyfcoding/riskanalytics/internal/marketdata/interfaces/http"
	optionsapp "github.com/wyfcoding/riskanalytics/internal/options/application"
	optionsprovider "github.com/wyfcoding/riskanalytics/internal/options/infrastructure/provider"
	optionshttp "github.com/wyfcoding/riskanalytics/internal/options/interfaces/http"
	reportapp "github.com/wyfcoding/riskanalytics/internal/report/application"
	reporthttp "github.com/wyfcoding/riskanalytics/internal/report/interfaces/http"
	riskapp "github.com/wyfcoding/riskanalytics/internal/risk/application"
	riskdomain "github.com/wyfcoding/riskanalytics/internal/risk/domain"
	"github.com/wyfcoding/riskanalytics/internal/risk/infrastructure/publisher"
	riskrepo "github.com/wyfcoding/riskanalytics/internal/risk/infrastructure/repository"
	riskhttp "github.com/wyfcoding/riskanalytics/internal/risk/interfaces/http"
	scenarioapp "github.com/wyfcoding/riskanalytics/internal/scenario/application"
	scenarioprovider "github.com/wyfcoding/riskanalytics/internal/scenario/infrastructure/provider"
	scenariorepo "github.com/wyfcoding/riskanalytics/internal/scenario/infrastructure/repository"
	scenariohttp "github.com/wyfcoding/riskanalytics/internal/scenario/interfaces/http"
	"github.com/wyfcoding/riskanalytics/pkg/cache"
	"github.com/wyfcoding/riskanalytics/pkg/config"
	"github.com/wyfcoding/riskanalytics/pkg/db"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
	"github.com/wyfcoding/riskanalytics/pkg/metrics"
	"github.com/wyfcoding/riskanalytics/pkg/middleware"
	"github.com/wyfcoding/riskanalytics/pkg/mq"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/riskanalytics/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting risk analytics service",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. Database
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&riskrepo.VaRRunModel{},
		&scenariorepo.ScenarioRunModel{},
		&marketdatarepo.PositionModel{},
		&marketdatarepo.OptionPositionModel{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 4. Cache
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect redis", "error", err)
	}
	defer redisCache.Close()

	// 5. Message Queue
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Warn(ctx, "Kafka producer unavailable, alerts disabled", "error", err)
		producer = nil
	} else {
		defer producer.Close()
	}

	// 6. Metrics
	m := metrics.New("riskanalytics")
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}

	// 7. Application Services
	marketDataService := marketdataapp.NewMarketDataService(
		time.Now().UnixNano(),
		marketdatarepo.NewBookRepository(database),
	)

	var alertPublisher riskdomain.AlertPublisher
	if producer != nil {
		alertPublisher = publisher.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
	}

	riskService := riskapp.NewRiskService(
		riskrepo.NewVaRRunRepository(database),
		marketDataService,
		alertPublisher,
		redisCache,
		m,
		riskapp.Config{
			DefaultConfidence:  cfg.Risk.ConfidenceLevel,
			DefaultSimulations: cfg.Risk.Simulations,
			BacktestWindow:     cfg.Risk.BacktestWindow,
			VaRLimitPct:        cfg.Risk.VaRLimitPct,
		},
	)

	scenarioService := scenarioapp.NewScenarioService(
		scenariorepo.NewScenarioRunRepository(database),
		scenarioprovider.NewMarketDataPortfolioProvider(marketDataService),
		m,
	)

	optionsService := optionsapp.NewOptionsService(
		optionsprovider.NewMarketDataBookProvider(marketDataService),
		m,
	)

	reportService := reportapp.NewReportService(
		marketDataService,
		riskService,
		scenarioService,
		optionsService,
		redisCache,
		reportapp.Config{
			Organization: cfg.ServiceName,
			RiskFreeRate: cfg.Risk.RiskFreeRate,
			VaRLimitPct:  cfg.Risk.VaRLimitPct,
		},
	)

	// 8. HTTP Router
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Metrics(m),
		middleware.Recovery(),
	)

	marketdatahttp.NewHandler(marketDataService).RegisterRoutes(router)
	riskhttp.NewHandler(riskService).RegisterRoutes(router)
	scenariohttp.NewHandler(scenarioService).RegisterRoutes(router)
	optionshttp.NewHandler(optionsService).RegisterRoutes(router)
	reporthttp.NewHandler(reportService).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	sys := router.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		sys.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "READY"}) })
	}
	pp := router.Group("/debug/pprof")
	{
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
	}

	// 9. Start
	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		logger.Info(gctx, "HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.StartHTTPServer(cfg.Metrics.Port)
		g.Go(func() error {
			logger.Info(gctx, "Metrics server starting", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	// 10. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "Shutting down servers")
		case <-gctx.Done():
			logger.Info(gctx, "Context cancelled, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "HTTP server shutdown failed", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Metrics server shutdown failed", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
	}
}
