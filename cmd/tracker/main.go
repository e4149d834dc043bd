package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/infrastructure/baas"
	"portfolio_tracker/internal/infrastructure/feeds"
	"portfolio_tracker/internal/infrastructure/restapi"
	"portfolio_tracker/internal/pkg/logger"
	"portfolio_tracker/internal/pkg/utils"
	"portfolio_tracker/pkg/metrics"
)

func main() {
	// Bootstrap logging before the config is available.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}

	// Route the global slog through zap so every layer ends up in one
	// stream.
	logger.InitSlog(cfg.Logging.Level)
	slogHandler := slogzap.Option{Level: slog.LevelDebug, Logger: zapLogger}.NewZapHandler()
	slog.SetDefault(slog.New(slogHandler))

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	baasTimeout := time.Duration(cfg.BaaS.RequestTimeoutMillis) * time.Millisecond
	authClient := baas.NewAuthClient(cfg.BaaS.BaseURL, cfg.BaaS.AnonKey, baasTimeout, zapLogger)
	rowsClient := baas.NewRowsClient(cfg.BaaS.BaseURL, cfg.BaaS.AnonKey, baasTimeout,
		cfg.BaaS.RateLimit, cfg.BaaS.BurstLimit, zapLogger)
	storageClient := baas.NewStorageClient(cfg.BaaS.BaseURL, cfg.BaaS.AnonKey, cfg.Storage.Bucket,
		baasTimeout, zapLogger)
	zapLogger.Info("BaaS clients initialized", zap.String("baseURL", cfg.BaaS.BaseURL))

	sentimentTimeout := time.Duration(cfg.Sentiment.RequestTimeoutMillis) * time.Millisecond
	sentimentClient := feeds.NewSentimentClient(cfg.Sentiment.BaseURL, sentimentTimeout, zapLogger)

	marketSvc := service.NewMarketService(sentimentClient,
		time.Duration(cfg.Sentiment.CacheTTLMinutes)*time.Minute, zapLogger)
	portfolioSvc := service.NewPortfolioService(rowsClient, marketSvc, zapLogger)
	dashboardSvc := service.NewDashboardService(portfolioSvc, cfg.View.PageSize,
		time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute, zapLogger)
	notifier := service.NewToastNotifier(
		time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		logger.NewSlogAdapter())
	sessionCtrl := service.NewSessionController(authClient, portfolioSvc, zapLogger)
	zapLogger.Info("Services initialized")

	// Load the initial portfolio set in the background so a slow BaaS
	// does not block startup.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sessionCtrl.Bootstrap(ctx, "")
		if err := portfolioSvc.Refresh(ctx); err != nil {
			zapLogger.Error("Initial portfolio refresh failed", zap.Error(err))
		} else {
			zapLogger.Info("Initial portfolio refresh completed")
		}
	}()

	dashboardHandler := restapi.NewDashboardHandler(dashboardSvc, portfolioSvc, notifier)
	authHandler := restapi.NewAuthHandler(authClient, sessionCtrl, storageClient, notifier,
		cfg.Server.PublicURL, cfg.Storage.MaxUploadBytes, zapLogger)
	callbackHandler := restapi.NewCallbackHandler(authClient, sessionCtrl, zapLogger)
	marketHandler := restapi.NewMarketHandler(marketSvc)

	router := restapi.SetupRouter(cfg, dashboardHandler, authHandler, callbackHandler, marketHandler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
