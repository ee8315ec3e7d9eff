package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"phoneprice/config"
	qhttp "phoneprice/http"
	"phoneprice/logger"
	"phoneprice/metrics"
	"phoneprice/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	metrics.Init()

	// 2. Load the model once; the process is useless without it
	holder := ml.NewModelHolder(cfg.Model.Path, appLogger)
	if _, err := holder.Get(); err != nil {
		appLogger.Fatal("failed to load model", zap.String("path", cfg.Model.Path), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Model.Watch {
		if err := holder.Watch(ctx); err != nil {
			appLogger.Warn("model file watching disabled", zap.Error(err))
		}
	}

	predictor, err := ml.NewPredictor(holder,
		ml.WithCacheSize(cfg.Model.CacheSize),
		ml.WithLogger(appLogger))
	if err != nil {
		appLogger.Fatal("failed to create predictor", zap.Error(err))
	}

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, predictor, appLogger)
	go func() {
		if err := server.Start(); err != nil {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down")

	if err := server.Stop(); err != nil {
		appLogger.Error("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("exiting")
}
