package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"agegroup/config"
	qhttp "agegroup/http"
	"agegroup/logging"
	"agegroup/ml"
	"agegroup/survey"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	// 2. Load the model once; nothing can be served without it
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path, survey.RequiredColumns())
	if err != nil {
		logger.Fatal("failed to load model", zap.String("type", cfg.Model.Type), zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	logger.Info("model loaded", zap.String("type", cfg.Model.Type), zap.String("path", cfg.Model.Path))

	// 3. Start HTTP server
	api := qhttp.NewAPI(model, qhttp.APIConfig{
		PreviewRows:    cfg.Batch.PreviewRows,
		StrictBatch:    cfg.Validation.StrictBatch,
		BatchCacheSize: cfg.Batch.CacheSize,
		BatchTTL:       cfg.Batch.TTL,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, logger)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxUploadBytes: cfg.Http.MaxUploadBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, api, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
