package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/data"
	"github.com/natthaphong/portfolio_tracker/data/cache"
	"github.com/natthaphong/portfolio_tracker/data/repository"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi/finnomenaApi"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi/yahooApi"
	"github.com/natthaphong/portfolio_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/natthaphong/portfolio_tracker/internal/scheduler"
	"github.com/natthaphong/portfolio_tracker/internal/service/portfolioService"
	"github.com/natthaphong/portfolio_tracker/internal/transport/httpapi"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	quoteApi := yahooApi.New(cfg)
	fundApi := finnomenaApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage portfolioService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.Enabled {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, quoteApi, fundApi, reportGenerator, cloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh prices", portfolioSrv.RefreshPricesSerial, cfg.Jobs.RefreshPricesInterval, true)
	if driveApi != nil {
		sched.NewIntervalJob("cleanup drive reports", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupInterval, false)
	}
	sched.Start()
	defer sched.Stop()

	server := httpapi.NewServer(cfg, portfolioSrv)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()
	slog.Info("http server started", slog.Int("port", cfg.HTTP.Port))

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}

	portfolioSrv.FlushPendingSaves(shutdownCtx)
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
