// Command refresher runs one serial price refresh pass and exits. Meant for
// cron-style environments where the long-running server is not deployed.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/natthaphong/portfolio_tracker/config"
	"github.com/natthaphong/portfolio_tracker/data"
	"github.com/natthaphong/portfolio_tracker/data/cache"
	"github.com/natthaphong/portfolio_tracker/data/repository"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi/finnomenaApi"
	"github.com/natthaphong/portfolio_tracker/internal/externalApi/yahooApi"
	"github.com/natthaphong/portfolio_tracker/internal/service/portfolioService"
	"github.com/natthaphong/portfolio_tracker/utils"
)

func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		<-interrupt
		cancel()
	}()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	quoteApi := yahooApi.New(cfg)
	fundApi := finnomenaApi.New(cfg)

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, quoteApi, fundApi, nil, nil)

	ctx = utils.CtxWithRqID(ctx, uuid.NewString())

	if err := portfolioSrv.RefreshPricesSerial(ctx); err != nil {
		slog.Error("price refresh failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	slog.Info("price refresh done")
}
