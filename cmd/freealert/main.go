package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freealert/freealert/internal/alerts"
	"github.com/freealert/freealert/internal/cache"
	"github.com/freealert/freealert/internal/capitulation"
	"github.com/freealert/freealert/internal/configs"
	"github.com/freealert/freealert/internal/providers/alternative"
	"github.com/freealert/freealert/internal/providers/binance"
	"github.com/freealert/freealert/internal/providers/coingecko"
	"github.com/freealert/freealert/internal/providers/coinmarketcap"
	"github.com/freealert/freealert/internal/scheduler"
	"github.com/freealert/freealert/internal/server"
)

var log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// alertHistory adapts the Binance client for the alert checker: alerts carry
// bare coin symbols while Binance wants the USDT pair.
type alertHistory struct {
	client *binance.Client
}

func (h alertHistory) DailyCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	return h.client.DailyCloses(ctx, binance.Pair(symbol), limit)
}

func main() {
	config, err := configs.Load()
	if err != nil {
		log.Error("Error loading config", "err", err)
		os.Exit(1)
	}

	log.Info("loaded config", "env", config.Env, "addr", config.Server.Addr)

	gecko := coingecko.NewClient(config.Providers.CoinGeckoBaseURL)
	spot := binance.NewClient(config.Providers.BinanceBaseURL)
	sentiment := alternative.NewClient(config.Providers.AlternativeBaseURL)
	cmc := coinmarketcap.NewClient(config.Providers.CoinMarketCap.BaseURL, config.Providers.CoinMarketCap.APIKey)

	log.Info("init providers")

	store := cache.New(config.Redis, config.Cache.TTL, log)

	baseline := capitulation.NewBaseline()
	service := capitulation.NewService(gecko, gecko, sentiment, baseline, log)
	meter := capitulation.NewSymbolMeter(spot, spot, spot)

	log.Info("init capitulation service")

	registry := alerts.NewRegistry()
	checker := alerts.NewChecker(registry, alertHistory{client: spot}, log)

	log.Info("init alert checker")

	srv := server.New(server.Options{
		Capitulation: service,
		Meter:        meter,
		Sentiment:    sentiment,
		Global:       gecko,
		Dominance:    cmc,
		Movers:       cmc,
		Tickers:      spot,
		Registry:     registry,
		Cache:        store,
		Logger:       log,
		Production:   config.Env == "production",
		CORSOrigin:   config.Server.CORSOrigin,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(service, checker, log, config.Refresh.Capitulation, config.Refresh.Alerts)
	go sched.Start(ctx)

	httpServer := &http.Server{
		Addr:    config.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("http server listening", "addr", config.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}

	log.Info("stopped")
}
