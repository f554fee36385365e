package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btc-command-center/internal/cache"
	"btc-command-center/internal/config"
	"btc-command-center/internal/fetch"
	"btc-command-center/internal/market"
	"btc-command-center/internal/metrics"
	"btc-command-center/internal/server"
	"btc-command-center/internal/state"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)

	logger.Info("btc-command-center starting",
		slog.Int("port", cfg.Port),
		slog.String("default_venue", cfg.DefaultVenue),
		slog.String("default_pair", cfg.DefaultPair),
		slog.Int("refresh_seconds", cfg.RefreshSeconds),
	)

	reg := metrics.Init()
	respCache := cache.New()
	fc := fetch.NewClient(time.Duration(cfg.FetchTimeoutSeconds)*time.Second, logger)
	mkt := market.NewClient(marketConfig(cfg), fc, respCache)
	st := state.New(cfg.DefaultVenue, cfg.DefaultPair, cfg.DepthRows)

	srv := server.NewHTTPServer(cfg, st, mkt, respCache, reg, logger)

	// Context & signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Push loop: refresh the active order book and fan it out to connected
	// dashboards. The cache keeps this from hammering the venue.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.RefreshSeconds) * time.Second)
		defer ticker.Stop()
		srv.PushSnapshot(ctx)
		for {
			select {
			case <-ticker.C:
				srv.PushSnapshot(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP serving
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	done := make(chan struct{})
	go func() {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
		close(done)
	}()

	// Graceful shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shCancel()

	_ = httpSrv.Shutdown(shCtx)
	cancel()
	<-done
	logger.Info("bye")
}

func marketConfig(cfg config.Config) market.Config {
	return market.Config{
		CoinGeckoURL:          cfg.Endpoints.CoinGeckoURL,
		BlockchainChartsURL:   cfg.Endpoints.BlockchainChartsURL,
		BlockchainExplorerURL: cfg.Endpoints.BlockchainExplorerURL,
		MempoolSpaceURL:       cfg.Endpoints.MempoolSpaceURL,
		CoinbaseURL:           cfg.Endpoints.CoinbaseURL,
		KrakenURL:             cfg.Endpoints.KrakenURL,
		BookTTL:               time.Duration(cfg.TTL.OrderBookSeconds) * time.Second,
		PriceTTL:              time.Duration(cfg.TTL.PriceSeconds) * time.Second,
		ChartTTL:              time.Duration(cfg.TTL.ChartSeconds) * time.Second,
		HistoryTTL:            time.Duration(cfg.TTL.HistorySeconds) * time.Second,
	}
}
