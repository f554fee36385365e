package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Endpoints struct {
	CoinGeckoURL          string `yaml:"coingecko_url"`
	BlockchainChartsURL   string `yaml:"blockchain_charts_url"`
	BlockchainExplorerURL string `yaml:"blockchain_explorer_url"`
	MempoolSpaceURL       string `yaml:"mempool_space_url"`
	CoinbaseURL           string `yaml:"coinbase_url"`
	KrakenURL             string `yaml:"kraken_url"`
}

type TTL struct {
	OrderBookSeconds int `yaml:"order_book_seconds"`
	PriceSeconds     int `yaml:"price_seconds"`
	ChartSeconds     int `yaml:"chart_seconds"`
	HistorySeconds   int `yaml:"history_seconds"`
}

type Config struct {
	Port                int       `yaml:"port"`
	LogLevel            string    `yaml:"log_level"`
	RefreshSeconds      int       `yaml:"refresh_seconds"`
	FetchTimeoutSeconds int       `yaml:"fetch_timeout_seconds"`
	DepthRows           int       `yaml:"depth_rows"`
	DefaultVenue        string    `yaml:"default_venue"`
	DefaultPair         string    `yaml:"default_pair"`
	Endpoints           Endpoints `yaml:"endpoints"`
	TTL                 TTL       `yaml:"ttl"`
}

func defaults() Config {
	return Config{
		Port:                8087,
		LogLevel:            "info",
		RefreshSeconds:      15,
		FetchTimeoutSeconds: 15,
		DepthRows:           20,
		DefaultVenue:        "coinbase",
		DefaultPair:         "BTC-USD",
		Endpoints: Endpoints{
			CoinGeckoURL:          "https://api.coingecko.com",
			BlockchainChartsURL:   "https://api.blockchain.info",
			BlockchainExplorerURL: "https://blockchain.info",
			MempoolSpaceURL:       "https://mempool.space",
			CoinbaseURL:           "https://api.exchange.coinbase.com",
			KrakenURL:             "https://api.kraken.com",
		},
		TTL: TTL{
			OrderBookSeconds: 15,
			PriceSeconds:     60,
			ChartSeconds:     300,
			HistorySeconds:   900,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	// Validation & normalization
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, errors.New("invalid port")
	}
	if cfg.RefreshSeconds < 1 {
		return cfg, errors.New("refresh_seconds must be >=1")
	}
	if cfg.FetchTimeoutSeconds < 1 {
		return cfg, errors.New("fetch_timeout_seconds must be >=1")
	}
	if cfg.DepthRows < 1 {
		return cfg, errors.New("depth_rows must be >=1")
	}
	switch strings.ToLower(cfg.DefaultVenue) {
	case "coinbase", "kraken":
		cfg.DefaultVenue = strings.ToLower(cfg.DefaultVenue)
	default:
		return cfg, errors.New(`default_venue must be "coinbase" or "kraken"`)
	}
	for name, v := range map[string]int{
		"ttl.order_book_seconds": cfg.TTL.OrderBookSeconds,
		"ttl.price_seconds":      cfg.TTL.PriceSeconds,
		"ttl.chart_seconds":      cfg.TTL.ChartSeconds,
		"ttl.history_seconds":    cfg.TTL.HistorySeconds,
	} {
		if v < 1 {
			return cfg, fmt.Errorf("%s must be >=1", name)
		}
	}
	return cfg, nil
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
