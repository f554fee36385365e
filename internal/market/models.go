package market

import (
	"time"

	"github.com/shopspring/decimal"

	"btc-command-center/internal/cache"
	"btc-command-center/internal/fetch"
)

// PriceStats is the spot market summary shown in the dashboard header.
type PriceStats struct {
	PriceUSD          decimal.Decimal `json:"priceUSD"`
	MarketCapUSD      decimal.Decimal `json:"marketCapUSD"`
	CirculatingSupply decimal.Decimal `json:"circulatingSupply"`
	LastUpdated       string          `json:"lastUpdated"`
}

// SeriesPoint is one sample of a dated chart series.
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// MempoolStats summarizes the pending transaction set.
type MempoolStats struct {
	Count      int64 `json:"count"`
	VSizeBytes int64 `json:"vsizeBytes"`
	TotalFee   int64 `json:"totalFee"`
}

// BlockSummary is one row of the latest-blocks explorer table.
type BlockSummary struct {
	Height    int64     `json:"height"`
	TxCount   int64     `json:"txCount"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Config carries the upstream base URLs and the per-endpoint-family cache
// TTLs. TTL policy lives here with the caller, not in the cache.
type Config struct {
	CoinGeckoURL          string
	BlockchainChartsURL   string
	BlockchainExplorerURL string
	MempoolSpaceURL       string
	CoinbaseURL           string
	KrakenURL             string

	BookTTL    time.Duration
	PriceTTL   time.Duration
	ChartTTL   time.Duration
	HistoryTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		CoinGeckoURL:          "https://api.coingecko.com",
		BlockchainChartsURL:   "https://api.blockchain.info",
		BlockchainExplorerURL: "https://blockchain.info",
		MempoolSpaceURL:       "https://mempool.space",
		CoinbaseURL:           "https://api.exchange.coinbase.com",
		KrakenURL:             "https://api.kraken.com",
		BookTTL:               15 * time.Second,
		PriceTTL:              60 * time.Second,
		ChartTTL:              300 * time.Second,
		HistoryTTL:            900 * time.Second,
	}
}

// Client maps the public upstream endpoints onto typed aggregates. All
// reads go through the TTL cache; every error means "panel unavailable"
// and is recovered by the presentation layer.
type Client struct {
	cfg   Config
	fc    *fetch.Client
	cache *cache.TTLCache
}

func NewClient(cfg Config, fc *fetch.Client, c *cache.TTLCache) *Client {
	return &Client{cfg: cfg, fc: fc, cache: c}
}
