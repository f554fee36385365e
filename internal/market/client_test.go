package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"btc-command-center/internal/cache"
	"btc-command-center/internal/fetch"
)

func newTestClient(srvURL string) *Client {
	cfg := Config{
		CoinGeckoURL:          srvURL,
		BlockchainChartsURL:   srvURL,
		BlockchainExplorerURL: srvURL,
		MempoolSpaceURL:       srvURL,
		CoinbaseURL:           srvURL,
		KrakenURL:             srvURL,
		BookTTL:               time.Minute,
		PriceTTL:              time.Minute,
		ChartTTL:              time.Minute,
		HistoryTTL:            time.Minute,
	}
	return NewClient(cfg, fetch.NewClient(5*time.Second, nil), cache.New())
}

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/coins/bitcoin", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("market_data"))
		_, _ = w.Write([]byte(`{
			"market_data": {
				"current_price": {"usd": 65000.12},
				"market_cap": {"usd": 1280000000000},
				"circulating_supply": 19700000
			},
			"last_updated": "2025-08-20T12:00:00.000Z"
		}`))
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL).Price(context.Background())
	require.NoError(t, err)
	require.True(t, p.PriceUSD.Equal(decimal.RequireFromString("65000.12")))
	require.True(t, p.MarketCapUSD.Equal(decimal.RequireFromString("1280000000000")))
	require.Equal(t, "2025-08-20T12:00:00.000Z", p.LastUpdated)
}

func TestPriceMissingMarketData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"bitcoin"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Price(context.Background())
	require.ErrorContains(t, err, "market_data")
}

func TestChartSeriesSorted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/charts/n-transactions", r.URL.Path)
		require.Equal(t, "30days", r.URL.Query().Get("timespan"))
		// deliberately out of order
		_, _ = w.Write([]byte(`{"values":[{"x":1700086400,"y":420000},{"x":1700000000,"y":410000}]}`))
	}))
	defer srv.Close()

	pts, err := newTestClient(srv.URL).TxCount(context.Background())
	require.NoError(t, err)
	require.Len(t, pts, 2)
	require.True(t, pts[0].Time.Before(pts[1].Time))
	require.Equal(t, 410000.0, pts[0].Value)
}

func TestChartSeriesCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"values":[{"x":1700000000,"y":1}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Hashrate(context.Background())
	require.NoError(t, err)
	_, err = c.Hashrate(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load(), "second read must come from cache")
}

func TestBlockHeightFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latestblock":
			http.Error(w, "nope", http.StatusBadGateway)
		case "/api/blocks/tip/height":
			_, _ = w.Write([]byte("840456"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h, err := newTestClient(srv.URL).BlockHeight(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 840456, h)
}

func TestMempoolAndBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mempool":
			_, _ = w.Write([]byte(`{"count": 45123, "vsize": 83000000, "total_fee": 912345678}`))
		case "/api/v1/blocks":
			_, _ = w.Write([]byte(`[
				{"height": 840002, "tx_count": 3001, "size": 1500000, "timestamp": 1700000600},
				{"height": 840001, "tx_count": 2500, "size": 1400000, "timestamp": 1700000000},
				{"height": 840000, "tx_count": 2000, "size": 1300000, "timestamp": 1699999400}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	mp, err := c.Mempool(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 45123, mp.Count)
	require.EqualValues(t, 83000000, mp.VSizeBytes)

	blocks, err := c.LatestBlocks(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.EqualValues(t, 840002, blocks[0].Height)
	require.EqualValues(t, 3001, blocks[0].TxCount)
}

func TestCoinbaseBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/BTC-USD/book", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("level"))
		_, _ = w.Write([]byte(`{
			"bids": [["64999.10","0.5",3],["65000.00","0.2",1],["junk","1",1]],
			"asks": [["65001.00","0.4",2],["65000.50","1.0",5]]
		}`))
	}))
	defer srv.Close()

	bk, err := newTestClient(srv.URL).OrderBook(context.Background(), VenueCoinbase, "")
	require.NoError(t, err)
	require.Len(t, bk.Bids, 2, "malformed bid row must be dropped")
	require.True(t, bk.Bids[0].Price.Equal(decimal.RequireFromString("65000.00")))
	require.True(t, bk.Asks[0].Price.Equal(decimal.RequireFromString("65000.50")))
	mid, ok := bk.Mid()
	require.True(t, ok)
	require.True(t, mid.Equal(decimal.RequireFromString("65000.25")))
}

func TestCoinbaseBookNonListSides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).OrderBook(context.Background(), VenueCoinbase, "BTC-USD")
	require.ErrorContains(t, err, "no sides")
}

func TestKrakenBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/0/public/Depth", r.URL.Path)
		require.Equal(t, "XBTUSD", r.URL.Query().Get("pair"))
		_, _ = w.Write([]byte(`{
			"error": [],
			"result": {
				"XXBTZUSD": {
					"bids": [["64990.0","0.7",1700000000]],
					"asks": [["65010.0","0.3",1700000000],["65005.0","0.6",1700000000]]
				}
			}
		}`))
	}))
	defer srv.Close()

	bk, err := newTestClient(srv.URL).OrderBook(context.Background(), VenueKraken, "XBTUSD")
	require.NoError(t, err)
	require.Len(t, bk.Asks, 2)
	require.True(t, bk.Asks[0].Price.Equal(decimal.RequireFromString("65005.0")))
	require.True(t, bk.Asks[1].CumQuantity.Equal(decimal.RequireFromString("0.9")))
}

func TestKrakenBookUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":["EQuery:Unknown asset pair"],"result":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).OrderBook(context.Background(), VenueKraken, "NOPE")
	require.ErrorContains(t, err, "Unknown asset pair")
}

func TestParseVenue(t *testing.T) {
	v, err := ParseVenue(" Coinbase ")
	require.NoError(t, err)
	require.Equal(t, VenueCoinbase, v)
	_, err = ParseVenue("binance")
	require.Error(t, err)
	require.Equal(t, "XBTUSD", VenueKraken.DefaultPair())
	require.Equal(t, "BTC-USD", VenueCoinbase.DefaultPair())
}
