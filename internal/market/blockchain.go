package market

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"btc-command-center/internal/cache"
)

type chartResponse struct {
	Values []struct {
		X int64   `json:"x"`
		Y float64 `json:"y"`
	} `json:"values"`
}

// chartSeries fetches one Blockchain.com charts-API series and returns it
// sorted ascending by time. Upstream usually sorts already; we do not rely
// on it.
func (c *Client) chartSeries(ctx context.Context, chart, timespan string, ttl time.Duration) ([]SeriesPoint, error) {
	key := fmt.Sprintf("blockchain:charts:%s:%s", chart, timespan)
	return cache.Fetch(c.cache, key, ttl, func() ([]SeriesPoint, error) {
		params := url.Values{"timespan": {timespan}, "format": {"json"}}
		var resp chartResponse
		if err := c.fc.GetJSON(ctx, c.cfg.BlockchainChartsURL+"/charts/"+chart, params, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Values) == 0 {
			return nil, fmt.Errorf("charts %s: empty values", chart)
		}
		out := make([]SeriesPoint, 0, len(resp.Values))
		for _, v := range resp.Values {
			out = append(out, SeriesPoint{Time: time.Unix(v.X, 0).UTC(), Value: v.Y})
		}
		slices.SortStableFunc(out, func(a, b SeriesPoint) int {
			return a.Time.Compare(b.Time)
		})
		return out, nil
	})
}

// TxValueUSD is the estimated on-chain transaction value in USD per day.
func (c *Client) TxValueUSD(ctx context.Context) ([]SeriesPoint, error) {
	return c.chartSeries(ctx, "estimated-transaction-volume-usd", "30days", c.cfg.ChartTTL)
}

// TxCount is confirmed transactions per day.
func (c *Client) TxCount(ctx context.Context) ([]SeriesPoint, error) {
	return c.chartSeries(ctx, "n-transactions", "30days", c.cfg.ChartTTL)
}

// Hashrate is the estimated network hashrate over the last 90 days.
func (c *Client) Hashrate(ctx context.Context) ([]SeriesPoint, error) {
	return c.chartSeries(ctx, "hash-rate", "90days", c.cfg.ChartTTL)
}

// MarketPriceAll is the all-time daily market price, the input to the
// rainbow valuation bands.
func (c *Client) MarketPriceAll(ctx context.Context) ([]SeriesPoint, error) {
	return c.chartSeries(ctx, "market-price", "all", c.cfg.HistoryTTL)
}

// BlockHeight reports the chain tip height from blockchain.info, falling
// back to the mempool.space bare-integer endpoint when that fails.
func (c *Client) BlockHeight(ctx context.Context) (int64, error) {
	return cache.Fetch(c.cache, "chain:tip-height", c.cfg.PriceTTL, func() (int64, error) {
		var latest struct {
			Height int64 `json:"height"`
		}
		err := c.fc.GetJSON(ctx, c.cfg.BlockchainExplorerURL+"/latestblock", nil, nil, &latest)
		if err == nil && latest.Height > 0 {
			return latest.Height, nil
		}
		h, ferr := c.fc.GetInt(ctx, c.cfg.MempoolSpaceURL+"/api/blocks/tip/height")
		if ferr != nil {
			if err != nil {
				return 0, fmt.Errorf("latestblock: %w (fallback: %v)", err, ferr)
			}
			return 0, ferr
		}
		return h, nil
	})
}
