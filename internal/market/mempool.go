package market

import (
	"context"
	"fmt"
	"time"

	"btc-command-center/internal/cache"
)

// Mempool returns the pending-set summary from mempool.space.
func (c *Client) Mempool(ctx context.Context) (MempoolStats, error) {
	return cache.Fetch(c.cache, "mempool:summary", c.cfg.PriceTTL, func() (MempoolStats, error) {
		var resp struct {
			Count    int64 `json:"count"`
			VSize    int64 `json:"vsize"`
			TotalFee int64 `json:"total_fee"`
		}
		if err := c.fc.GetJSON(ctx, c.cfg.MempoolSpaceURL+"/api/mempool", nil, nil, &resp); err != nil {
			return MempoolStats{}, err
		}
		return MempoolStats{Count: resp.Count, VSizeBytes: resp.VSize, TotalFee: resp.TotalFee}, nil
	})
}

// LatestBlocks returns the most recent blocks, capped to limit rows.
func (c *Client) LatestBlocks(ctx context.Context, limit int) ([]BlockSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	key := fmt.Sprintf("mempool:blocks:%d", limit)
	return cache.Fetch(c.cache, key, c.cfg.ChartTTL, func() ([]BlockSummary, error) {
		var resp []struct {
			Height    int64 `json:"height"`
			TxCount   int64 `json:"tx_count"`
			Size      int64 `json:"size"`
			Timestamp int64 `json:"timestamp"`
		}
		if err := c.fc.GetJSON(ctx, c.cfg.MempoolSpaceURL+"/api/v1/blocks", nil, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp) > limit {
			resp = resp[:limit]
		}
		out := make([]BlockSummary, 0, len(resp))
		for _, b := range resp {
			out = append(out, BlockSummary{
				Height:    b.Height,
				TxCount:   b.TxCount,
				Size:      b.Size,
				Timestamp: time.Unix(b.Timestamp, 0).UTC(),
			})
		}
		return out, nil
	})
}
