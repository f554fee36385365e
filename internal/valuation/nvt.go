package valuation

import (
	"github.com/shopspring/decimal"

	"btc-command-center/internal/market"
)

// NVTSeries is the Network-Value-to-Transactions ratio per day: the latest
// market cap over each day's on-chain transferred USD value. Days with a
// non-positive transferred value are skipped.
func NVTSeries(marketCapUSD decimal.Decimal, txValueUSD []market.SeriesPoint) []market.SeriesPoint {
	mcap, _ := marketCapUSD.Float64()
	if mcap <= 0 {
		return nil
	}
	out := make([]market.SeriesPoint, 0, len(txValueUSD))
	for _, p := range txValueUSD {
		if p.Value <= 0 {
			continue
		}
		out = append(out, market.SeriesPoint{Time: p.Time, Value: mcap / p.Value})
	}
	return out
}
