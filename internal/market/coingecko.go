package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"btc-command-center/internal/cache"
)

type coingeckoCoin struct {
	MarketData *struct {
		CurrentPrice      map[string]decimal.Decimal `json:"current_price"`
		MarketCap         map[string]decimal.Decimal `json:"market_cap"`
		CirculatingSupply decimal.Decimal            `json:"circulating_supply"`
	} `json:"market_data"`
	LastUpdated string `json:"last_updated"`
}

// Price returns the CoinGecko spot summary for bitcoin.
func (c *Client) Price(ctx context.Context) (PriceStats, error) {
	return cache.Fetch(c.cache, "coingecko:price", c.cfg.PriceTTL, func() (PriceStats, error) {
		params := url.Values{
			"localization":   {"false"},
			"tickers":        {"false"},
			"market_data":    {"true"},
			"community_data": {"false"},
			"developer_data": {"false"},
			"sparkline":      {"false"},
		}
		var coin coingeckoCoin
		if err := c.fc.GetJSON(ctx, c.cfg.CoinGeckoURL+"/api/v3/coins/bitcoin", params, nil, &coin); err != nil {
			return PriceStats{}, err
		}
		if coin.MarketData == nil {
			return PriceStats{}, fmt.Errorf("coingecko: response missing market_data")
		}
		return PriceStats{
			PriceUSD:          coin.MarketData.CurrentPrice["usd"],
			MarketCapUSD:      coin.MarketData.MarketCap["usd"],
			CirculatingSupply: coin.MarketData.CirculatingSupply,
			LastUpdated:       coin.LastUpdated,
		}, nil
	})
}
