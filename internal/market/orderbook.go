package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"btc-command-center/internal/book"
	"btc-command-center/internal/cache"
)

// Venue names an order-book source.
type Venue string

const (
	VenueCoinbase Venue = "coinbase"
	VenueKraken   Venue = "kraken"
)

// ParseVenue canonicalizes a venue label.
func ParseVenue(s string) (Venue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(VenueCoinbase):
		return VenueCoinbase, nil
	case string(VenueKraken):
		return VenueKraken, nil
	default:
		return "", fmt.Errorf("unsupported order book venue: %q", s)
	}
}

// DefaultPair is the product identifier each venue uses for BTC/USD.
func (v Venue) DefaultPair() string {
	if v == VenueKraken {
		return "XBTUSD"
	}
	return "BTC-USD"
}

// OrderBook fetches a venue's level-2 snapshot and normalizes both sides.
func (c *Client) OrderBook(ctx context.Context, venue Venue, pair string) (book.Book, error) {
	if pair == "" {
		pair = venue.DefaultPair()
	}
	key := fmt.Sprintf("orderbook:%s:%s", venue, pair)
	return cache.Fetch(c.cache, key, c.cfg.BookTTL, func() (book.Book, error) {
		switch venue {
		case VenueCoinbase:
			return c.coinbaseBook(ctx, pair)
		case VenueKraken:
			return c.krakenBook(ctx, pair)
		default:
			return book.Book{}, fmt.Errorf("unsupported order book venue: %q", venue)
		}
	})
}

// Coinbase level-2 book: {"bids": [["price","size",num_orders], ...], ...}.
func (c *Client) coinbaseBook(ctx context.Context, pair string) (book.Book, error) {
	var resp struct {
		Bids []book.RawLevel `json:"bids"`
		Asks []book.RawLevel `json:"asks"`
	}
	u := c.cfg.CoinbaseURL + "/products/" + url.PathEscape(pair) + "/book"
	if err := c.fc.GetJSON(ctx, u, url.Values{"level": {"2"}}, nil, &resp); err != nil {
		return book.Book{}, err
	}
	if resp.Bids == nil && resp.Asks == nil {
		return book.Book{}, fmt.Errorf("coinbase book %s: no sides in response", pair)
	}
	return book.Book{
		Bids: book.Normalize(resp.Bids, book.Bid),
		Asks: book.Normalize(resp.Asks, book.Ask),
	}, nil
}

// Kraken Depth: {"error":[], "result":{"XXBTZUSD":{"bids":[["price","volume",ts],...]}}}.
// The result key is Kraken's own pair spelling, so take the first entry.
func (c *Client) krakenBook(ctx context.Context, pair string) (book.Book, error) {
	var resp struct {
		Error  []string `json:"error"`
		Result map[string]struct {
			Bids []book.RawLevel `json:"bids"`
			Asks []book.RawLevel `json:"asks"`
		} `json:"result"`
	}
	params := url.Values{"pair": {pair}, "count": {"50"}}
	if err := c.fc.GetJSON(ctx, c.cfg.KrakenURL+"/0/public/Depth", params, nil, &resp); err != nil {
		return book.Book{}, err
	}
	if len(resp.Error) > 0 {
		return book.Book{}, fmt.Errorf("kraken depth %s: %s", pair, strings.Join(resp.Error, "; "))
	}
	for _, ob := range resp.Result {
		return book.Book{
			Bids: book.Normalize(ob.Bids, book.Bid),
			Asks: book.Normalize(ob.Asks, book.Ask),
		}, nil
	}
	return book.Book{}, fmt.Errorf("kraken depth %s: empty result", pair)
}
