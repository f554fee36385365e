package book

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Side selects which half of the book a level list belongs to and, with it,
// the best-first sort direction.
type Side int

const (
	Ask Side = iota // best ask is the lowest price (ascending)
	Bid             // best bid is the highest price (descending)
)

// SideFrom canonicalizes a side label. Anything that is not "bid" gets ask
// ordering (ascending); callers relying on that fallback should treat it as
// policy, not accident.
func SideFrom(s string) Side {
	if strings.EqualFold(strings.TrimSpace(s), "bid") {
		return Bid
	}
	return Ask
}

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// RawLevel is one price level as exchanges ship it: a JSON array whose first
// entry is the price and second the quantity. Entries may be JSON strings
// (Coinbase, Kraken) or bare numbers; trailing entries such as order count
// or timestamp are ignored.
type RawLevel []json.RawMessage

// Level is one row of the normalized ladder.
type Level struct {
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notional    decimal.Decimal `json:"notional"`
	CumQuantity decimal.Decimal `json:"cumQuantity"`
	CumNotional decimal.Decimal `json:"cumNotional"`
}

// Book is a two-sided normalized snapshot. Both sides are ordered best
// price first.
type Book struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// Top returns at most n rows from an already-ordered ladder.
func Top(levels []Level, n int) []Level {
	if n < 0 {
		n = 0
	}
	if len(levels) > n {
		levels = levels[:n]
	}
	return levels
}

// TotalNotional is the monetary value resting on one side, i.e. the last
// running total (zero for an empty ladder).
func TotalNotional(levels []Level) decimal.Decimal {
	if len(levels) == 0 {
		return decimal.Zero
	}
	return levels[len(levels)-1].CumNotional
}

func (b Book) BestBid() (Level, bool) {
	if len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}

func (b Book) BestAsk() (Level, bool) {
	if len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// Mid is the midpoint of best bid and best ask; ok is false when either
// side is empty.
func (b Book) Mid() (decimal.Decimal, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), true
}

// Spread is best ask minus best bid; ok is false when either side is empty.
func (b Book) Spread() (decimal.Decimal, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}
