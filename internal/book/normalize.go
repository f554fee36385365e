package book

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Normalize converts raw exchange levels into a best-first ladder with
// notional and running totals per row.
//
// Rows are dropped silently when the price or quantity cannot be coerced to
// a finite decimal, when the price is not strictly positive, or when the
// quantity is negative. Ties in price keep input relative order. The result
// is never nil: an empty, nil, or entirely-malformed input yields an empty
// ladder with the same row schema.
func Normalize(levels []RawLevel, side Side) []Level {
	out := make([]Level, 0, len(levels))
	for _, raw := range levels {
		if len(raw) < 2 {
			continue
		}
		price, ok := coerce(raw[0])
		if !ok || !price.IsPositive() {
			continue
		}
		qty, ok := coerce(raw[1])
		if !ok || qty.IsNegative() {
			continue
		}
		out = append(out, Level{
			Price:    price,
			Quantity: qty,
			Notional: price.Mul(qty),
		})
	}

	slices.SortStableFunc(out, func(a, b Level) int {
		if side == Bid {
			// best bid is highest price first
			return b.Price.Cmp(a.Price)
		}
		return a.Price.Cmp(b.Price)
	})

	cumQty := decimal.Zero
	cumNotional := decimal.Zero
	for i := range out {
		cumQty = cumQty.Add(out[i].Quantity)
		cumNotional = cumNotional.Add(out[i].Notional)
		out[i].CumQuantity = cumQty
		out[i].CumNotional = cumNotional
	}
	return out
}

// coerce parses a JSON string or number entry into a decimal. Exchanges
// disagree on which they send, so try the quoted form first and fall back
// to a bare number.
func coerce(raw json.RawMessage) (decimal.Decimal, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return decimal.Decimal{}, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}
