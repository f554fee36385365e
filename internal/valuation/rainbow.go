package valuation

import (
	"math"

	"btc-command-center/internal/market"
)

// Band is one curve of the rainbow valuation chart. The coefficients are a
// fixed empirical fit in the BlockchainCenter style: the curve at day i is
// 10^(a·ln(i+offset) − 19.463).
type Band struct {
	Name   string  `json:"name"`
	A      float64 `json:"a"`
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Bands lists the nine curves, cheapest first.
var Bands = []Band{
	{Name: "Basically a Fire Sale", A: 2.7880, Offset: 1200, Color: "#2c7fb8"},
	{Name: "BUY!", A: 2.8010, Offset: 1225, Color: "#41b6c4"},
	{Name: "Accumulate", A: 2.8150, Offset: 1250, Color: "#7fcdbb"},
	{Name: "Still cheap", A: 2.8295, Offset: 1275, Color: "#c7e9b4"},
	{Name: "HODL!", A: 2.8445, Offset: 1293, Color: "#fee391"},
	{Name: "Is this a bubble?", A: 2.8590, Offset: 1320, Color: "#fec44f"},
	{Name: "FOMO intensifies", A: 2.8720, Offset: 1350, Color: "#fe9929"},
	{Name: "SELL! Seriously", A: 2.8860, Offset: 1375, Color: "#ec7014"},
	{Name: "Max Bubble", A: 2.9000, Offset: 1400, Color: "#cc4c02"},
}

const logConstant = 19.463

// BandSeries is one band evaluated over the dates of a price series.
type BandSeries struct {
	Band   Band                 `json:"band"`
	Points []market.SeriesPoint `json:"points"`
}

// valueAt evaluates the band curve at day index i.
func (b Band) valueAt(i float64) float64 {
	return math.Pow(10, b.A*math.Log(i+b.Offset)-logConstant)
}

// RainbowSeries evaluates every band over the given price series. The day
// index is whole days since the first sample, matching the daily cadence of
// the all-time market-price series.
func RainbowSeries(prices []market.SeriesPoint) []BandSeries {
	if len(prices) == 0 {
		return nil
	}
	first := prices[0].Time
	out := make([]BandSeries, 0, len(Bands))
	for _, b := range Bands {
		pts := make([]market.SeriesPoint, 0, len(prices))
		for _, p := range prices {
			i := math.Floor(p.Time.Sub(first).Hours() / 24)
			pts = append(pts, market.SeriesPoint{Time: p.Time, Value: b.valueAt(i)})
		}
		out = append(out, BandSeries{Band: b, Points: pts})
	}
	return out
}

// Classify returns the band whose curve sits nearest the given price at the
// latest sample; ok is false when bands is empty.
func Classify(price float64, bands []BandSeries) (Band, bool) {
	bestDiff := math.MaxFloat64
	var best Band
	found := false
	for _, bs := range bands {
		if len(bs.Points) == 0 {
			continue
		}
		d := math.Abs(bs.Points[len(bs.Points)-1].Value - price)
		if d < bestDiff {
			bestDiff = d
			best = bs.Band
			found = true
		}
	}
	return best, found
}
