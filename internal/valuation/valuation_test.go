package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"btc-command-center/internal/market"
)

func day(n int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRainbowSeriesShape(t *testing.T) {
	prices := []market.SeriesPoint{
		{Time: day(0), Value: 100},
		{Time: day(1), Value: 110},
		{Time: day(2), Value: 105},
	}
	series := RainbowSeries(prices)
	require.Len(t, series, len(Bands))
	for _, bs := range series {
		require.Len(t, bs.Points, len(prices))
		// each curve rises monotonically in the day index
		for i := 1; i < len(bs.Points); i++ {
			require.Greater(t, bs.Points[i].Value, bs.Points[i-1].Value)
		}
	}
	// bands are ordered cheapest first at every date
	for i := 1; i < len(series); i++ {
		require.Greater(t, series[i].Points[0].Value, series[i-1].Points[0].Value)
	}
}

func TestRainbowFormula(t *testing.T) {
	prices := []market.SeriesPoint{{Time: day(0), Value: 1}}
	series := RainbowSeries(prices)
	b := Bands[0]
	want := math.Pow(10, b.A*math.Log(b.Offset)-19.463)
	require.InEpsilon(t, want, series[0].Points[0].Value, 1e-12)
}

func TestRainbowEmptyInput(t *testing.T) {
	require.Nil(t, RainbowSeries(nil))
}

func TestClassifyPicksNearestBand(t *testing.T) {
	prices := []market.SeriesPoint{{Time: day(0), Value: 0}, {Time: day(3000), Value: 0}}
	series := RainbowSeries(prices)
	// price exactly on a band's latest value classifies as that band
	target := series[4]
	band, ok := Classify(target.Points[len(target.Points)-1].Value, series)
	require.True(t, ok)
	require.Equal(t, target.Band.Name, band.Name)

	_, ok = Classify(100, nil)
	require.False(t, ok)
}

func TestNVTSeries(t *testing.T) {
	mcap := decimal.NewFromInt(1_000_000)
	tx := []market.SeriesPoint{
		{Time: day(0), Value: 10_000},
		{Time: day(1), Value: 0},
		{Time: day(2), Value: -5},
		{Time: day(3), Value: 20_000},
	}
	got := NVTSeries(mcap, tx)
	require.Len(t, got, 2, "zero and negative tx values are skipped")
	require.Equal(t, 100.0, got[0].Value)
	require.Equal(t, 50.0, got[1].Value)

	require.Nil(t, NVTSeries(decimal.Zero, tx))
}
