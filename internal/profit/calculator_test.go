package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triarb/internal/market"
	"triarb/internal/rate"
)

func fixedFees(pct float64) FeeModel {
	return FeeModel{DefaultFeePct: pct / 3}
}

func TestComputeKnownTriangle(t *testing.T) {
	// USDT→BTC→ETH→USDT with BTC/USDT 50000/50010, ETH/BTC 0.062/0.0621,
	// ETH/USDT 3105/3110, trade 100, flat 0.3% round-trip cost.
	legs := [3]rate.LegRate{
		{Symbol: "BTC/USDT", Side: market.Buy, Inverse: true, Price: 50010, Rate: 1 / 50010.0},
		{Symbol: "ETH/BTC", Side: market.Buy, Inverse: true, Price: 0.0621, Rate: 1 / 0.0621},
		{Symbol: "ETH/USDT", Side: market.Sell, Price: 3105, Rate: 3105},
	}
	calc := Calculator{Fees: fixedFees(0.3), SanityBandPct: 10}
	res, st := calc.Compute("binance", legs, 100)
	require.Equal(t, OK, st)

	final := 100.0 / 50010.0 / 0.0621 * 3105.0
	gross := (final - 100.0) / 100.0 * 100.0
	assert.InDelta(t, final, res.FinalAmount, 1e-9)
	assert.InDelta(t, gross, res.GrossPct, 1e-9)
	assert.InDelta(t, gross-0.3, res.NetPct, 1e-6)
	assert.InDelta(t, 100*(gross-0.3)/100, res.NetAmount, 1e-6)
}

func TestComputeEfficientMarketLosesExactlyTheCosts(t *testing.T) {
	// With all three legs at unit rate, net profit is exactly minus the
	// round-trip cost. An efficient market never shows a gain.
	unit := [3]rate.LegRate{{Rate: 1}, {Rate: 1}, {Rate: 1}}

	calc := Calculator{Fees: fixedFees(0), SanityBandPct: 10}
	res, st := calc.Compute("binance", unit, 100)
	require.Equal(t, OK, st)
	assert.Equal(t, 0.0, res.NetPct)

	calc.Fees = fixedFees(0.3)
	res, st = calc.Compute("binance", unit, 100)
	require.Equal(t, OK, st)
	assert.InDelta(t, -0.3, res.NetPct, 1e-12)
}

func TestComputeSanityBandDiscardsArtifacts(t *testing.T) {
	// A stale quote fabricating +50% must be discarded, not surfaced.
	legs := [3]rate.LegRate{{Rate: 1.5}, {Rate: 1}, {Rate: 1}}
	calc := Calculator{Fees: fixedFees(0.3), SanityBandPct: 10}
	_, st := calc.Compute("binance", legs, 100)
	assert.Equal(t, Unrealistic, st)
}

func TestFeeModelDiscount(t *testing.T) {
	m := FeeModel{
		TakerFeePct:       map[string]float64{"kucoin": 0.1, "gate": 0.2},
		DiscountPct:       map[string]float64{"kucoin": 50, "gate": 55},
		SlippageBufferPct: 0.05,
		DefaultFeePct:     0.15,
	}
	assert.InDelta(t, 0.35, m.RoundTripCostPct("kucoin"), 1e-9) // no discount
	m.DiscountEnabled = true
	assert.InDelta(t, 0.20, m.RoundTripCostPct("kucoin"), 1e-9) // 0.05%*3 + buffer
	assert.InDelta(t, 0.32, m.RoundTripCostPct("gate"), 1e-9)   // 0.09%*3 + buffer
	assert.InDelta(t, 0.50, m.RoundTripCostPct("unknown"), 1e-9)
}
