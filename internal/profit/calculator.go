package profit

import (
	"math"

	"triarb/internal/rate"
)

type Status int

const (
	OK Status = iota
	// Unrealistic: the computed profit falls outside the sanity band and is
	// treated as a data artifact, not an opportunity. This is an expected
	// filtering outcome, not an error.
	Unrealistic
)

// Result is the net outcome of pushing a trade amount around one cycle.
type Result struct {
	FinalAmount  float64
	GrossPct     float64
	CostPct      float64
	NetPct       float64
	NetAmount    float64
	LegAmounts   [3]float64 // output of each leg before costs
}

// Calculator compounds leg rates and nets out the fee model. One calculator
// serves every price model; the resolver already baked the chosen side into
// each leg's Rate.
type Calculator struct {
	Fees FeeModel
	// SanityBandPct bounds |net profit|; stale or erroneous quotes otherwise
	// fabricate double-digit "opportunities".
	SanityBandPct float64
}

// Compute flows tradeAmount through the three legs, then subtracts the
// round-trip cost. Results outside the sanity band are discarded.
func (c Calculator) Compute(exchange string, legs [3]rate.LegRate, tradeAmount float64) (Result, Status) {
	amount := tradeAmount
	var res Result
	for i, leg := range legs {
		amount *= leg.Rate
		res.LegAmounts[i] = amount
	}
	res.FinalAmount = amount
	res.GrossPct = (amount - tradeAmount) / tradeAmount * 100
	res.CostPct = c.Fees.RoundTripCostPct(exchange)
	res.NetPct = res.GrossPct - res.CostPct
	res.NetAmount = tradeAmount * res.NetPct / 100

	if c.SanityBandPct > 0 && math.Abs(res.NetPct) > c.SanityBandPct {
		return res, Unrealistic
	}
	return res, OK
}
