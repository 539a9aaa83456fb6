package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"triarb/internal/opportunity"
)

func cand(net, vol, spread, amount float64) Candidate {
	return Candidate{
		Opp:         opportunity.Opportunity{ProfitPct: net, TradeAmount: amount},
		TotalVolume: vol,
		AvgSpread:   spread,
	}
}

func TestRankDropsBelowThreshold(t *testing.T) {
	r := Ranker{MinProfitPct: 0.3, VolumeNorm: 10000}
	out := r.Rank([]Candidate{
		cand(0.29, 50000, 0.0005, 100),
		cand(0.31, 50000, 0.0005, 100),
	}, 1000)
	assert.Len(t, out, 1)
	assert.Equal(t, 0.31, out[0].ProfitPct)
}

func TestConfidenceZeroVolume(t *testing.T) {
	r := Ranker{}
	// no volume on any leg: confidence is zero no matter how tight the spread
	assert.Equal(t, 0.0, r.Confidence(0, 0.0001))
	assert.Equal(t, 0.0, r.Confidence(0, 0))
}

func TestConfidenceWeights(t *testing.T) {
	r := Ranker{VolumeNorm: 10000}
	// saturated volume, zero spread: full marks
	assert.InDelta(t, 1.0, r.Confidence(20000, 0), 1e-9)
	// half volume, 0.5% spread: 0.6*0.5 + 0.4*0.5
	assert.InDelta(t, 0.5, r.Confidence(5000, 0.005), 1e-9)
	// spread component floors at zero
	assert.InDelta(t, 0.6, r.Confidence(20000, 0.02), 1e-9)
}

func TestRankSuppressesLowConfidence(t *testing.T) {
	r := Ranker{MinProfitPct: 0.1, VolumeNorm: 10000, MinConfidence: 0.5}
	out := r.Rank([]Candidate{cand(0.5, 100, 0.01, 100)}, 1000)
	assert.Empty(t, out)
}

func TestRankOrderingAndTiebreak(t *testing.T) {
	r := Ranker{MinProfitPct: 0.1, VolumeNorm: 10000}
	out := r.Rank([]Candidate{
		cand(0.2, 20000, 0, 100),
		cand(0.4, 1000, 0.005, 100),
		cand(0.4, 20000, 0, 100),
	}, 1000)
	assert.Len(t, out, 3)
	assert.Equal(t, 0.4, out[0].ProfitPct)
	assert.Equal(t, 0.4, out[1].ProfitPct)
	assert.Greater(t, out[0].Confidence, out[1].Confidence)
	assert.Equal(t, 0.2, out[2].ProfitPct)
}

func TestRankTradeableRequiresBalance(t *testing.T) {
	r := Ranker{MinProfitPct: 0.1, VolumeNorm: 10000}
	out := r.Rank([]Candidate{cand(0.5, 20000, 0, 100)}, 50)
	assert.Len(t, out, 1)
	assert.False(t, out[0].Tradeable)

	out = r.Rank([]Candidate{cand(0.5, 20000, 0, 100)}, 100)
	assert.True(t, out[0].Tradeable)
}
