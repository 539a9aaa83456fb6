package rank

import (
	"sort"

	"triarb/internal/opportunity"
)

// Candidate is a pre-ranking opportunity with the liquidity figures the
// confidence score needs.
type Candidate struct {
	Opp         opportunity.Opportunity
	TotalVolume float64 // sum of leg base volumes
	AvgSpread   float64 // mean leg spread, as a fraction
}

// Ranker filters, scores and orders one tick's candidates.
type Ranker struct {
	MinProfitPct  float64
	VolumeNorm    float64 // volume at which the volume component saturates
	MinConfidence float64 // candidates under this are suppressed
}

// Confidence combines liquidity and spread tightness into a 0-1 heuristic:
// volume weighted 0.6, spread 0.4. Zero volume across all legs means there
// is nothing to execute against, so confidence is zero outright.
func (r Ranker) Confidence(totalVolume, avgSpread float64) float64 {
	if totalVolume <= 0 {
		return 0
	}
	norm := r.VolumeNorm
	if norm <= 0 {
		norm = 10000
	}
	volScore := totalVolume / norm
	if volScore > 1 {
		volScore = 1
	}
	spreadScore := 1 - avgSpread*100
	if spreadScore < 0 {
		spreadScore = 0
	}
	return volScore*0.6 + spreadScore*0.4
}

// Rank drops candidates below the profit threshold or confidence gate,
// derives tradeability from the available balance, and orders the survivors
// by net profit descending with confidence as tiebreak.
func (r Ranker) Rank(cands []Candidate, availableBalance float64) []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, 0, len(cands))
	for _, c := range cands {
		if c.Opp.ProfitPct < r.MinProfitPct {
			continue
		}
		conf := r.Confidence(c.TotalVolume, c.AvgSpread)
		if conf < r.MinConfidence {
			continue
		}
		o := c.Opp
		o.Confidence = conf
		o.Tradeable = availableBalance >= o.TradeAmount
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProfitPct != out[j].ProfitPct {
			return out[i].ProfitPct > out[j].ProfitPct
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
