package detector

import (
	"sort"
	"time"

	"triarb/internal/market"
	"triarb/internal/opportunity"
	"triarb/internal/profit"
)

// CrossScanner compares the same symbol across venues: buy at one venue's
// ask, sell at another's bid. Costs are one taker fee per venue plus a flat
// transfer cost covering withdrawal and settlement delay.
type CrossScanner struct {
	Fees            profit.FeeModel
	MinProfitPct    float64
	TransferCostPct float64
	TradeAmount     float64
}

// Scan takes the latest snapshot per exchange and returns profitable venue
// spreads, best first. Stale snapshots are excluded; a price that may be
// minutes old is useless across venues.
func (s CrossScanner) Scan(snaps map[string]market.Snapshot) []opportunity.Opportunity {
	names := make([]string, 0, len(snaps))
	for n, snap := range snaps {
		if !snap.Stale {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var out []opportunity.Opportunity
	now := time.Now()
	for i, buyVenue := range names {
		for j, sellVenue := range names {
			if i == j {
				continue
			}
			out = append(out, s.scanPair(buyVenue, sellVenue, snaps[buyVenue], snaps[sellVenue], now)...)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].ProfitPct > out[b].ProfitPct })
	return out
}

func (s CrossScanner) scanPair(buyVenue, sellVenue string, buySnap, sellSnap market.Snapshot, now time.Time) []opportunity.Opportunity {
	costPct := s.Fees.TradeFeePct(buyVenue) + s.Fees.TradeFeePct(sellVenue) + s.TransferCostPct
	var out []opportunity.Opportunity
	buySnap.Each(func(sym string, buy market.Ticker) {
		sell, ok := sellSnap.Get(sym)
		if !ok || buy.Ask <= 0 || sell.Bid <= 0 {
			return
		}
		grossPct := (sell.Bid - buy.Ask) / buy.Ask * 100
		netPct := grossPct - costPct
		if netPct < s.MinProfitPct {
			return
		}
		p, ok := market.ParsePair(sym)
		if !ok {
			return
		}
		qty := s.TradeAmount / buy.Ask
		out = append(out, opportunity.Opportunity{
			Exchange:     buyVenue + "->" + sellVenue,
			Path:         []string{p.Quote, p.Base, p.Quote},
			Pairs:        []string{sym, sym},
			ProfitPct:    netPct,
			ProfitAmount: s.TradeAmount * netPct / 100,
			TradeAmount:  s.TradeAmount,
			Steps: []opportunity.LegPlan{
				{Symbol: sym, Side: market.Buy, InputAmount: s.TradeAmount, Price: buy.Ask, ExpectedOutput: qty},
				{Symbol: sym, Side: market.Sell, InputAmount: qty, Price: sell.Bid, ExpectedOutput: qty * sell.Bid},
			},
			DetectedAt: now,
		})
	})
	return out
}
