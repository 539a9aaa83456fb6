package rate

import (
	"triarb/internal/market"
	"triarb/internal/triangle"
)

// Status distinguishes "no data" from "bad data" so callers never have to
// infer the reason a triangle produced nothing this tick.
type Status int

const (
	OK Status = iota
	// Incomplete: one or more leg symbols missing from the snapshot. The
	// triangle is skipped this tick only.
	Incomplete
	// InvalidQuote: a leg's bid/ask violate invariants (zero, crossed,
	// excessive spread, insufficient volume).
	InvalidQuote
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Incomplete:
		return "incomplete"
	default:
		return "invalid_quote"
	}
}

// PriceModel selects which price a leg executes at.
type PriceModel string

const (
	// ModelBidAsk uses the executable side of the spread: selling receives
	// the bid, buying pays the ask.
	ModelBidAsk PriceModel = "bidask"
	// ModelMid prices both directions at the mid. Display and backtest use
	// only; it overstates realizable profit.
	ModelMid PriceModel = "mid"
)

// LegRate is one hop's resolved conversion. Rate is multiplicative: output
// amount = input amount * Rate, regardless of orientation.
type LegRate struct {
	Symbol     string
	Side       market.Side
	Inverse    bool
	Price      float64 // the quoted price applied on Symbol
	Rate       float64
	Spread     float64 // fraction
	BaseVolume float64
}

// Resolver turns a triangle plus a snapshot into three executable leg rates.
type Resolver struct {
	MaxSpreadPct  float64 // reject legs with spread above this, in percent
	MinBaseVolume float64 // reject legs quoting thinner volume than this
	Model         PriceModel
}

// Resolve maps each hop X→Y onto a market: the direct symbol X/Y sells the
// base at bid; failing that, Y/X buys the base at ask (rate 1/ask). Buying
// always pays the higher side, selling always receives the lower side,
// whichever orientation supplies the quote.
func (r Resolver) Resolve(tri triangle.Triangle, snap market.Snapshot) ([3]LegRate, Status) {
	var legs [3]LegRate
	hops := [3][2]string{{tri.A, tri.B}, {tri.B, tri.C}, {tri.C, tri.A}}
	for i, hop := range hops {
		leg, st := r.resolveLeg(hop[0], hop[1], snap)
		if st != OK {
			return legs, st
		}
		legs[i] = leg
	}
	return legs, OK
}

func (r Resolver) resolveLeg(from, to string, snap market.Snapshot) (LegRate, Status) {
	var (
		t       market.Ticker
		inverse bool
	)
	if direct, ok := snap.Get(from + "/" + to); ok {
		t = direct
	} else if inv, ok := snap.Get(to + "/" + from); ok {
		t, inverse = inv, true
	} else {
		return LegRate{}, Incomplete
	}

	if t.Bid <= 0 || t.Ask <= 0 || t.Bid >= t.Ask {
		return LegRate{}, InvalidQuote
	}
	spread := t.Spread()
	if r.MaxSpreadPct > 0 && spread*100 > r.MaxSpreadPct {
		return LegRate{}, InvalidQuote
	}
	if t.BaseVolume < r.MinBaseVolume {
		return LegRate{}, InvalidQuote
	}

	leg := LegRate{Symbol: t.Symbol, Inverse: inverse, Spread: spread, BaseVolume: t.BaseVolume}
	if r.Model == ModelMid {
		mid := (t.Bid + t.Ask) / 2
		leg.Price = mid
		if inverse {
			leg.Side = market.Buy
			leg.Rate = 1 / mid
		} else {
			leg.Side = market.Sell
			leg.Rate = mid
		}
		return leg, OK
	}
	if inverse {
		// buying the inverse market's base: pay its ask
		leg.Side = market.Buy
		leg.Price = t.Ask
		leg.Rate = 1 / t.Ask
	} else {
		// selling our base into the quote: receive the bid
		leg.Side = market.Sell
		leg.Price = t.Bid
		leg.Rate = t.Bid
	}
	return leg, OK
}
