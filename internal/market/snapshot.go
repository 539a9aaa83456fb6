package market

import "time"

// Ticker is a top-of-book quote. Replaced wholesale with each snapshot,
// never mutated in place.
type Ticker struct {
	Symbol     string
	Bid        float64
	Ask        float64
	BaseVolume float64
	Timestamp  time.Time
}

// Valid reports whether the quote satisfies bid <= ask with positive prices.
// Violating tickers are rejected at snapshot build time, not clamped.
func (t Ticker) Valid() bool {
	return t.Bid > 0 && t.Ask >= t.Bid
}

// Spread returns (ask-bid)/bid as a fraction.
func (t Ticker) Spread() float64 {
	if t.Bid <= 0 {
		return 0
	}
	return (t.Ask - t.Bid) / t.Bid
}

// Snapshot is an immutable view of one exchange's tickers at a single
// instant. All triangle evaluations within a tick read the same snapshot;
// the detector swaps in a fresh one atomically per tick.
type Snapshot struct {
	tickers map[string]Ticker
	TakenAt time.Time
	Stale   bool
}

// NewSnapshot copies valid tickers into an immutable snapshot. Tickers with
// crossed or non-positive quotes are dropped; minVolume > 0 additionally
// filters thin markets up front.
func NewSnapshot(tickers map[string]Ticker, minVolume float64, takenAt time.Time) Snapshot {
	m := make(map[string]Ticker, len(tickers))
	for sym, t := range tickers {
		if !t.Valid() {
			continue
		}
		if minVolume > 0 && t.BaseVolume < minVolume {
			continue
		}
		t.Symbol = sym
		m[sym] = t
	}
	return Snapshot{tickers: m, TakenAt: takenAt}
}

func (s Snapshot) Get(symbol string) (Ticker, bool) {
	t, ok := s.tickers[symbol]
	return t, ok
}

func (s Snapshot) Len() int { return len(s.tickers) }

// Each visits every ticker. Iteration order is unspecified.
func (s Snapshot) Each(fn func(symbol string, t Ticker)) {
	for sym, t := range s.tickers {
		fn(sym, t)
	}
}

func (s Snapshot) Empty() bool { return len(s.tickers) == 0 }

// MarkStale returns a copy flagged as served from cache rather than a fresh
// fetch. The underlying ticker map is shared; it is never written after build.
func (s Snapshot) MarkStale() Snapshot {
	s.Stale = true
	return s
}
