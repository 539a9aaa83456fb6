package common

import (
	"context"
	"errors"

	"triarb/internal/market"
	"triarb/internal/orderbook"
)

// ErrOrderRejected is returned when exchange-side validation refuses an
// order (bad size, closed market, insufficient funds).
var ErrOrderRejected = errors.New("order rejected by exchange")

// OrderResult is the exchange's acknowledgement of a market order.
type OrderResult struct {
	ID      string
	Status  string // "filled", "partial", "rejected"
	Filled  float64
	Average float64 // average fill price
	Cost    float64 // total quote amount spent or received
	Fee     float64
}

func (r OrderResult) FullyFilled(qty float64) bool {
	return r.Status == "filled" && r.Filled >= qty*0.999
}

// Connector is what scanning and execution need from an exchange.
// Implementations own authentication, throttling and transport.
type Connector interface {
	Name() string
	// GetTradingPairs returns symbols like "BTC/USDT". Fetched once per
	// session; the pair universe is immutable after discovery.
	GetTradingPairs(ctx context.Context) ([]string, error)
	// FetchTickers returns a full top-of-book snapshot keyed by symbol.
	FetchTickers(ctx context.Context) (map[string]market.Ticker, error)
	PlaceMarketOrder(ctx context.Context, symbol string, side market.Side, qty float64) (OrderResult, error)
	GetBalances(ctx context.Context) (map[string]float64, error)
}

// DepthProvider is an optional capability: a depth-limited L2 book for
// slippage preflight. ok=false means unsupported or unavailable.
type DepthProvider interface {
	GetOrderbookL2(ctx context.Context, symbol string, depth int) (orderbook.L2, bool)
}
