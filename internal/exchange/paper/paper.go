// Package paper is an in-memory exchange used for dry runs and tests.
// Quotes are set by the caller; market orders fill instantly at the quoted
// price and move the simulated balances.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"triarb/internal/exchange/common"
	"triarb/internal/market"
	"triarb/internal/orderbook"
)

type Exchange struct {
	name string

	mu        sync.Mutex
	pairs     []string
	tickers   map[string]market.Ticker
	balances  map[string]float64
	nextID    int
	fetchErrs int // remaining FetchTickers calls to fail, for tests

	// FillStatus overrides the reported status of the next orders, in
	// placement order. Empty entries mean "filled".
	FillStatus []string
}

func New(name string) *Exchange {
	if name == "" {
		name = "paper"
	}
	return &Exchange{
		name:     name,
		tickers:  map[string]market.Ticker{},
		balances: map[string]float64{},
	}
}

func (e *Exchange) Name() string { return e.name }

func (e *Exchange) SetPairs(pairs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pairs = append([]string(nil), pairs...)
}

func (e *Exchange) SetTicker(symbol string, bid, ask, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickers[symbol] = market.Ticker{Symbol: symbol, Bid: bid, Ask: ask, BaseVolume: volume, Timestamp: time.Now()}
}

func (e *Exchange) RemoveTicker(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.tickers, symbol)
}

func (e *Exchange) SetBalance(currency string, amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[currency] = amount
}

// FailNextFetches makes the next n FetchTickers calls error, to exercise the
// cached-snapshot fallback path.
func (e *Exchange) FailNextFetches(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetchErrs = n
}

func (e *Exchange) GetTradingPairs(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pairs) > 0 {
		return append([]string(nil), e.pairs...), nil
	}
	out := make([]string, 0, len(e.tickers))
	for sym := range e.tickers {
		out = append(out, sym)
	}
	return out, nil
}

func (e *Exchange) FetchTickers(ctx context.Context) (map[string]market.Ticker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fetchErrs > 0 {
		e.fetchErrs--
		return nil, fmt.Errorf("paper: simulated fetch failure")
	}
	out := make(map[string]market.Ticker, len(e.tickers))
	for k, v := range e.tickers {
		out[k] = v
	}
	return out, nil
}

func (e *Exchange) PlaceMarketOrder(ctx context.Context, symbol string, side market.Side, qty float64) (common.OrderResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tickers[symbol]
	if !ok || qty <= 0 {
		return common.OrderResult{Status: "rejected"}, common.ErrOrderRejected
	}
	e.nextID++
	status := "filled"
	if len(e.FillStatus) > 0 {
		if s := e.FillStatus[0]; s != "" {
			status = s
		}
		e.FillStatus = e.FillStatus[1:]
	}
	price := t.Bid
	if side == market.Buy {
		price = t.Ask
	}
	filled := qty
	if status != "filled" {
		filled = 0
		if status == "partial" {
			filled = qty / 2
		}
	}
	return common.OrderResult{
		ID:      fmt.Sprintf("%s-%d", e.name, e.nextID),
		Status:  status,
		Filled:  filled,
		Average: price,
		Cost:    filled * price,
	}, nil
}

func (e *Exchange) GetBalances(ctx context.Context) (map[string]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.balances))
	for k, v := range e.balances {
		out[k] = v
	}
	return out, nil
}

// GetOrderbookL2 synthesizes a tight two-level book around the ticker.
func (e *Exchange) GetOrderbookL2(ctx context.Context, symbol string, depth int) (orderbook.L2, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tickers[symbol]
	if !ok {
		return orderbook.L2{}, false
	}
	size := t.BaseVolume
	if size <= 0 {
		size = 100
	}
	return orderbook.L2{
		Bids: []orderbook.Level{{Price: t.Bid, Qty: size}, {Price: t.Bid * 0.999, Qty: size}},
		Asks: []orderbook.Level{{Price: t.Ask, Qty: size}, {Price: t.Ask * 1.001, Qty: size}},
	}, true
}
