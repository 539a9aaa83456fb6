package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"triarb/internal/config"
	"triarb/internal/exchange/common"
	"triarb/internal/infra/network"
	"triarb/internal/market"
)

type Connector struct {
	cfg  config.Config
	http *http.Client

	mu      sync.Mutex
	symbols map[string]string // compact symbol (BTCUSDT) -> "BTC/USDT"
}

func New(cfg config.Config) *Connector {
	return &Connector{cfg: cfg, http: network.NewHTTPClient(10 * time.Second), symbols: map[string]string{}}
}

func (c *Connector) Name() string { return "binance" }

func (c *Connector) GetTradingPairs(ctx context.Context) ([]string, error) {
	url := c.cfg.Exchanges.Binance.BaseURL + "/api/v3/exchangeInfo"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance exchangeInfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var info struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("binance exchangeInfo decode: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pairs := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		sym := s.BaseAsset + "/" + s.QuoteAsset
		c.symbols[s.Symbol] = sym
		pairs = append(pairs, sym)
	}
	return pairs, nil
}

func (c *Connector) FetchTickers(ctx context.Context) (map[string]market.Ticker, error) {
	url := c.cfg.Exchanges.Binance.BaseURL + "/api/v3/ticker/24hr"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance 24hr tickers: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var raw []struct {
		Symbol   string `json:"symbol"`
		BidPrice string `json:"bidPrice"`
		AskPrice string `json:"askPrice"`
		Volume   string `json:"volume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("binance 24hr decode: %w", err)
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]market.Ticker, len(raw))
	for _, r := range raw {
		sym, ok := c.symbols[r.Symbol]
		if !ok {
			continue // symbol universe is fixed at session start
		}
		bid, _ := strconv.ParseFloat(r.BidPrice, 64)
		ask, _ := strconv.ParseFloat(r.AskPrice, 64)
		vol, _ := strconv.ParseFloat(r.Volume, 64)
		out[sym] = market.Ticker{Symbol: sym, Bid: bid, Ask: ask, BaseVolume: vol, Timestamp: now}
	}
	return out, nil
}

func (c *Connector) PlaceMarketOrder(ctx context.Context, symbol string, side market.Side, qty float64) (common.OrderResult, error) {
	// Signed trading endpoints are not wired; live execution goes through an
	// exchange account configured for it, not this public-data connector.
	return common.OrderResult{}, fmt.Errorf("binance: %w: signed endpoints not configured", common.ErrOrderRejected)
}

func (c *Connector) GetBalances(ctx context.Context) (map[string]float64, error) {
	return nil, fmt.Errorf("binance: account endpoints not configured")
}
