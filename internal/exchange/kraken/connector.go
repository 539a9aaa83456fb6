package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
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
	wsNames map[string]string // kraken pair key -> normalized "BTC/USDT"
}

func New(cfg config.Config) *Connector {
	return &Connector{cfg: cfg, http: network.NewHTTPClient(10 * time.Second), wsNames: map[string]string{}}
}

func (c *Connector) Name() string { return "kraken" }

// normalize maps Kraken asset codes onto the common ones (XBT -> BTC).
func normalize(sym string) string {
	sym = strings.ReplaceAll(sym, "XBT", "BTC")
	return strings.ReplaceAll(sym, "XDG", "DOGE")
}

func (c *Connector) GetTradingPairs(ctx context.Context) ([]string, error) {
	url := c.cfg.Exchanges.Kraken.BaseURL + "/0/public/AssetPairs"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken asset pairs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var body struct {
		Result map[string]struct {
			WSName string `json:"wsname"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("kraken asset pairs decode: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pairs := make([]string, 0, len(body.Result))
	for key, p := range body.Result {
		if p.WSName == "" {
			continue
		}
		sym := normalize(p.WSName)
		c.wsNames[key] = sym
		pairs = append(pairs, sym)
	}
	return pairs, nil
}

func (c *Connector) FetchTickers(ctx context.Context) (map[string]market.Ticker, error) {
	url := c.cfg.Exchanges.Kraken.BaseURL + "/0/public/Ticker"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken tickers: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var body struct {
		Result map[string]struct {
			B []string `json:"b"` // bid [price, wholeLotVolume, lotVolume]
			A []string `json:"a"`
			V []string `json:"v"` // volume [today, last24h]
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("kraken tickers decode: %w", err)
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]market.Ticker, len(body.Result))
	first := func(ss []string) float64 {
		if len(ss) == 0 {
			return 0
		}
		v, _ := strconv.ParseFloat(ss[0], 64)
		return v
	}
	for key, t := range body.Result {
		sym, ok := c.wsNames[key]
		if !ok {
			continue
		}
		vol := 0.0
		if len(t.V) > 1 {
			vol, _ = strconv.ParseFloat(t.V[1], 64)
		}
		out[sym] = market.Ticker{Symbol: sym, Bid: first(t.B), Ask: first(t.A), BaseVolume: vol, Timestamp: now}
	}
	return out, nil
}

func (c *Connector) PlaceMarketOrder(ctx context.Context, symbol string, side market.Side, qty float64) (common.OrderResult, error) {
	return common.OrderResult{}, fmt.Errorf("kraken: %w: signed endpoints not configured", common.ErrOrderRejected)
}

func (c *Connector) GetBalances(ctx context.Context) (map[string]float64, error) {
	return nil, fmt.Errorf("kraken: account endpoints not configured")
}
