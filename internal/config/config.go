package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Scanner struct {
		MinProfitPercentage  float64 `yaml:"min_profit_percentage"`
		MaxTradeAmount       float64 `yaml:"max_trade_amount"`
		MaxTriangles         int     `yaml:"max_triangles"`
		RequireBaseAnchor    bool    `yaml:"require_base_anchor"`
		BaseCurrency         string  `yaml:"base_currency"`
		ScanIntervalSeconds  float64 `yaml:"scan_interval_seconds"`
		MaxSpreadPercentage  float64 `yaml:"max_spread_percentage"`
		MinBaseVolume        float64 `yaml:"min_base_volume"`
		SanityBandPercentage float64 `yaml:"sanity_band_percentage"`
		VolumeNorm           float64 `yaml:"volume_norm"`
		MinConfidence        float64 `yaml:"min_confidence"`
		PriceModel           string  `yaml:"price_model"` // bidask or mid
		FetchRetries         int     `yaml:"fetch_retries"`
		CrossExchange        bool    `yaml:"cross_exchange"`
		TransferCostPct      float64 `yaml:"transfer_cost_percentage"`
	} `yaml:"scanner"`
	Fees struct {
		DiscountEnabled   bool               `yaml:"fee_discount_enabled"`
		DefaultFeePct     float64            `yaml:"default_fee_percentage"`
		SlippageBufferPct float64            `yaml:"slippage_buffer_percentage"`
		TakerFeePct       map[string]float64 `yaml:"taker_fee_percentage"`
		DiscountPct       map[string]float64 `yaml:"discount_percentage"`
	} `yaml:"fees"`
	Trading struct {
		Enabled           bool     `yaml:"enabled"`
		Live              bool     `yaml:"live"`
		AllowedSymbols    []string `yaml:"allowed_symbols"`
		MaxOrdersPerMin   int      `yaml:"max_orders_per_min"`
		MaxLegSlippagePct float64  `yaml:"max_leg_slippage_percentage"`
	} `yaml:"trading"`
	TradeLog struct {
		Path string `yaml:"path"`
		Tail int    `yaml:"tail"`
	} `yaml:"trade_log"`
	Exchanges struct {
		Binance struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
			Secret  string `yaml:"secret"`
		} `yaml:"binance"`
		Kraken struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
			Secret  string `yaml:"secret"`
		} `yaml:"kraken"`
		Paper struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"paper"`
	} `yaml:"exchanges"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":9090"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}

	c.Scanner.MinProfitPercentage = 0.3
	c.Scanner.MaxTradeAmount = 100.0
	c.Scanner.MaxTriangles = 500
	c.Scanner.RequireBaseAnchor = true
	c.Scanner.BaseCurrency = "USDT"
	c.Scanner.ScanIntervalSeconds = 2.0
	c.Scanner.MaxSpreadPercentage = 2.0
	c.Scanner.MinBaseVolume = 0
	c.Scanner.SanityBandPercentage = 10.0
	c.Scanner.VolumeNorm = 10000
	c.Scanner.MinConfidence = 0.5
	c.Scanner.PriceModel = "bidask"
	c.Scanner.FetchRetries = 3
	c.Scanner.CrossExchange = false
	c.Scanner.TransferCostPct = 1.0

	c.Fees.DiscountEnabled = true
	c.Fees.DefaultFeePct = 0.1
	c.Fees.SlippageBufferPct = 0.05
	c.Fees.TakerFeePct = map[string]float64{
		"binance": 0.1,
		"kraken":  0.26,
		"kucoin":  0.1,
		"gate":    0.2,
		"paper":   0.1,
	}
	c.Fees.DiscountPct = map[string]float64{
		"binance": 25,
		"kucoin":  50,
		"gate":    55,
	}

	c.Trading.Enabled = false
	c.Trading.Live = false
	c.Trading.MaxOrdersPerMin = 10
	c.Trading.MaxLegSlippagePct = 0.2

	c.TradeLog.Path = ""
	c.TradeLog.Tail = 100

	c.Exchanges.Binance.Enabled = true
	c.Exchanges.Binance.BaseURL = "https://api.binance.com"
	c.Exchanges.Kraken.Enabled = false
	c.Exchanges.Kraken.BaseURL = "https://api.kraken.com"
	c.Exchanges.Paper.Enabled = false
	return c
}

// Load builds config from defaults, an optional YAML file named by
// TRIARB_CONFIG, then individual env overrides. API keys come from env only.
func Load() Config {
	c := defaultConfig()
	if path := os.Getenv("TRIARB_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("TRIARB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TRIARB_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("TRIARB_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TRIARB_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("TRIARB_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("TRIARB_MIN_PROFIT_PCT"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Scanner.MinProfitPercentage = f
		}
	}
	if v := os.Getenv("TRIARB_MAX_TRADE_AMOUNT"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Scanner.MaxTradeAmount = f
		}
	}
	if v := os.Getenv("TRIARB_MAX_TRIANGLES"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Scanner.MaxTriangles = n
		}
	}
	if v := os.Getenv("TRIARB_BASE_CURRENCY"); v != "" {
		c.Scanner.BaseCurrency = v
	}
	if v := os.Getenv("TRIARB_REQUIRE_BASE_ANCHOR"); v == "0" || v == "false" {
		c.Scanner.RequireBaseAnchor = false
	}
	if v := os.Getenv("TRIARB_SCAN_INTERVAL_SECONDS"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Scanner.ScanIntervalSeconds = f
		}
	}
	if v := os.Getenv("TRIARB_PRICE_MODEL"); v == "mid" || v == "bidask" {
		c.Scanner.PriceModel = v
	}
	if v := os.Getenv("TRIARB_FEE_DISCOUNT"); v == "0" || v == "false" {
		c.Fees.DiscountEnabled = false
	}
	if v := os.Getenv("TRIARB_TRADING_ENABLED"); v == "1" || v == "true" {
		c.Trading.Enabled = true
	}
	if v := os.Getenv("TRIARB_TRADING_LIVE"); v == "1" || v == "true" {
		c.Trading.Live = true
	}
	if v := os.Getenv("TRIARB_ALLOWED_SYMBOLS"); v != "" {
		c.Trading.AllowedSymbols = splitCSV(v)
	}
	if v := os.Getenv("TRIARB_TRADELOG_PATH"); v != "" {
		c.TradeLog.Path = v
	}
	// API keys only from env
	if v := os.Getenv("TRIARB_BINANCE_API_KEY"); v != "" {
		c.Exchanges.Binance.APIKey = v
	}
	if v := os.Getenv("TRIARB_BINANCE_SECRET"); v != "" {
		c.Exchanges.Binance.Secret = v
	}
	if v := os.Getenv("TRIARB_KRAKEN_API_KEY"); v != "" {
		c.Exchanges.Kraken.APIKey = v
	}
	if v := os.Getenv("TRIARB_KRAKEN_SECRET"); v != "" {
		c.Exchanges.Kraken.Secret = v
	}
	if v := os.Getenv("TRIARB_PAPER_EXCHANGE"); v == "1" || v == "true" {
		c.Exchanges.Paper.Enabled = true
	}
	return c
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}
