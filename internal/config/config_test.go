package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	_ = os.Unsetenv("TRIARB_CONFIG")
	_ = os.Unsetenv("TRIARB_LOG_LEVEL")
	_ = os.Unsetenv("TRIARB_MIN_PROFIT_PCT")

	c := Load()
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", c.Logging.Level)
	}
	if c.Scanner.MinProfitPercentage != 0.3 {
		t.Fatalf("expected default min profit 0.3, got %v", c.Scanner.MinProfitPercentage)
	}
	if c.Scanner.MaxTriangles != 500 {
		t.Fatalf("expected default max triangles 500, got %d", c.Scanner.MaxTriangles)
	}
	if !c.Scanner.RequireBaseAnchor || c.Scanner.BaseCurrency != "USDT" {
		t.Fatalf("expected USDT anchor by default")
	}
	if c.Trading.Live {
		t.Fatalf("live trading must be off by default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRIARB_LOG_LEVEL", "debug")
	t.Setenv("TRIARB_MIN_PROFIT_PCT", "0.5")
	t.Setenv("TRIARB_BASE_CURRENCY", "USDC")
	t.Setenv("TRIARB_PRICE_MODEL", "mid")
	t.Setenv("TRIARB_FEE_DISCOUNT", "false")
	c := Load()
	if c.Logging.Level != "debug" {
		t.Fatalf("env override failed for log level, got %s", c.Logging.Level)
	}
	if c.Scanner.MinProfitPercentage != 0.5 {
		t.Fatalf("env override failed for min profit, got %v", c.Scanner.MinProfitPercentage)
	}
	if c.Scanner.BaseCurrency != "USDC" {
		t.Fatalf("env override failed for base currency, got %s", c.Scanner.BaseCurrency)
	}
	if c.Scanner.PriceModel != "mid" {
		t.Fatalf("env override failed for price model, got %s", c.Scanner.PriceModel)
	}
	if c.Fees.DiscountEnabled {
		t.Fatalf("env override failed for fee discount")
	}
}

func TestYAMLFileOverlay(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "triarb*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("scanner:\n  max_triangles: 42\n  scan_interval_seconds: 0.5\n")
	_ = f.Close()
	t.Setenv("TRIARB_CONFIG", f.Name())
	c := Load()
	if c.Scanner.MaxTriangles != 42 {
		t.Fatalf("yaml overlay failed, got %d", c.Scanner.MaxTriangles)
	}
	if c.Scanner.ScanIntervalSeconds != 0.5 {
		t.Fatalf("yaml overlay failed for interval, got %v", c.Scanner.ScanIntervalSeconds)
	}
}
