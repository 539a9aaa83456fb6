package market

import (
	"testing"
	"time"
)

func TestParsePair(t *testing.T) {
	p, ok := ParsePair("btc/usdt")
	if !ok {
		t.Fatalf("expected btc/usdt to parse")
	}
	if p.Base != "BTC" || p.Quote != "USDT" || p.Symbol != "BTC/USDT" {
		t.Fatalf("unexpected pair: %+v", p)
	}
	for _, bad := range []string{"BTCUSDT", "BTC/USD/T", "/USDT", "BTC/", ""} {
		if _, ok := ParsePair(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNewSnapshotRejectsCrossedQuotes(t *testing.T) {
	in := map[string]Ticker{
		"BTC/USDT": {Bid: 50000, Ask: 50010, BaseVolume: 100},
		"ETH/USDT": {Bid: 3110, Ask: 3105, BaseVolume: 100}, // crossed
		"XRP/USDT": {Bid: 0, Ask: 1, BaseVolume: 100},       // zero bid
	}
	s := NewSnapshot(in, 0, time.Now())
	if s.Len() != 1 {
		t.Fatalf("expected 1 surviving ticker, got %d", s.Len())
	}
	if _, ok := s.Get("ETH/USDT"); ok {
		t.Fatalf("crossed quote should have been rejected")
	}
}

func TestNewSnapshotVolumeFilter(t *testing.T) {
	in := map[string]Ticker{
		"BTC/USDT": {Bid: 50000, Ask: 50010, BaseVolume: 5000},
		"DOGE/BTC": {Bid: 1, Ask: 1.01, BaseVolume: 10},
	}
	s := NewSnapshot(in, 1000, time.Now())
	if _, ok := s.Get("DOGE/BTC"); ok {
		t.Fatalf("thin market should have been filtered")
	}
	if _, ok := s.Get("BTC/USDT"); !ok {
		t.Fatalf("liquid market should survive")
	}
}

func TestMarkStaleDoesNotMutate(t *testing.T) {
	s := NewSnapshot(map[string]Ticker{"BTC/USDT": {Bid: 1, Ask: 2}}, 0, time.Now())
	st := s.MarkStale()
	if !st.Stale || s.Stale {
		t.Fatalf("MarkStale must copy, not mutate")
	}
	if st.Len() != s.Len() {
		t.Fatalf("stale copy should share tickers")
	}
}
