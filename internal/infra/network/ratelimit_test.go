package network

import (
	"testing"
	"time"
)

func TestOrdersPerMinuteBurstThenRefill(t *testing.T) {
	b := NewOrdersPerMinute(2)
	now := time.Now()
	if !b.Allow(now) || !b.Allow(now) {
		t.Fatal("full burst should be allowed")
	}
	if b.Allow(now) {
		t.Fatal("third order within the same instant must be denied")
	}
	// 2 per minute refills one token in 30s
	if !b.Allow(now.Add(31 * time.Second)) {
		t.Fatal("token should have refilled after half a minute")
	}
}

func TestTokensNeverExceedCapacity(t *testing.T) {
	b := NewOrdersPerMinute(3)
	now := time.Now()
	if got := b.Tokens(now.Add(time.Hour)); got > 3 {
		t.Fatalf("bucket overfilled: %v", got)
	}
}
