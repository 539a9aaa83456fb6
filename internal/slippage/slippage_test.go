package slippage

import (
	"testing"

	"triarb/internal/orderbook"
)

func book() orderbook.L2 {
	return orderbook.L2{
		Bids: []orderbook.Level{{Price: 100, Qty: 5}, {Price: 99, Qty: 10}},
		Asks: []orderbook.Level{{Price: 101, Qty: 5}, {Price: 102, Qty: 10}},
	}
}

func TestEstimatePctTopOfBook(t *testing.T) {
	// buying 5 fills entirely at 101 against a 100.5 mid
	got := EstimatePct(book(), 5, true)
	want := (101.0 - 100.5) / 100.5 * 100
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEstimatePctWalksDepth(t *testing.T) {
	// buying 10 averages 101.5
	got := EstimatePct(book(), 10, true)
	want := (101.5 - 100.5) / 100.5 * 100
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEstimatePctRejectsUnfillable(t *testing.T) {
	if got := EstimatePct(book(), 1000, false); got < 1e5 {
		t.Fatalf("unfillable order should return a rejecting estimate, got %v", got)
	}
}
