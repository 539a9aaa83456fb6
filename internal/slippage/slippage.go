package slippage

import "triarb/internal/orderbook"

// EstimatePct walks L2 depth to price a market order of qty and returns the
// expected slippage against the mid as a percentage. A book too thin to fill
// the order returns an effectively-rejecting value.
func EstimatePct(book orderbook.L2, qty float64, side bool) float64 {
	mid := book.Mid()
	if qty <= 0 || mid <= 0 {
		return 0
	}
	levels := book.Bids
	if side { // buying walks the asks
		levels = book.Asks
	}
	var cost, filled float64
	for _, lvl := range levels {
		use := qty - filled
		if lvl.Qty < use {
			use = lvl.Qty
		}
		if use <= 0 {
			break
		}
		cost += use * lvl.Price
		filled += use
		if filled >= qty {
			break
		}
	}
	if filled < qty {
		return 1e6 // cannot fill at any price worth modeling
	}
	avg := cost / qty
	diff := mid - avg
	if side {
		diff = avg - mid
	}
	return diff / mid * 100
}
