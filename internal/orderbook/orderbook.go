package orderbook

type Level struct{ Price, Qty float64 }

type L2 struct {
	Bids []Level // sorted desc by price
	Asks []Level // sorted asc by price
}

// Mid returns the midpoint of the best bid and ask, or 0 on an empty book.
func (b L2) Mid() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	return (b.Bids[0].Price + b.Asks[0].Price) / 2
}
